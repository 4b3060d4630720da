package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/it-support/internal/service"
)

// AnalyticsHandler serves dashboard metrics.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Dashboard GET /api/analytics/dashboard.
func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	metrics, err := h.analytics.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": metrics})
}
