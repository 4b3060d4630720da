package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/it-support/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Workflow  *handlers.WorkflowHandler
	Tickets   *handlers.TicketsHandler
	Knowledge *handlers.KnowledgeHandler
	Analytics *handlers.AnalyticsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Post("/workflow/process", cfg.Workflow.Process)

	api.Get("/tickets", cfg.Tickets.ListTickets)
	api.Get("/tickets/:id", cfg.Tickets.GetTicket)
	api.Patch("/tickets/:id", cfg.Tickets.UpdateTicket)
	api.Get("/tickets/:id/logs", cfg.Tickets.GetAuditTrail)

	api.Get("/knowledge", cfg.Knowledge.ListEntries)
	api.Post("/knowledge", cfg.Knowledge.CreateEntry)

	api.Get("/analytics/dashboard", cfg.Analytics.Dashboard)
}
