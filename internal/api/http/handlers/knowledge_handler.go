package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/it-support/internal/api/dto"
	"github.com/spec-kit/it-support/internal/domain"
	"github.com/spec-kit/it-support/internal/service"
	apperrors "github.com/spec-kit/it-support/pkg/util"
)

// KnowledgeHandler manages knowledge-base endpoints.
type KnowledgeHandler struct {
	knowledge *service.KnowledgeService
}

// NewKnowledgeHandler constructs handler.
func NewKnowledgeHandler(knowledge *service.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{knowledge: knowledge}
}

// ListEntries GET /api/knowledge.
func (h *KnowledgeHandler) ListEntries(c *fiber.Ctx) error {
	entries, err := h.knowledge.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.KnowledgeEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, knowledgeEntryResponse(entry))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateEntry POST /api/knowledge.
func (h *KnowledgeHandler) CreateEntry(c *fiber.Ctx) error {
	var req dto.CreateKnowledgeEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	entry := domain.KnowledgeEntry{
		Category:       req.Category,
		Title:          req.Title,
		Description:    req.Description,
		Solution:       req.Solution,
		Keywords:       req.Keywords,
		AutoResolvable: req.AutoResolvable,
		PriorityLevel:  req.PriorityLevel,
	}
	if err := h.knowledge.AddEntry(c.UserContext(), &entry); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": knowledgeEntryResponse(entry)})
}

func knowledgeEntryResponse(entry domain.KnowledgeEntry) dto.KnowledgeEntryResponse {
	return dto.KnowledgeEntryResponse{
		ID:             entry.ID,
		Category:       entry.Category,
		Title:          entry.Title,
		Description:    entry.Description,
		Solution:       entry.Solution,
		Keywords:       entry.Keywords,
		AutoResolvable: entry.AutoResolvable,
		PriorityLevel:  entry.PriorityLevel,
		SuccessRate:    entry.SuccessRate,
		UsageCount:     entry.UsageCount,
		CreatedAt:      entry.CreatedAt,
	}
}
