package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/it-support/internal/api/dto"
	"github.com/spec-kit/it-support/internal/domain"
	"github.com/spec-kit/it-support/internal/service"
	apperrors "github.com/spec-kit/it-support/pkg/util"
)

// WorkflowHandler exposes the pipeline entry point.
type WorkflowHandler struct {
	workflow *service.WorkflowService
}

// NewWorkflowHandler constructs handler.
func NewWorkflowHandler(workflow *service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflow: workflow}
}

// Process POST /api/workflow/process.
func (h *WorkflowHandler) Process(c *fiber.Ctx) error {
	var req dto.ProcessWorkflowRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	submitter := domain.Submitter{}
	if req.SubmitterID != nil {
		submitter.ID = *req.SubmitterID
	}
	if req.SubmitterName != nil {
		submitter.Name = *req.SubmitterName
	}
	if req.SubmitterEmail != nil {
		submitter.Email = *req.SubmitterEmail
	}

	result, err := h.workflow.Run(c.UserContext(), req.IssueDescription, submitter)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.WorkflowResponse{
		TicketID:                result.TicketKey,
		Status:                  result.Status,
		Category:                result.Category,
		Priority:                result.Priority,
		ResolutionType:          result.ResolutionType,
		Message:                 result.Message,
		ResolutionInstructions:  result.ResolutionInstructions,
		RequiresHuman:           result.RequiresHuman,
		EstimatedResolutionTime: result.EstimatedResolutionTime,
	})
}
