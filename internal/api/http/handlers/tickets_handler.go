package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/it-support/internal/api/dto"
	"github.com/spec-kit/it-support/internal/domain"
	"github.com/spec-kit/it-support/internal/repository"
	"github.com/spec-kit/it-support/internal/service"
	apperrors "github.com/spec-kit/it-support/pkg/util"
)

// TicketsHandler manages ticket read and manual-update endpoints.
type TicketsHandler struct {
	lifecycle *service.LifecycleService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(lifecycle *service.LifecycleService) *TicketsHandler {
	return &TicketsHandler{lifecycle: lifecycle}
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter := parseTicketQuery(c)
	tickets, err := h.lifecycle.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.lifecycle.GetByKey(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// UpdateTicket PATCH /api/tickets/:id. Manual updates outside the pipeline,
// including closure.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == nil && req.Resolution == nil && req.AssignedTo == nil {
		return apperrors.NewValidationError("no fields to update", nil)
	}

	ticketKey := c.Params("id")
	current, err := h.lifecycle.GetByKey(c.UserContext(), ticketKey)
	if err != nil {
		return err
	}

	update := repository.TicketUpdate{Status: current.Status}
	if req.Status != nil {
		update.Status = *req.Status
		if *req.Status == domain.TicketStatusClosed {
			update.MarkClosed = true
		}
	}
	if req.Resolution != nil {
		update.Resolution = req.Resolution
		update.MarkResolved = true
	}
	if req.AssignedTo != nil {
		update.AssignedTo = req.AssignedTo
		update.MarkAssigned = true
	}

	ticket, err := h.lifecycle.Advance(c.UserContext(), ticketKey, update)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// GetAuditTrail GET /api/tickets/:id/logs.
func (h *TicketsHandler) GetAuditTrail(c *fiber.Ctx) error {
	entries, err := h.lifecycle.AuditTrail(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.AuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.AuditLogResponse{
			ID:               entry.ID,
			Stage:            entry.Stage,
			Action:           entry.Action,
			Input:            entry.Input,
			Output:           entry.Output,
			Status:           entry.Status,
			ProcessingTimeMs: float64(entry.Duration.Microseconds()) / 1000.0,
			ConfidenceScore:  entry.ConfidenceScore,
			ErrorMessage:     entry.ErrorMessage,
			CreatedAt:        entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if category := c.Query("category"); category != "" {
		filter.Category = &category
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:               ticket.ID,
		TicketID:         ticket.TicketKey,
		SubmitterID:      ticket.SubmitterID,
		SubmitterName:    ticket.SubmitterName,
		SubmitterEmail:   ticket.SubmitterEmail,
		IssueDescription: ticket.IssueDescription,
		Category:         ticket.Category,
		Priority:         ticket.Priority,
		Status:           ticket.Status,
		ResolutionType:   ticket.ResolutionType,
		Resolution:       ticket.Resolution,
		ResolutionSteps:  ticket.ResolutionSteps,
		ConfidenceScore:  ticket.ConfidenceScore,
		AutoResolvable:   ticket.AutoResolvable,
		RequiresHuman:    ticket.RequiresHuman,
		AssignedTo:       ticket.AssignedTo,
		AssignedAt:       ticket.AssignedAt,
		CreatedAt:        ticket.CreatedAt,
		UpdatedAt:        ticket.UpdatedAt,
		ResolvedAt:       ticket.ResolvedAt,
		ClosedAt:         ticket.ClosedAt,
	}
}
