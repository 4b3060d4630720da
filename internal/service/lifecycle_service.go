package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/it-support/internal/domain"
	"github.com/spec-kit/it-support/internal/repository"
	apperrors "github.com/spec-kit/it-support/pkg/util"
)

// LifecycleService owns the ticket state machine and the audit trail. It is
// the only component that mutates persisted state; pipeline stages stay pure.
type LifecycleService struct {
	tickets repository.TicketRepository
	audit   repository.AuditRepository
}

// LifecycleDependencies bundles repositories for the lifecycle service.
type LifecycleDependencies struct {
	TicketRepo repository.TicketRepository
	AuditRepo  repository.AuditRepository
}

// NewLifecycleService constructs the service.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	return &LifecycleService{
		tickets: deps.TicketRepo,
		audit:   deps.AuditRepo,
	}
}

// allowedTransitions encodes the monotonic ticket state machine. A ticket is
// never reverted to an earlier status; closure is terminal.
var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusNew:        {domain.TicketStatusClassified},
	domain.TicketStatusClassified: {domain.TicketStatusResolved, domain.TicketStatusEscalated},
	domain.TicketStatusResolved:   {domain.TicketStatusClosed},
	domain.TicketStatusEscalated:  {domain.TicketStatusClosed},
	domain.TicketStatusClosed:     {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	if current == next {
		return true
	}
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Create persists a new ticket in status "new" and returns it. The ticket
// key is derived from a UUID, so concurrent creations cannot collide; the
// unique column backs that invariant up.
func (s *LifecycleService) Create(ctx context.Context, issueText string, submitter domain.Submitter) (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		TicketKey:        generateTicketKey(),
		IssueDescription: strings.TrimSpace(issueText),
		Status:           domain.TicketStatusNew,
	}
	if submitter.ID != "" {
		id := submitter.ID
		ticket.SubmitterID = &id
	}
	if submitter.Name != "" {
		name := submitter.Name
		ticket.SubmitterName = &name
	}
	if submitter.Email != "" {
		email := submitter.Email
		ticket.SubmitterEmail = &email
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return ticket, nil
}

// RecordStage appends one audit entry for a pipeline stage execution. It
// never mutates the ticket itself.
func (s *LifecycleService) RecordStage(ctx context.Context, entry *domain.AuditLogEntry) error {
	if err := s.audit.Append(ctx, entry); err != nil {
		return apperrors.NewPersistenceError(err)
	}
	return nil
}

// Advance moves a ticket to the given status and writes the stage-specific
// fields. It fails for unknown tickets and for transitions that would move
// the ticket backwards.
func (s *LifecycleService) Advance(ctx context.Context, ticketKey string, update repository.TicketUpdate) (*domain.Ticket, error) {
	current, err := s.tickets.GetByKey(ctx, ticketKey)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !isValidTransition(current.Status, update.Status) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": current.Status,
			"to":   update.Status,
		})
	}
	ticket, err := s.tickets.ApplyUpdate(ctx, ticketKey, update)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return ticket, nil
}

// GetByKey fetches a ticket by its public key.
func (s *LifecycleService) GetByKey(ctx context.Context, ticketKey string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByKey(ctx, ticketKey)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// List returns tickets matching the filter, newest first.
func (s *LifecycleService) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// AuditTrail returns a ticket's audit entries in creation order.
func (s *LifecycleService) AuditTrail(ctx context.Context, ticketKey string) ([]domain.AuditLogEntry, error) {
	ticket, err := s.tickets.GetByKey(ctx, ticketKey)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	entries, err := s.audit.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func generateTicketKey() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "IT-" + time.Now().UTC().Format("20060102") + "-" + suffix
}
