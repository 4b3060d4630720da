package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/it-support/internal/domain"
	"github.com/spec-kit/it-support/internal/repository"
)

// fakeTicketRepo is an in-memory TicketRepository. It enforces the same
// ticket-key uniqueness the real table does.
type fakeTicketRepo struct {
	mu     sync.Mutex
	byKey  map[string]*domain.Ticket
	order  []string
	nextID int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{byKey: make(map[string]*domain.Ticket)}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byKey[ticket.TicketKey]; exists {
		return fmt.Errorf("duplicate ticket key %q", ticket.TicketKey)
	}
	r.nextID++
	ticket.ID = fmt.Sprintf("ticket-%d", r.nextID)
	ticket.CreatedAt = time.Now().UTC()
	ticket.UpdatedAt = ticket.CreatedAt
	stored := *ticket
	r.byKey[ticket.TicketKey] = &stored
	r.order = append(r.order, ticket.TicketKey)
	return nil
}

func (r *fakeTicketRepo) GetByKey(_ context.Context, ticketKey string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byKey[ticketKey]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeTicketRepo) ApplyUpdate(_ context.Context, ticketKey string, update repository.TicketUpdate) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byKey[ticketKey]
	if !ok {
		return nil, pgx.ErrNoRows
	}

	now := time.Now().UTC()
	stored.Status = update.Status
	stored.UpdatedAt = now
	if update.Category != nil {
		stored.Category = update.Category
	}
	if update.Priority != nil {
		stored.Priority = update.Priority
	}
	if update.ConfidenceScore != nil {
		stored.ConfidenceScore = update.ConfidenceScore
	}
	if update.AutoResolvable != nil {
		stored.AutoResolvable = *update.AutoResolvable
	}
	if update.RequiresHuman != nil {
		stored.RequiresHuman = *update.RequiresHuman
	}
	if update.ResolutionType != nil {
		stored.ResolutionType = update.ResolutionType
	}
	if update.Resolution != nil {
		stored.Resolution = update.Resolution
	}
	if update.ResolutionSteps != nil {
		stored.ResolutionSteps = update.ResolutionSteps
	}
	if update.AssignedTo != nil {
		stored.AssignedTo = update.AssignedTo
	}
	if update.MarkAssigned {
		stored.AssignedAt = &now
	}
	if update.MarkResolved {
		stored.ResolvedAt = &now
	}
	if update.MarkClosed {
		stored.ClosedAt = &now
	}

	copied := *stored
	return &copied, nil
}

func (r *fakeTicketRepo) List(_ context.Context, _ repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.Ticket, 0, len(r.order))
	for _, key := range r.order {
		result = append(result, *r.byKey[key])
	}
	return result, nil
}

func (r *fakeTicketRepo) StatusCounts(_ context.Context) (map[domain.TicketStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[domain.TicketStatus]int64)
	for _, stored := range r.byKey {
		counts[stored.Status]++
	}
	return counts, nil
}

func (r *fakeTicketRepo) CategoryDistribution(_ context.Context) (map[string]int64, error) {
	return map[string]int64{}, nil
}

func (r *fakeTicketRepo) PriorityDistribution(_ context.Context) (map[string]int64, error) {
	return map[string]int64{}, nil
}

func (r *fakeTicketRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byKey)
}

// fakeAuditRepo appends entries in memory, preserving order.
type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditLogEntry
	nextID  int
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (r *fakeAuditRepo) Append(_ context.Context, entry *domain.AuditLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	entry.ID = fmt.Sprintf("audit-%d", r.nextID)
	entry.CreatedAt = time.Now().UTC()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.AuditLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.AuditLogEntry
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (r *fakeAuditRepo) StagePerformance(_ context.Context) ([]repository.StagePerformance, error) {
	return nil, nil
}

func (r *fakeAuditRepo) forTicket(ticketID string) []domain.AuditLogEntry {
	entries, _ := r.ListByTicket(context.Background(), ticketID)
	return entries
}

// fakeKnowledgeRepo tracks entries and usage bumps.
type fakeKnowledgeRepo struct {
	mu      sync.Mutex
	entries []domain.KnowledgeEntry
	usage   map[string]int
	nextID  int
}

func newFakeKnowledgeRepo() *fakeKnowledgeRepo {
	return &fakeKnowledgeRepo{usage: make(map[string]int)}
}

func (r *fakeKnowledgeRepo) Create(_ context.Context, entry *domain.KnowledgeEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	entry.ID = fmt.Sprintf("kb-%d", r.nextID)
	entry.CreatedAt = time.Now().UTC()
	entry.UpdatedAt = entry.CreatedAt
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeKnowledgeRepo) ListAll(_ context.Context) ([]domain.KnowledgeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.KnowledgeEntry{}, r.entries...), nil
}

func (r *fakeKnowledgeRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.entries)), nil
}

func (r *fakeKnowledgeRepo) IncrementUsage(_ context.Context, entryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usage[entryID]++
	return nil
}

// fakeSearcher returns a canned match or error.
type fakeSearcher struct {
	match *domain.KnowledgeMatch
	err   error
}

func (s *fakeSearcher) BestMatch(_ context.Context, _ string) (*domain.KnowledgeMatch, error) {
	return s.match, s.err
}
