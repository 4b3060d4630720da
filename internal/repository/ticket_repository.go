package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/it-support/internal/domain"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Category   *string
	Limit      int
	Offset     int
}

// TicketUpdate carries the stage-specific fields an advance writes alongside
// the status. Nil fields are left untouched.
type TicketUpdate struct {
	Status          domain.TicketStatus
	Category        *string
	Priority        *domain.TicketPriority
	ConfidenceScore *float64
	AutoResolvable  *bool
	RequiresHuman   *bool
	ResolutionType  *domain.ResolutionType
	Resolution      *string
	ResolutionSteps *string
	AssignedTo      *string
	MarkAssigned    bool
	MarkResolved    bool
	MarkClosed      bool
}

// TicketRepository encapsulates ticket persistence. Implementations must
// guarantee ticket key uniqueness and durability of each update before
// returning.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByKey(ctx context.Context, ticketKey string) (*domain.Ticket, error)
	ApplyUpdate(ctx context.Context, ticketKey string, update TicketUpdate) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	StatusCounts(ctx context.Context) (map[domain.TicketStatus]int64, error)
	CategoryDistribution(ctx context.Context) (map[string]int64, error)
	PriorityDistribution(ctx context.Context) (map[string]int64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, ticket_key, submitter_id, submitter_name, submitter_email, issue_description,
       category, priority, status, resolution_type, resolution, resolution_instructions,
       confidence_score, auto_resolvable, requires_human, assigned_to, assigned_at,
       created_at, updated_at, resolved_at, closed_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_key, submitter_id, submitter_name, submitter_email, issue_description, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.TicketKey,
		ticket.SubmitterID,
		ticket.SubmitterName,
		ticket.SubmitterEmail,
		ticket.IssueDescription,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByKey(ctx context.Context, ticketKey string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE ticket_key=$1`, ticketColumns)
	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, ticketKey), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ApplyUpdate(ctx context.Context, ticketKey string, update TicketUpdate) (*domain.Ticket, error) {
	sets := []string{"status=$1", "updated_at=NOW()"}
	args := []any{update.Status}

	addSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if update.Category != nil {
		addSet("category", *update.Category)
	}
	if update.Priority != nil {
		addSet("priority", *update.Priority)
	}
	if update.ConfidenceScore != nil {
		addSet("confidence_score", *update.ConfidenceScore)
	}
	if update.AutoResolvable != nil {
		addSet("auto_resolvable", *update.AutoResolvable)
	}
	if update.RequiresHuman != nil {
		addSet("requires_human", *update.RequiresHuman)
	}
	if update.ResolutionType != nil {
		addSet("resolution_type", *update.ResolutionType)
	}
	if update.Resolution != nil {
		addSet("resolution", *update.Resolution)
	}
	if update.ResolutionSteps != nil {
		addSet("resolution_instructions", *update.ResolutionSteps)
	}
	if update.AssignedTo != nil {
		addSet("assigned_to", *update.AssignedTo)
	}
	if update.MarkAssigned {
		sets = append(sets, "assigned_at=NOW()")
	}
	if update.MarkResolved {
		sets = append(sets, "resolved_at=NOW()")
	}
	if update.MarkClosed {
		sets = append(sets, "closed_at=NOW()")
	}

	args = append(args, ticketKey)
	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE ticket_key=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), ticketColumns)

	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, args...), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Category != nil && strings.TrimSpace(*filter.Category) != "" {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) StatusCounts(ctx context.Context) (map[domain.TicketStatus]int64, error) {
	const query = `SELECT status, COUNT(*) FROM tickets GROUP BY status`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.TicketStatus]int64)
	for rows.Next() {
		var status domain.TicketStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *ticketRepository) CategoryDistribution(ctx context.Context) (map[string]int64, error) {
	const query = `SELECT category, COUNT(*) FROM tickets WHERE category IS NOT NULL GROUP BY category`
	return r.distribution(ctx, query)
}

func (r *ticketRepository) PriorityDistribution(ctx context.Context) (map[string]int64, error) {
	const query = `SELECT priority, COUNT(*) FROM tickets WHERE priority IS NOT NULL GROUP BY priority`
	return r.distribution(ctx, query)
}

func (r *ticketRepository) distribution(ctx context.Context, query string) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dist := make(map[string]int64)
	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		dist[key] = count
	}
	return dist, rows.Err()
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.TicketKey,
		&ticket.SubmitterID,
		&ticket.SubmitterName,
		&ticket.SubmitterEmail,
		&ticket.IssueDescription,
		&ticket.Category,
		&ticket.Priority,
		&ticket.Status,
		&ticket.ResolutionType,
		&ticket.Resolution,
		&ticket.ResolutionSteps,
		&ticket.ConfidenceScore,
		&ticket.AutoResolvable,
		&ticket.RequiresHuman,
		&ticket.AssignedTo,
		&ticket.AssignedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
	)
}
