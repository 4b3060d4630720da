package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/it-support/internal/domain"
)

// StagePerformance aggregates audit entries for one pipeline stage.
type StagePerformance struct {
	Stage          string
	TotalActions   int64
	SuccessCount   int64
	AvgDurationMs  float64
	AvgConfidence  float64
	LastExecutedAt time.Time
}

// AuditRepository stores the append-only pipeline audit trail.
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditLogEntry) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.AuditLogEntry, error)
	StagePerformance(ctx context.Context) ([]StagePerformance, error)
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository builds repository.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Append(ctx context.Context, entry *domain.AuditLogEntry) error {
	const query = `
        INSERT INTO audit_log (ticket_id, stage, action, input, output, status, duration_ms, confidence_score, error_message)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.Stage,
		entry.Action,
		entry.Input,
		entry.Output,
		entry.Status,
		durationMs(entry.Duration),
		entry.ConfidenceScore,
		entry.ErrorMessage,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.AuditLogEntry, error) {
	const query = `
        SELECT id, ticket_id, stage, action, input, output, status, duration_ms, confidence_score, error_message, created_at
        FROM audit_log WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditLogEntry
	for rows.Next() {
		var entry domain.AuditLogEntry
		var ms float64
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.Stage,
			&entry.Action,
			&entry.Input,
			&entry.Output,
			&entry.Status,
			&ms,
			&entry.ConfidenceScore,
			&entry.ErrorMessage,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.Duration = time.Duration(ms * float64(time.Millisecond))
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *auditRepository) StagePerformance(ctx context.Context) ([]StagePerformance, error) {
	const query = `
        SELECT stage,
               COUNT(*),
               COUNT(*) FILTER (WHERE status='success'),
               COALESCE(AVG(duration_ms), 0),
               COALESCE(AVG(confidence_score), 0),
               MAX(created_at)
        FROM audit_log GROUP BY stage ORDER BY stage`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StagePerformance
	for rows.Next() {
		var perf StagePerformance
		if err := rows.Scan(
			&perf.Stage,
			&perf.TotalActions,
			&perf.SuccessCount,
			&perf.AvgDurationMs,
			&perf.AvgConfidence,
			&perf.LastExecutedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, perf)
	}
	return result, rows.Err()
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
