package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/it-support/internal/domain"
)

// KnowledgeRepository stores knowledge-base entries.
type KnowledgeRepository interface {
	Create(ctx context.Context, entry *domain.KnowledgeEntry) error
	ListAll(ctx context.Context) ([]domain.KnowledgeEntry, error)
	Count(ctx context.Context) (int64, error)
	IncrementUsage(ctx context.Context, entryID string) error
}

type knowledgeRepository struct {
	pool *pgxpool.Pool
}

// NewKnowledgeRepository builds repository.
func NewKnowledgeRepository(pool *pgxpool.Pool) KnowledgeRepository {
	return &knowledgeRepository{pool: pool}
}

func (r *knowledgeRepository) Create(ctx context.Context, entry *domain.KnowledgeEntry) error {
	const query = `
        INSERT INTO knowledge_base (category, title, description, solution, keywords, auto_resolvable, priority_level)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, success_rate, usage_count, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		entry.Category,
		entry.Title,
		entry.Description,
		entry.Solution,
		entry.Keywords,
		entry.AutoResolvable,
		entry.PriorityLevel,
	).Scan(&entry.ID, &entry.SuccessRate, &entry.UsageCount, &entry.CreatedAt, &entry.UpdatedAt)
}

func (r *knowledgeRepository) ListAll(ctx context.Context) ([]domain.KnowledgeEntry, error) {
	const query = `
        SELECT id, category, title, description, solution, keywords, auto_resolvable, priority_level,
               success_rate, usage_count, created_at, updated_at
        FROM knowledge_base ORDER BY category, title`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.KnowledgeEntry
	for rows.Next() {
		var entry domain.KnowledgeEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.Category,
			&entry.Title,
			&entry.Description,
			&entry.Solution,
			&entry.Keywords,
			&entry.AutoResolvable,
			&entry.PriorityLevel,
			&entry.SuccessRate,
			&entry.UsageCount,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *knowledgeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM knowledge_base`).Scan(&count)
	return count, err
}

func (r *knowledgeRepository) IncrementUsage(ctx context.Context, entryID string) error {
	const query = `UPDATE knowledge_base SET usage_count = usage_count + 1, updated_at = NOW() WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, entryID)
	return err
}
