package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/it-support/internal/domain"
	"github.com/spec-kit/it-support/internal/knowledge"
	"github.com/spec-kit/it-support/internal/repository"
	apperrors "github.com/spec-kit/it-support/pkg/util"
)

// KnowledgeService manages knowledge-base content and keeps the search index
// in sync with it.
type KnowledgeService struct {
	repo     repository.KnowledgeRepository
	searcher *knowledge.LexicalSearcher
	logger   *zap.Logger
}

// NewKnowledgeService constructs the service.
func NewKnowledgeService(repo repository.KnowledgeRepository, searcher *knowledge.LexicalSearcher, logger *zap.Logger) *KnowledgeService {
	return &KnowledgeService{repo: repo, searcher: searcher, logger: logger}
}

// Bootstrap seeds the knowledge base from the bundled file when the table is
// empty, then builds the search index from whatever is persisted.
func (s *KnowledgeService) Bootstrap(ctx context.Context, seedPath string) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return apperrors.NewPersistenceError(err)
	}
	if count == 0 && seedPath != "" {
		seed, err := knowledge.LoadSeed(seedPath)
		if err != nil {
			s.logger.Warn("knowledge seed unavailable", zap.Error(err))
		} else {
			for i := range seed {
				if err := s.repo.Create(ctx, &seed[i]); err != nil {
					return apperrors.NewPersistenceError(err)
				}
			}
			s.logger.Info("knowledge base seeded", zap.Int("entries", len(seed)))
		}
	}

	entries, err := s.repo.ListAll(ctx)
	if err != nil {
		return apperrors.NewPersistenceError(err)
	}
	s.searcher.Reindex(entries)
	return nil
}

// AddEntry persists a new knowledge entry and indexes it immediately.
func (s *KnowledgeService) AddEntry(ctx context.Context, entry *domain.KnowledgeEntry) error {
	if strings.TrimSpace(entry.Category) == "" || strings.TrimSpace(entry.Solution) == "" {
		return apperrors.NewValidationError("category and solution required", nil)
	}
	if entry.Title == "" {
		entry.Title = entry.Category
	}
	if entry.PriorityLevel == "" {
		entry.PriorityLevel = domain.TicketPriorityMedium
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return apperrors.NewPersistenceError(err)
	}
	s.searcher.Add(*entry)
	s.logger.Info("knowledge entry added", zap.String("category", entry.Category))
	return nil
}

// List returns all knowledge entries.
func (s *KnowledgeService) List(ctx context.Context) ([]domain.KnowledgeEntry, error) {
	entries, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}
