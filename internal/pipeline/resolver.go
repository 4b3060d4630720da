package pipeline

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/it-support/internal/domain"
)

// Resolver renders the automatic-resolution payload from a classification's
// solution text.
type Resolver struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewResolver constructs a resolver.
func NewResolver(logger *zap.Logger) *Resolver {
	return &Resolver{logger: logger, now: time.Now}
}

// Resolve builds resolution instructions from the matched solution. A
// classification routed here without solution text yields a failed (but
// reported, never thrown) resolution.
func (r *Resolver) Resolve(classification domain.Classification) domain.Resolution {
	category := classification.Category
	title := classification.Title
	if title == "" {
		title = category
	}

	if classification.Solution == "" {
		r.logger.Warn("no solution available for auto-resolution", zap.String("category", category))
		return domain.Resolution{
			Success:  false,
			Status:   domain.ResolutionStatusFailed,
			Category: category,
			Title:    title,
			Error:    "No solution available for this issue type",
		}
	}

	instructions := fmt.Sprintf(`Automatic Resolution - %s

%s

---
If this solution doesn't resolve your issue, please reply to this ticket or contact IT support directly.

Category: %s
Confidence: %.1f%%`,
		title, classification.Solution, category, classification.ConfidenceScore*100)

	r.logger.Info("issue resolved automatically", zap.String("category", category))
	return domain.Resolution{
		Success:      true,
		Status:       domain.ResolutionStatusResolved,
		Solution:     classification.Solution,
		Instructions: instructions,
		Category:     category,
		Title:        title,
		ResolvedAt:   r.now().UTC(),
	}
}
