package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/it-support/internal/domain"
	"github.com/spec-kit/it-support/internal/knowledge"
)

// Confidence tier cutoffs. These bucket the relevance score for display and
// are independent of the decision thresholds.
const (
	tierHighCutoff   = 0.7
	tierMediumCutoff = 0.5
)

// Classifier turns an issue description into a structured classification
// using the best knowledge-base match from the injected searcher.
type Classifier struct {
	searcher            knowledge.Searcher
	confidenceThreshold float64
	logger              *zap.Logger
}

// NewClassifier constructs a classifier. confidenceThreshold gates the
// auto-resolvable flag: a match below it is still reported but never marked
// safe for automatic resolution.
func NewClassifier(searcher knowledge.Searcher, confidenceThreshold float64, logger *zap.Logger) *Classifier {
	return &Classifier{
		searcher:            searcher,
		confidenceThreshold: confidenceThreshold,
		logger:              logger,
	}
}

// Classify queries the search collaborator for the single best match. A
// missing match or a collaborator fault degrades to a zero-confidence
// classification carrying the error; it never propagates a raw fault upward.
func (c *Classifier) Classify(ctx context.Context, issueText string) domain.Classification {
	match, err := c.searcher.BestMatch(ctx, issueText)
	if err != nil {
		c.logger.Error("similarity search failed", zap.Error(err))
		return failedClassification(err.Error())
	}
	if match == nil {
		c.logger.Warn("no knowledge base match", zap.String("issue", preview(issueText, 50)))
		return failedClassification("No matching knowledge base entry found")
	}

	score := match.RelevanceScore
	classification := domain.Classification{
		Success:         true,
		Category:        match.Category,
		Title:           match.Title,
		Priority:        match.Priority,
		ConfidenceScore: score,
		ConfidenceTier:  tierFor(score),
		AutoResolvable:  match.AutoResolvable && score > c.confidenceThreshold,
		KeywordsMatched: match.Keywords,
		Solution:        match.Solution,
		Description:     match.Description,
		MatchedEntryID:  match.EntryID,
	}
	c.logger.Info("issue classified",
		zap.String("category", classification.Category),
		zap.String("confidence_level", string(classification.ConfidenceTier)),
		zap.Float64("confidence_score", score))
	return classification
}

func failedClassification(reason string) domain.Classification {
	return domain.Classification{
		Success:         false,
		Category:        "Unknown",
		Priority:        domain.TicketPriorityMedium,
		ConfidenceScore: 0.0,
		ConfidenceTier:  domain.ConfidenceTierLow,
		AutoResolvable:  false,
		KeywordsMatched: []string{},
		Error:           reason,
	}
}

func tierFor(score float64) domain.ConfidenceTier {
	switch {
	case score > tierHighCutoff:
		return domain.ConfidenceTierHigh
	case score > tierMediumCutoff:
		return domain.ConfidenceTierMedium
	default:
		return domain.ConfidenceTierLow
	}
}

func preview(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
