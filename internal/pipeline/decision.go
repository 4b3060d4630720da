package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/it-support/internal/domain"
)

// DecisionEngine maps a classification to an auto-resolve/escalate verdict.
// Decide is deterministic and performs no I/O.
type DecisionEngine struct {
	autoResolveThreshold   float64
	lowConfidenceThreshold float64
	logger                 *zap.Logger
}

// NewDecisionEngine constructs the engine with its policy thresholds.
func NewDecisionEngine(autoResolveThreshold, lowConfidenceThreshold float64, logger *zap.Logger) *DecisionEngine {
	return &DecisionEngine{
		autoResolveThreshold:   autoResolveThreshold,
		lowConfidenceThreshold: lowConfidenceThreshold,
		logger:                 logger,
	}
}

// Decide applies the policy rules in order; the first matching rule wins.
// The ordering is a behavioral contract: an auto-resolvable classification at
// or above the auto-resolve threshold is resolved automatically even when its
// priority is critical, because the auto-resolve rule is checked first.
func (e *DecisionEngine) Decide(classification domain.Classification) domain.Decision {
	score := classification.ConfidenceScore

	var action domain.DecisionAction
	var reasoning string

	switch {
	case classification.AutoResolvable && score >= e.autoResolveThreshold:
		action = domain.ActionAutoResolve
		reasoning = fmt.Sprintf(
			"Issue classified as '%s' with high confidence (%.2f) and marked as auto-resolvable",
			classification.Category, score)

	case classification.Priority == domain.TicketPriorityCritical:
		action = domain.ActionEscalate
		reasoning = "Critical priority issues always require immediate human attention"

	case score < e.lowConfidenceThreshold:
		action = domain.ActionEscalate
		reasoning = fmt.Sprintf("Low confidence score (%.2f) - human review needed", score)

	default:
		action = domain.ActionEscalate
		reasoning = "Issue complexity or policy requires human IT staff involvement"
	}

	decision := domain.Decision{
		Action:        action,
		Reasoning:     reasoning,
		Confidence:    score,
		RequiresHuman: action == domain.ActionEscalate,
	}
	e.logger.Info("resolution path decided",
		zap.String("action", string(decision.Action)),
		zap.Float64("confidence", score))
	return decision
}
