package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/it-support/internal/domain"
	"github.com/spec-kit/it-support/internal/events"
	"github.com/spec-kit/it-support/internal/observability"
	"github.com/spec-kit/it-support/internal/pipeline"
	"github.com/spec-kit/it-support/internal/repository"
	apperrors "github.com/spec-kit/it-support/pkg/util"
)

// WorkflowService sequences the intake → classify → decide → resolve/escalate
// pipeline. It carries no branching policy of its own: the fork follows the
// decision engine's verdict, and every stage is audited regardless of its
// own outcome.
type WorkflowService struct {
	lifecycle  *LifecycleService
	classifier *pipeline.Classifier
	engine     *pipeline.DecisionEngine
	resolver   *pipeline.Resolver
	escalator  *pipeline.Escalator
	knowledge  repository.KnowledgeRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	minLength  int
}

// WorkflowDependencies bundles collaborators for the workflow service.
type WorkflowDependencies struct {
	Lifecycle      *LifecycleService
	Classifier     *pipeline.Classifier
	DecisionEngine *pipeline.DecisionEngine
	Resolver       *pipeline.Resolver
	Escalator      *pipeline.Escalator
	KnowledgeRepo  repository.KnowledgeRepository
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
	Logger         *zap.Logger
	MinDescLength  int
}

// WorkflowResult is returned to the caller after a completed run.
type WorkflowResult struct {
	TicketKey               string
	Status                  domain.TicketStatus
	Category                string
	Priority                domain.TicketPriority
	ResolutionType          domain.ResolutionType
	Message                 string
	ResolutionInstructions  *string
	RequiresHuman           bool
	EstimatedResolutionTime string
}

// NewWorkflowService constructs the orchestrator.
func NewWorkflowService(deps WorkflowDependencies) *WorkflowService {
	minLength := deps.MinDescLength
	if minLength <= 0 {
		minLength = 10
	}
	return &WorkflowService{
		lifecycle:  deps.Lifecycle,
		classifier: deps.Classifier,
		engine:     deps.DecisionEngine,
		resolver:   deps.Resolver,
		escalator:  deps.Escalator,
		knowledge:  deps.KnowledgeRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		minLength:  minLength,
	}
}

// Run executes the full pipeline for one issue. Validation failures abort
// before any ticket exists; store failures surface to the caller; everything
// else degrades into value objects the downstream stages can still act on.
func (s *WorkflowService) Run(ctx context.Context, issueText string, submitter domain.Submitter) (*WorkflowResult, error) {
	trimmed := strings.TrimSpace(issueText)
	if len(trimmed) < s.minLength {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("Issue description must be at least %d characters", s.minLength), nil)
	}

	ticket, err := s.lifecycle.Create(ctx, trimmed, submitter)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ticket created", zap.String("ticket_key", ticket.TicketKey))
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketCreated,
		TicketKey: ticket.TicketKey,
		Payload: events.TicketCreatedPayload{
			SubmitterID:  ticket.SubmitterID,
			IssuePreview: stringPreview(trimmed, 120),
		},
	})

	classification, err := s.classifyStage(ctx, ticket, trimmed)
	if err != nil {
		return nil, err
	}

	decision, err := s.decideStage(ctx, ticket, classification)
	if err != nil {
		return nil, err
	}

	if decision.Action == domain.ActionAutoResolve {
		result, err := s.resolveStage(ctx, ticket, trimmed, classification)
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}
		// Resolution reported MissingSolution; fall back to escalation so
		// the ticket still ends in a terminal status.
	}

	return s.escalateStage(ctx, ticket, trimmed, classification)
}

func (s *WorkflowService) classifyStage(ctx context.Context, ticket *domain.Ticket, issueText string) (domain.Classification, error) {
	start := time.Now()
	classification := s.classifier.Classify(ctx, issueText)
	duration := time.Since(start)

	outcome := domain.StageOutcomeSuccess
	if !classification.Success {
		outcome = domain.StageOutcomeFailed
	}
	s.metrics.RecordStage(domain.StageClassification, string(outcome), duration)

	entry := &domain.AuditLogEntry{
		TicketID:        ticket.ID,
		Stage:           domain.StageClassification,
		Action:          "classify_issue",
		Input:           map[string]any{"issue": issueText},
		Output:          toPayload(classification),
		Status:          outcome,
		Duration:        duration,
		ConfidenceScore: &classification.ConfidenceScore,
	}
	if classification.Error != "" {
		errMsg := classification.Error
		entry.ErrorMessage = &errMsg
	}
	if err := s.lifecycle.RecordStage(ctx, entry); err != nil {
		return classification, err
	}

	category := classification.Category
	priority := classification.Priority
	confidence := classification.ConfidenceScore
	autoResolvable := classification.AutoResolvable
	if _, err := s.lifecycle.Advance(ctx, ticket.TicketKey, repository.TicketUpdate{
		Status:          domain.TicketStatusClassified,
		Category:        &category,
		Priority:        &priority,
		ConfidenceScore: &confidence,
		AutoResolvable:  &autoResolvable,
	}); err != nil {
		return classification, err
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketClassified,
		TicketKey: ticket.TicketKey,
		Payload: events.TicketClassifiedPayload{
			Category:        category,
			Priority:        priority,
			ConfidenceScore: confidence,
			AutoResolvable:  autoResolvable,
		},
	})
	return classification, nil
}

func (s *WorkflowService) decideStage(ctx context.Context, ticket *domain.Ticket, classification domain.Classification) (domain.Decision, error) {
	start := time.Now()
	decision := s.engine.Decide(classification)
	duration := time.Since(start)
	s.metrics.RecordStage(domain.StageDecision, string(domain.StageOutcomeSuccess), duration)

	entry := &domain.AuditLogEntry{
		TicketID: ticket.ID,
		Stage:    domain.StageDecision,
		Action:   "make_decision",
		Input:    toPayload(classification),
		Output:   toPayload(decision),
		Status:   domain.StageOutcomeSuccess,
		Duration: duration,
	}
	if err := s.lifecycle.RecordStage(ctx, entry); err != nil {
		return decision, err
	}
	return decision, nil
}

// resolveStage returns a nil result (and nil error) when the resolver
// reported a missing solution; the caller then re-routes to escalation.
func (s *WorkflowService) resolveStage(ctx context.Context, ticket *domain.Ticket, issueText string, classification domain.Classification) (*WorkflowResult, error) {
	start := time.Now()
	resolution := s.resolver.Resolve(classification)
	duration := time.Since(start)

	outcome := domain.StageOutcomeSuccess
	if !resolution.Success {
		outcome = domain.StageOutcomeFailed
	}
	s.metrics.RecordStage(domain.StageResolution, string(outcome), duration)

	entry := &domain.AuditLogEntry{
		TicketID: ticket.ID,
		Stage:    domain.StageResolution,
		Action:   "auto_resolve",
		Input:    toPayload(classification),
		Output:   toPayload(resolution),
		Status:   outcome,
		Duration: duration,
	}
	if resolution.Error != "" {
		errMsg := resolution.Error
		entry.ErrorMessage = &errMsg
	}
	if err := s.lifecycle.RecordStage(ctx, entry); err != nil {
		return nil, err
	}

	if !resolution.Success {
		s.logger.Warn("auto-resolution failed, falling back to escalation",
			zap.String("ticket_key", ticket.TicketKey))
		return nil, nil
	}

	resolutionType := domain.ResolutionTypeAutomatic
	requiresHuman := false
	if _, err := s.lifecycle.Advance(ctx, ticket.TicketKey, repository.TicketUpdate{
		Status:          domain.TicketStatusResolved,
		ResolutionType:  &resolutionType,
		Resolution:      &resolution.Solution,
		ResolutionSteps: &resolution.Instructions,
		RequiresHuman:   &requiresHuman,
		MarkResolved:    true,
	}); err != nil {
		return nil, err
	}

	if s.knowledge != nil && classification.MatchedEntryID != "" {
		if err := s.knowledge.IncrementUsage(ctx, classification.MatchedEntryID); err != nil {
			s.logger.Warn("failed to bump knowledge usage", zap.Error(err))
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketResolved,
		TicketKey: ticket.TicketKey,
		Payload: events.TicketResolvedPayload{
			Category: resolution.Category,
			Title:    resolution.Title,
		},
	})

	instructions := resolution.Instructions
	return &WorkflowResult{
		TicketKey:               ticket.TicketKey,
		Status:                  domain.TicketStatusResolved,
		Category:                classification.Category,
		Priority:                classification.Priority,
		ResolutionType:          domain.ResolutionTypeAutomatic,
		Message:                 instructions,
		ResolutionInstructions:  &instructions,
		RequiresHuman:           false,
		EstimatedResolutionTime: "Immediate",
	}, nil
}

func (s *WorkflowService) escalateStage(ctx context.Context, ticket *domain.Ticket, issueText string, classification domain.Classification) (*WorkflowResult, error) {
	start := time.Now()
	escalation := s.escalator.Escalate(issueText, classification, ticket.TicketKey)
	duration := time.Since(start)
	s.metrics.RecordStage(domain.StageEscalation, string(domain.StageOutcomeSuccess), duration)

	entry := &domain.AuditLogEntry{
		TicketID: ticket.ID,
		Stage:    domain.StageEscalation,
		Action:   "escalate_to_human",
		Input:    toPayload(classification),
		Output:   toPayload(escalation),
		Status:   domain.StageOutcomeSuccess,
		Duration: duration,
	}
	if err := s.lifecycle.RecordStage(ctx, entry); err != nil {
		return nil, err
	}

	resolutionType := domain.ResolutionTypeEscalated
	requiresHuman := true
	assignedTo := escalation.AssignedTo
	if _, err := s.lifecycle.Advance(ctx, ticket.TicketKey, repository.TicketUpdate{
		Status:         domain.TicketStatusEscalated,
		ResolutionType: &resolutionType,
		RequiresHuman:  &requiresHuman,
		AssignedTo:     &assignedTo,
		MarkAssigned:   true,
	}); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketEscalated,
		TicketKey: ticket.TicketKey,
		Payload: events.TicketEscalatedPayload{
			AssignedTo:        escalation.AssignedTo,
			Priority:          escalation.Priority,
			EstimatedResponse: escalation.EstimatedResponse,
		},
	})

	return &WorkflowResult{
		TicketKey:               ticket.TicketKey,
		Status:                  domain.TicketStatusEscalated,
		Category:                escalation.Category,
		Priority:                escalation.Priority,
		ResolutionType:          domain.ResolutionTypeEscalated,
		Message:                 escalation.Message,
		RequiresHuman:           true,
		EstimatedResolutionTime: escalation.EstimatedResponse,
	}, nil
}

func (s *WorkflowService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// toPayload converts a tagged value object into the structured form stored
// in the audit log.
func toPayload(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]any{"marshal_error": err.Error()}
	}
	payload := map[string]any{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return map[string]any{"marshal_error": err.Error()}
	}
	return payload
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
