package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/it-support/internal/domain"
	"github.com/spec-kit/it-support/internal/events"
	"github.com/spec-kit/it-support/internal/knowledge"
	"github.com/spec-kit/it-support/internal/observability"
	"github.com/spec-kit/it-support/internal/pipeline"
)

type workflowFixture struct {
	workflow *WorkflowService
	tickets  *fakeTicketRepo
	audit    *fakeAuditRepo
	kb       *fakeKnowledgeRepo
	events   *capturedEvents
}

type capturedEvents struct {
	mu    sync.Mutex
	types []events.EventType
}

func (c *capturedEvents) record(_ context.Context, event events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types = append(c.types, event.Type)
	return nil
}

func (c *capturedEvents) all() []events.EventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]events.EventType{}, c.types...)
}

func newWorkflowFixture(searcher knowledge.Searcher) *workflowFixture {
	tickets := newFakeTicketRepo()
	audit := newFakeAuditRepo()
	kb := newFakeKnowledgeRepo()
	captured := &capturedEvents{}

	dispatcher := events.NewInMemoryDispatcher()
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketClassified,
		events.EventTicketResolved,
		events.EventTicketEscalated,
	} {
		dispatcher.Subscribe(eventType, captured.record)
	}

	logger := zap.NewNop()
	lifecycle := NewLifecycleService(LifecycleDependencies{TicketRepo: tickets, AuditRepo: audit})
	workflow := NewWorkflowService(WorkflowDependencies{
		Lifecycle:      lifecycle,
		Classifier:     pipeline.NewClassifier(searcher, 0.6, logger),
		DecisionEngine: pipeline.NewDecisionEngine(0.7, 0.5, logger),
		Resolver:       pipeline.NewResolver(logger),
		Escalator:      pipeline.NewEscalator(logger),
		KnowledgeRepo:  kb,
		Dispatcher:     dispatcher,
		Metrics:        observability.NewMetrics(),
		Logger:         logger,
		MinDescLength:  10,
	})

	return &workflowFixture{workflow: workflow, tickets: tickets, audit: audit, kb: kb, events: captured}
}

func stagesOf(entries []domain.AuditLogEntry) []string {
	stages := make([]string, 0, len(entries))
	for _, entry := range entries {
		stages = append(stages, entry.Stage)
	}
	return stages
}

func TestRunAutoResolvesKnownIssue(t *testing.T) {
	fixture := newWorkflowFixture(&fakeSearcher{match: &domain.KnowledgeMatch{
		EntryID:        "kb-password",
		Category:       "Password Reset",
		Title:          "Forgotten or expired password",
		Solution:       "Use the self-service portal.",
		AutoResolvable: true,
		Priority:       domain.TicketPriorityLow,
		RelevanceScore: 0.85,
	}})
	ctx := context.Background()

	result, err := fixture.workflow.Run(ctx, "I forgot my password and cannot log in", domain.Submitter{ID: "emp-1"})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusResolved, result.Status)
	assert.Equal(t, domain.ResolutionTypeAutomatic, result.ResolutionType)
	assert.Equal(t, "Password Reset", result.Category)
	assert.False(t, result.RequiresHuman)
	assert.Equal(t, "Immediate", result.EstimatedResolutionTime)
	require.NotNil(t, result.ResolutionInstructions)
	assert.Contains(t, *result.ResolutionInstructions, "Use the self-service portal.")

	ticket, err := fixture.tickets.GetByKey(ctx, result.TicketKey)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, ticket.Status)
	require.NotNil(t, ticket.ResolutionType)
	assert.Equal(t, domain.ResolutionTypeAutomatic, *ticket.ResolutionType)
	assert.NotNil(t, ticket.ResolvedAt)
	assert.True(t, ticket.AutoResolvable)
	require.NotNil(t, ticket.ConfidenceScore)
	assert.Equal(t, 0.85, *ticket.ConfidenceScore)

	entries := fixture.audit.forTicket(ticket.ID)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{domain.StageClassification, domain.StageDecision, domain.StageResolution}, stagesOf(entries))
	for _, entry := range entries {
		assert.Equal(t, domain.StageOutcomeSuccess, entry.Status)
		assert.NotEmpty(t, entry.Output)
	}
	require.NotNil(t, entries[0].ConfidenceScore)
	assert.Equal(t, 0.85, *entries[0].ConfidenceScore)

	assert.Equal(t, 1, fixture.kb.usage["kb-password"])
	assert.Equal(t, []events.EventType{
		events.EventTicketCreated,
		events.EventTicketClassified,
		events.EventTicketResolved,
	}, fixture.events.all())
}

func TestRunEscalatesCriticalIssue(t *testing.T) {
	fixture := newWorkflowFixture(&fakeSearcher{match: &domain.KnowledgeMatch{
		EntryID:        "kb-security",
		Category:       "Security Incident",
		Title:          "Suspected malware or phishing",
		Solution:       "Disconnect from the network immediately.",
		AutoResolvable: false,
		Priority:       domain.TicketPriorityCritical,
		RelevanceScore: 0.9,
	}})
	ctx := context.Background()

	result, err := fixture.workflow.Run(ctx, "I clicked a link and now I get ransomware warnings", domain.Submitter{})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusEscalated, result.Status)
	assert.Equal(t, domain.ResolutionTypeEscalated, result.ResolutionType)
	assert.Equal(t, domain.TicketPriorityCritical, result.Priority)
	assert.True(t, result.RequiresHuman)
	assert.Equal(t, "15 minutes", result.EstimatedResolutionTime)

	ticket, err := fixture.tickets.GetByKey(ctx, result.TicketKey)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusEscalated, ticket.Status)
	assert.True(t, ticket.RequiresHuman)
	require.NotNil(t, ticket.AssignedTo)
	assert.Equal(t, pipeline.EscalationQueue, *ticket.AssignedTo)
	assert.NotNil(t, ticket.AssignedAt)

	entries := fixture.audit.forTicket(ticket.ID)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{domain.StageClassification, domain.StageDecision, domain.StageEscalation}, stagesOf(entries))
	assert.Equal(t, "Critical priority issues always require immediate human attention", entries[1].Output["reasoning"])
}

func TestRunEscalatesUnrecognizedIssue(t *testing.T) {
	fixture := newWorkflowFixture(&fakeSearcher{})
	ctx := context.Background()

	result, err := fixture.workflow.Run(ctx, "the coffee machine is making strange noises", domain.Submitter{})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusEscalated, result.Status)
	assert.Equal(t, "Unknown", result.Category)
	assert.Equal(t, domain.TicketPriorityMedium, result.Priority)
	assert.Equal(t, "24 hours", result.EstimatedResolutionTime)

	ticket, err := fixture.tickets.GetByKey(ctx, result.TicketKey)
	require.NoError(t, err)

	entries := fixture.audit.forTicket(ticket.ID)
	require.Len(t, entries, 3)
	assert.Equal(t, domain.StageOutcomeFailed, entries[0].Status)
	require.NotNil(t, entries[0].ErrorMessage)
	assert.Equal(t, "No matching knowledge base entry found", *entries[0].ErrorMessage)
	assert.Contains(t, entries[1].Output["reasoning"], "Low confidence score")
}

func TestRunEscalatesMidConfidenceManualIssue(t *testing.T) {
	fixture := newWorkflowFixture(&fakeSearcher{match: &domain.KnowledgeMatch{
		EntryID:        "kb-access",
		Category:       "Access Request",
		Title:          "Cannot access shared drive",
		Solution:       "Submit an access request.",
		AutoResolvable: false,
		Priority:       domain.TicketPriorityMedium,
		RelevanceScore: 0.55,
	}})

	result, err := fixture.workflow.Run(context.Background(), "I need access to the finance shared drive", domain.Submitter{})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusEscalated, result.Status)
	assert.Equal(t, "24 hours", result.EstimatedResolutionTime)

	ticket, err := fixture.tickets.GetByKey(context.Background(), result.TicketKey)
	require.NoError(t, err)
	entries := fixture.audit.forTicket(ticket.ID)
	require.Len(t, entries, 3)
	assert.Equal(t, "Issue complexity or policy requires human IT staff involvement", entries[1].Output["reasoning"])
}

func TestRunFallsBackToEscalationWhenSolutionMissing(t *testing.T) {
	fixture := newWorkflowFixture(&fakeSearcher{match: &domain.KnowledgeMatch{
		EntryID:        "kb-empty",
		Category:       "Software Installation",
		Title:          "Request to install software",
		AutoResolvable: true,
		Priority:       domain.TicketPriorityLow,
		RelevanceScore: 0.9,
	}})
	ctx := context.Background()

	result, err := fixture.workflow.Run(ctx, "please install the design software on my laptop", domain.Submitter{})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusEscalated, result.Status)
	assert.Equal(t, domain.ResolutionTypeEscalated, result.ResolutionType)
	assert.True(t, result.RequiresHuman)

	ticket, err := fixture.tickets.GetByKey(ctx, result.TicketKey)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusEscalated, ticket.Status)

	entries := fixture.audit.forTicket(ticket.ID)
	require.Len(t, entries, 4)
	assert.Equal(t, []string{
		domain.StageClassification,
		domain.StageDecision,
		domain.StageResolution,
		domain.StageEscalation,
	}, stagesOf(entries))
	assert.Equal(t, domain.StageOutcomeFailed, entries[2].Status)
	require.NotNil(t, entries[2].ErrorMessage)
	assert.Equal(t, "No solution available for this issue type", *entries[2].ErrorMessage)

	assert.Zero(t, fixture.kb.usage["kb-empty"])
}

func TestRunRejectsShortDescription(t *testing.T) {
	fixture := newWorkflowFixture(&fakeSearcher{})

	result, err := fixture.workflow.Run(context.Background(), "   help   ", domain.Submitter{})
	assert.Nil(t, result)
	assertDomainErrorCode(t, err, "VALIDATION_FAILED")

	assert.Zero(t, fixture.tickets.count())
	assert.Empty(t, fixture.events.all())
}

func TestRunConcurrentCreationsGetUniqueKeys(t *testing.T) {
	fixture := newWorkflowFixture(&fakeSearcher{match: &domain.KnowledgeMatch{
		EntryID:        "kb-wifi",
		Category:       "Network Connectivity",
		Title:          "WiFi not working",
		Solution:       "Toggle WiFi off and on.",
		AutoResolvable: true,
		Priority:       domain.TicketPriorityMedium,
		RelevanceScore: 0.8,
	}})

	const runs = 25
	keys := make(chan string, runs)
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := fixture.workflow.Run(context.Background(), "the wifi in the west wing is down", domain.Submitter{})
			if assert.NoError(t, err) {
				keys <- result.TicketKey
			}
		}()
	}
	wg.Wait()
	close(keys)

	seen := make(map[string]struct{}, runs)
	for key := range keys {
		seen[key] = struct{}{}
	}
	assert.Len(t, seen, runs)
	assert.Equal(t, runs, fixture.tickets.count())
}
