package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/it-support/internal/domain"
)

type stubSearcher struct {
	match *domain.KnowledgeMatch
	err   error
}

func (s *stubSearcher) BestMatch(_ context.Context, _ string) (*domain.KnowledgeMatch, error) {
	return s.match, s.err
}

func TestClassifySuccess(t *testing.T) {
	searcher := &stubSearcher{match: &domain.KnowledgeMatch{
		EntryID:        "entry-1",
		Category:       "Password Reset",
		Title:          "Forgotten or expired password",
		Description:    "User cannot log in.",
		Solution:       "Use the self-service portal.",
		Keywords:       []string{"password", "reset"},
		AutoResolvable: true,
		Priority:       domain.TicketPriorityLow,
		RelevanceScore: 0.85,
	}}
	classifier := NewClassifier(searcher, 0.6, zap.NewNop())

	classification := classifier.Classify(context.Background(), "I forgot my password and cannot log in")

	require.True(t, classification.Success)
	assert.Equal(t, "Password Reset", classification.Category)
	assert.Equal(t, domain.TicketPriorityLow, classification.Priority)
	assert.Equal(t, 0.85, classification.ConfidenceScore)
	assert.Equal(t, domain.ConfidenceTierHigh, classification.ConfidenceTier)
	assert.True(t, classification.AutoResolvable)
	assert.Equal(t, "entry-1", classification.MatchedEntryID)
	assert.Equal(t, "Use the self-service portal.", classification.Solution)
}

func TestClassifyAutoResolvableGate(t *testing.T) {
	tests := []struct {
		name               string
		score              float64
		matchAutoResolve   bool
		wantAutoResolvable bool
	}{
		{"score above threshold and entry allows it", 0.61, true, true},
		{"score exactly at threshold is not enough", 0.6, true, false},
		{"score below threshold", 0.4, true, false},
		{"entry forbids auto-resolution regardless of score", 0.95, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &stubSearcher{match: &domain.KnowledgeMatch{
				Category:       "Network Connectivity",
				Priority:       domain.TicketPriorityMedium,
				AutoResolvable: tt.matchAutoResolve,
				RelevanceScore: tt.score,
			}}
			classifier := NewClassifier(searcher, 0.6, zap.NewNop())

			classification := classifier.Classify(context.Background(), "wifi is down again")
			assert.Equal(t, tt.wantAutoResolvable, classification.AutoResolvable)
		})
	}
}

func TestClassifyConfidenceTiers(t *testing.T) {
	tests := []struct {
		score float64
		want  domain.ConfidenceTier
	}{
		{0.71, domain.ConfidenceTierHigh},
		{0.7, domain.ConfidenceTierMedium},
		{0.51, domain.ConfidenceTierMedium},
		{0.5, domain.ConfidenceTierLow},
		{0.1, domain.ConfidenceTierLow},
	}

	for _, tt := range tests {
		searcher := &stubSearcher{match: &domain.KnowledgeMatch{
			Category:       "Email Issues",
			Priority:       domain.TicketPriorityMedium,
			RelevanceScore: tt.score,
		}}
		classifier := NewClassifier(searcher, 0.6, zap.NewNop())

		classification := classifier.Classify(context.Background(), "email stuck in outbox")
		assert.Equal(t, tt.want, classification.ConfidenceTier, "score %.2f", tt.score)
	}
}

func TestClassifyNoMatch(t *testing.T) {
	classifier := NewClassifier(&stubSearcher{}, 0.6, zap.NewNop())

	classification := classifier.Classify(context.Background(), "my quantum flux capacitor is leaking")

	assert.False(t, classification.Success)
	assert.Equal(t, "Unknown", classification.Category)
	assert.Equal(t, domain.TicketPriorityMedium, classification.Priority)
	assert.Equal(t, 0.0, classification.ConfidenceScore)
	assert.Equal(t, domain.ConfidenceTierLow, classification.ConfidenceTier)
	assert.False(t, classification.AutoResolvable)
	assert.Equal(t, "No matching knowledge base entry found", classification.Error)
}

func TestClassifySearcherError(t *testing.T) {
	classifier := NewClassifier(&stubSearcher{err: errors.New("index unavailable")}, 0.6, zap.NewNop())

	classification := classifier.Classify(context.Background(), "printer will not print")

	assert.False(t, classification.Success)
	assert.Equal(t, "Unknown", classification.Category)
	assert.Equal(t, "index unavailable", classification.Error)
}
