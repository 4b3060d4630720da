package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/it-support/internal/domain"
)

func TestResolveWithSolution(t *testing.T) {
	resolver := NewResolver(zap.NewNop())
	fixed := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	resolver.now = func() time.Time { return fixed }

	resolution := resolver.Resolve(domain.Classification{
		Success:         true,
		Category:        "Password Reset",
		Title:           "Forgotten or expired password",
		Solution:        "Use the self-service portal to reset it.",
		ConfidenceScore: 0.85,
	})

	require.True(t, resolution.Success)
	assert.Equal(t, domain.ResolutionStatusResolved, resolution.Status)
	assert.Equal(t, "Use the self-service portal to reset it.", resolution.Solution)
	assert.Equal(t, fixed, resolution.ResolvedAt)
	assert.Contains(t, resolution.Instructions, "Automatic Resolution - Forgotten or expired password")
	assert.Contains(t, resolution.Instructions, "Use the self-service portal to reset it.")
	assert.Contains(t, resolution.Instructions, "Category: Password Reset")
	assert.Contains(t, resolution.Instructions, "Confidence: 85.0%")
}

func TestResolveFallsBackToCategoryTitle(t *testing.T) {
	resolver := NewResolver(zap.NewNop())

	resolution := resolver.Resolve(domain.Classification{
		Success:         true,
		Category:        "VPN Access",
		Solution:        "Update the VPN client.",
		ConfidenceScore: 0.7,
	})

	require.True(t, resolution.Success)
	assert.Equal(t, "VPN Access", resolution.Title)
	assert.Contains(t, resolution.Instructions, "Automatic Resolution - VPN Access")
}

func TestResolveMissingSolution(t *testing.T) {
	resolver := NewResolver(zap.NewNop())

	resolution := resolver.Resolve(domain.Classification{
		Success:         true,
		Category:        "Access Request",
		Title:           "Cannot access shared drive",
		ConfidenceScore: 0.8,
	})

	assert.False(t, resolution.Success)
	assert.Equal(t, domain.ResolutionStatusFailed, resolution.Status)
	assert.Equal(t, "No solution available for this issue type", resolution.Error)
	assert.Empty(t, resolution.Instructions)
	assert.True(t, resolution.ResolvedAt.IsZero())
}
