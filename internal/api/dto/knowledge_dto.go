package dto

import (
	"time"

	"github.com/spec-kit/it-support/internal/domain"
)

// CreateKnowledgeEntryRequest payload.
type CreateKnowledgeEntryRequest struct {
	Category       string                `json:"category"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Solution       string                `json:"solution"`
	Keywords       []string              `json:"keywords"`
	AutoResolvable bool                  `json:"auto_resolvable"`
	PriorityLevel  domain.TicketPriority `json:"priority_level"`
}

// KnowledgeEntryResponse represents one knowledge-base article.
type KnowledgeEntryResponse struct {
	ID             string                `json:"id"`
	Category       string                `json:"category"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Solution       string                `json:"solution"`
	Keywords       []string              `json:"keywords"`
	AutoResolvable bool                  `json:"auto_resolvable"`
	PriorityLevel  domain.TicketPriority `json:"priority_level"`
	SuccessRate    float64               `json:"success_rate"`
	UsageCount     int                   `json:"usage_count"`
	CreatedAt      time.Time             `json:"created_at"`
}
