package dto

import (
	"time"

	"github.com/spec-kit/it-support/internal/domain"
)

// TicketResponse provides full ticket info.
type TicketResponse struct {
	ID               string                 `json:"id"`
	TicketID         string                 `json:"ticket_id"`
	SubmitterID      *string                `json:"submitter_id,omitempty"`
	SubmitterName    *string                `json:"submitter_name,omitempty"`
	SubmitterEmail   *string                `json:"submitter_email,omitempty"`
	IssueDescription string                 `json:"issue_description"`
	Category         *string                `json:"category"`
	Priority         *domain.TicketPriority `json:"priority"`
	Status           domain.TicketStatus    `json:"status"`
	ResolutionType   *domain.ResolutionType `json:"resolution_type"`
	Resolution       *string                `json:"resolution"`
	ResolutionSteps  *string                `json:"resolution_instructions"`
	ConfidenceScore  *float64               `json:"confidence_score"`
	AutoResolvable   bool                   `json:"auto_resolvable"`
	RequiresHuman    bool                   `json:"requires_human"`
	AssignedTo       *string                `json:"assigned_to"`
	AssignedAt       *time.Time             `json:"assigned_at"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
	ResolvedAt       *time.Time             `json:"resolved_at"`
	ClosedAt         *time.Time             `json:"closed_at"`
}

// UpdateTicketRequest payload for manual ticket updates.
type UpdateTicketRequest struct {
	Status     *domain.TicketStatus `json:"status"`
	Resolution *string              `json:"resolution"`
	AssignedTo *string              `json:"assigned_to"`
}

// AuditLogResponse is one audit trail entry.
type AuditLogResponse struct {
	ID               string              `json:"id"`
	Stage            string              `json:"agent_name"`
	Action           string              `json:"action"`
	Input            map[string]any      `json:"input"`
	Output           map[string]any      `json:"output"`
	Status           domain.StageOutcome `json:"status"`
	ProcessingTimeMs float64             `json:"processing_time_ms"`
	ConfidenceScore  *float64            `json:"confidence_score,omitempty"`
	ErrorMessage     *string             `json:"error_message,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
}
