package dto

import "github.com/spec-kit/it-support/internal/domain"

// ProcessWorkflowRequest payload.
type ProcessWorkflowRequest struct {
	IssueDescription string  `json:"issue_description"`
	SubmitterID      *string `json:"submitter_id"`
	SubmitterName    *string `json:"submitter_name"`
	SubmitterEmail   *string `json:"submitter_email"`
}

// WorkflowResponse is the single entry point's result.
type WorkflowResponse struct {
	TicketID                string                `json:"ticket_id"`
	Status                  domain.TicketStatus   `json:"status"`
	Category                string                `json:"category"`
	Priority                domain.TicketPriority `json:"priority"`
	ResolutionType          domain.ResolutionType `json:"resolution_type"`
	Message                 string                `json:"message"`
	ResolutionInstructions  *string               `json:"resolution_instructions,omitempty"`
	RequiresHuman           bool                  `json:"requires_human"`
	EstimatedResolutionTime string                `json:"estimated_resolution_time,omitempty"`
}
