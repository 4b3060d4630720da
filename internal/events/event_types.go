package events

import (
	"time"

	"github.com/spec-kit/it-support/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated    EventType = "ticket_created"
	EventTicketClassified EventType = "ticket_classified"
	EventTicketResolved   EventType = "ticket_resolved"
	EventTicketEscalated  EventType = "ticket_escalated"
)

// Event represents a domain event emitted by the pipeline.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketKey string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	SubmitterID  *string `json:"submitter_id,omitempty"`
	IssuePreview string  `json:"issue_preview"`
}

// TicketClassifiedPayload payload.
type TicketClassifiedPayload struct {
	Category        string                `json:"category"`
	Priority        domain.TicketPriority `json:"priority"`
	ConfidenceScore float64               `json:"confidence_score"`
	AutoResolvable  bool                  `json:"auto_resolvable"`
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	Category string `json:"category"`
	Title    string `json:"title"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	AssignedTo        string                `json:"assigned_to"`
	Priority          domain.TicketPriority `json:"priority"`
	EstimatedResponse string                `json:"estimated_response_time"`
}
