package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusClassified TicketStatus = "classified"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusEscalated  TicketStatus = "escalated"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// ResolutionType records how a ticket reached its terminal pipeline state.
type ResolutionType string

const (
	ResolutionTypeAutomatic ResolutionType = "automatic"
	ResolutionTypeEscalated ResolutionType = "escalated"
)

// Submitter identifies who raised the issue. Identity is optional; the
// pipeline runs the same way for anonymous requests.
type Submitter struct {
	ID    string
	Name  string
	Email string
}

// Ticket is the persisted aggregate for a support request.
type Ticket struct {
	ID               string
	TicketKey        string
	SubmitterID      *string
	SubmitterName    *string
	SubmitterEmail   *string
	IssueDescription string
	Category         *string
	Priority         *TicketPriority
	Status           TicketStatus
	ResolutionType   *ResolutionType
	Resolution       *string
	ResolutionSteps  *string
	ConfidenceScore  *float64
	AutoResolvable   bool
	RequiresHuman    bool
	AssignedTo       *string
	AssignedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ResolvedAt       *time.Time
	ClosedAt         *time.Time
}
