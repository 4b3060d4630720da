package domain

import "time"

// ConfidenceTier buckets a relevance score for display.
type ConfidenceTier string

const (
	ConfidenceTierHigh   ConfidenceTier = "high"
	ConfidenceTierMedium ConfidenceTier = "medium"
	ConfidenceTierLow    ConfidenceTier = "low"
)

// Classification is the structured outcome of matching an issue description
// against the knowledge base. When no usable match exists Success is false,
// Category is "Unknown" and ConfidenceScore is zero; the pipeline still
// continues with this degraded value.
type Classification struct {
	Success         bool           `json:"success"`
	Category        string         `json:"category"`
	Title           string         `json:"title"`
	Priority        TicketPriority `json:"priority"`
	ConfidenceScore float64        `json:"confidence_score"`
	ConfidenceTier  ConfidenceTier `json:"confidence_level"`
	AutoResolvable  bool           `json:"auto_resolvable"`
	KeywordsMatched []string       `json:"keywords_matched"`
	Solution        string         `json:"solution,omitempty"`
	Description     string         `json:"description,omitempty"`
	MatchedEntryID  string         `json:"matched_entry_id,omitempty"`
	Error           string         `json:"error,omitempty"`
}

// DecisionAction is the verdict of the decision engine.
type DecisionAction string

const (
	ActionAutoResolve DecisionAction = "auto_resolve"
	ActionEscalate    DecisionAction = "escalate"
)

// Decision is a pure function of a Classification: the chosen action plus
// the reasoning for it.
type Decision struct {
	Action        DecisionAction `json:"action"`
	Reasoning     string         `json:"reasoning"`
	Confidence    float64        `json:"confidence"`
	RequiresHuman bool           `json:"requires_human"`
}

// ResolutionStatus reports whether an automatic resolution succeeded.
type ResolutionStatus string

const (
	ResolutionStatusResolved ResolutionStatus = "resolved"
	ResolutionStatusFailed   ResolutionStatus = "failed"
)

// Resolution is the payload produced for an auto-resolved ticket.
type Resolution struct {
	Success      bool             `json:"success"`
	Status       ResolutionStatus `json:"status"`
	Solution     string           `json:"solution,omitempty"`
	Instructions string           `json:"instructions,omitempty"`
	Category     string           `json:"category"`
	Title        string           `json:"title"`
	ResolvedAt   time.Time        `json:"resolved_at"`
	Error        string           `json:"error,omitempty"`
}

// EscalationContext bundles what the receiving queue needs to pick up the
// ticket without re-running the pipeline.
type EscalationContext struct {
	OriginalIssue  string  `json:"original_issue"`
	Classification string  `json:"classification"`
	Confidence     float64 `json:"confidence"`
	Notes          string  `json:"notes,omitempty"`
}

// Escalation is the payload produced for a ticket handed to human staff.
type Escalation struct {
	TicketKey         string            `json:"ticket_id"`
	AssignedTo        string            `json:"assigned_to"`
	Priority          TicketPriority    `json:"priority"`
	Category          string            `json:"category"`
	EstimatedResponse string            `json:"estimated_response_time"`
	Message           string            `json:"message"`
	RequiresHuman     bool              `json:"requires_human"`
	Context           EscalationContext `json:"context"`
	EscalatedAt       time.Time         `json:"escalated_at"`
}
