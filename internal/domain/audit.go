package domain

import "time"

// StageOutcome captures how a pipeline stage finished.
type StageOutcome string

const (
	StageOutcomeSuccess StageOutcome = "success"
	StageOutcomeFailed  StageOutcome = "failed"
	StageOutcomeWarning StageOutcome = "warning"
)

// Pipeline stage names as recorded in the audit trail.
const (
	StageClassification = "Classification Agent"
	StageDecision       = "Decision Agent"
	StageResolution     = "Resolution Agent"
	StageEscalation     = "Escalation Agent"
)

// AuditLogEntry is one immutable record of a pipeline stage execution.
// Input and Output hold the stage's value objects and are persisted as
// structured JSON, never opaque text.
type AuditLogEntry struct {
	ID              string
	TicketID        string
	Stage           string
	Action          string
	Input           map[string]any
	Output          map[string]any
	Status          StageOutcome
	Duration        time.Duration
	ConfidenceScore *float64
	ErrorMessage    *string
	CreatedAt       time.Time
}
