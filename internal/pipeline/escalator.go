package pipeline

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/it-support/internal/domain"
)

// EscalationQueue is the single handling queue all escalations are assigned
// to; there is no load-based routing here.
const EscalationQueue = "IT Support Team"

const defaultResponseTime = "24 hours"

// responseTimes maps priority to the SLA response estimate quoted to the
// submitter.
var responseTimes = map[domain.TicketPriority]string{
	domain.TicketPriorityCritical: "15 minutes",
	domain.TicketPriorityHigh:     "2-4 hours",
	domain.TicketPriorityMedium:   "24 hours",
	domain.TicketPriorityLow:      "48 hours",
}

// Escalator renders the human-handoff payload for tickets the pipeline will
// not resolve automatically.
type Escalator struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewEscalator constructs an escalator.
func NewEscalator(logger *zap.Logger) *Escalator {
	return &Escalator{logger: logger, now: time.Now}
}

// EstimatedResponseTime returns the SLA estimate for a priority; unrecognized
// priorities fall back to the medium estimate.
func EstimatedResponseTime(priority domain.TicketPriority) string {
	if estimate, ok := responseTimes[priority]; ok {
		return estimate
	}
	return defaultResponseTime
}

// Escalate packages the ticket for the handling queue, including the context
// bundle the receiving staff member needs.
func (e *Escalator) Escalate(issueText string, classification domain.Classification, ticketKey string) domain.Escalation {
	priority := classification.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	category := classification.Category
	if category == "" {
		category = "Unknown"
	}
	estimate := EstimatedResponseTime(priority)

	message := fmt.Sprintf(`Your request has been escalated to our IT support team.

Ticket ID: %s
Category: %s
Priority: %s

Your request requires attention from our IT specialists. A team member will contact you soon.

Expected Response Time: %s

What happens next:
1. An IT support specialist will review your request
2. You'll receive an email when someone is assigned
3. The specialist may contact you for additional information
4. You'll be notified when the issue is resolved

You can check your ticket status anytime using Ticket ID: %s

If this is urgent, please call IT Support at ext. 2222`,
		ticketKey, category, strings.ToUpper(string(priority)), estimate, ticketKey)

	e.logger.Info("ticket escalated",
		zap.String("ticket_key", ticketKey),
		zap.String("priority", string(priority)))

	return domain.Escalation{
		TicketKey:         ticketKey,
		AssignedTo:        EscalationQueue,
		Priority:          priority,
		Category:          category,
		EstimatedResponse: estimate,
		Message:           message,
		RequiresHuman:     true,
		Context: domain.EscalationContext{
			OriginalIssue:  issueText,
			Classification: category,
			Confidence:     classification.ConfidenceScore,
			Notes:          classification.Description,
		},
		EscalatedAt: e.now().UTC(),
	}
}
