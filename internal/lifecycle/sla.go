package lifecycle

import (
	"context"

	"github.com/ticketops/helpdesk-service/internal/domain"
	"github.com/ticketops/helpdesk-service/pkg/apperrors"
)

// Severity classifies how close a ticket is to missing its SLA deadline.
type Severity string

const (
	SeverityBreached        Severity = "breached"
	SeverityCriticalWarning Severity = "critical_warning"
	SeverityWarning         Severity = "warning"
)

// Violation reports one ticket at or past its SLA threshold. RemainingHours
// is negative once the deadline has passed.
type Violation struct {
	TicketID       string                `json:"ticket_id"`
	Title          string                `json:"title"`
	Priority       domain.TicketPriority `json:"priority"`
	Status         domain.TicketStatus   `json:"status"`
	Severity       Severity              `json:"severity"`
	RemainingHours float64               `json:"remaining_hours"`
}

// CheckSLAViolations scans the open tickets against their deadlines.
// Resolved and closed tickets are skipped. A past deadline is a breach;
// otherwise urgent/high tickets within 2 hours of the deadline are critical
// warnings and medium/low tickets within 4 hours are warnings.
func (e *Engine) CheckSLAViolations(ctx context.Context) ([]Violation, error) {
	tickets, err := e.tickets.LoadTickets(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := e.clock.Now()
	var violations []Violation
	for _, ticket := range tickets {
		if ticket.Status == domain.TicketStatusResolved || ticket.Status == domain.TicketStatusClosed {
			continue
		}
		remaining := ticket.SLADeadline.Sub(now).Hours()

		var severity Severity
		switch {
		case remaining < 0:
			severity = SeverityBreached
		case remaining < 2 && (ticket.Priority == domain.TicketPriorityUrgent || ticket.Priority == domain.TicketPriorityHigh):
			severity = SeverityCriticalWarning
		case remaining < 4 && (ticket.Priority == domain.TicketPriorityMedium || ticket.Priority == domain.TicketPriorityLow):
			severity = SeverityWarning
		default:
			continue
		}

		violations = append(violations, Violation{
			TicketID:       ticket.ID,
			Title:          ticket.Title,
			Priority:       ticket.Priority,
			Status:         ticket.Status,
			Severity:       severity,
			RemainingHours: remaining,
		})
	}
	return violations, nil
}
