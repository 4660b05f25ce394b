package lifecycle

import (
	"context"
	"errors"

	"github.com/ticketops/helpdesk-service/internal/domain"
	"github.com/ticketops/helpdesk-service/pkg/apperrors"
)

// ErrNoTickets is the sentinel returned by GenerateReport when the store is
// empty, so callers can distinguish "no data" from an all-zero report.
var ErrNoTickets = errors.New("no ticket data available")

// Report aggregates ticket counts and SLA state.
type Report struct {
	TotalTickets      int                           `json:"total_tickets"`
	OpenTickets       int                           `json:"open_tickets"`
	ClosedTickets     int                           `json:"closed_tickets"`
	ByStatus          map[domain.TicketStatus]int   `json:"by_status"`
	ByPriority        map[domain.TicketPriority]int `json:"by_priority"`
	SLAViolationCount int                           `json:"sla_violation_count"`
	SLAViolations     []Violation                   `json:"sla_violations"`
}

// GenerateReport computes the aggregate report, delegating SLA detail to
// CheckSLAViolations. Returns ErrNoTickets when no tickets exist.
func (e *Engine) GenerateReport(ctx context.Context) (*Report, error) {
	tickets, err := e.tickets.LoadTickets(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(tickets) == 0 {
		return nil, ErrNoTickets
	}

	report := &Report{
		TotalTickets: len(tickets),
		ByStatus:     make(map[domain.TicketStatus]int),
		ByPriority:   make(map[domain.TicketPriority]int),
	}
	for _, ticket := range tickets {
		report.ByStatus[ticket.Status]++
		report.ByPriority[ticket.Priority]++
		if ticket.Status == domain.TicketStatusClosed {
			report.ClosedTickets++
		} else {
			report.OpenTickets++
		}
	}

	violations, err := e.CheckSLAViolations(ctx)
	if err != nil {
		return nil, err
	}
	report.SLAViolations = violations
	report.SLAViolationCount = len(violations)
	return report, nil
}
