package lifecycle

import (
	"context"
	"sort"
	"strings"

	"github.com/ticketops/helpdesk-service/internal/domain"
	"github.com/ticketops/helpdesk-service/pkg/apperrors"
)

// SortField names a sortable ticket attribute.
type SortField string

const (
	SortByDate     SortField = "date"
	SortByPriority SortField = "priority"
	SortByStatus   SortField = "status"
	SortByTitle    SortField = "title"
)

// SearchTickets returns tickets whose title, description, reporter or id
// contains the keyword, case-insensitive. A blank keyword returns the whole
// collection. Order is preserved.
func (e *Engine) SearchTickets(ctx context.Context, keyword string) ([]domain.Ticket, error) {
	tickets, err := e.tickets.LoadTickets(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return tickets, nil
	}

	results := make([]domain.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		if strings.Contains(strings.ToLower(ticket.Title), keyword) ||
			strings.Contains(strings.ToLower(ticket.Description), keyword) ||
			strings.Contains(strings.ToLower(ticket.Reporter), keyword) ||
			strings.Contains(strings.ToLower(ticket.ID), keyword) {
			results = append(results, ticket)
		}
	}
	return results, nil
}

// SortTickets orders tickets by the given field. The sort is stable, so equal
// keys keep their relative input order. An unknown field returns the input
// unchanged.
//
// Priority and status sort by rank: urgent < high < medium < low, and
// new < in_progress < resolved < closed. ascending=true puts the lowest rank
// (most urgent, earliest lifecycle stage) first.
func SortTickets(tickets []domain.Ticket, field SortField, ascending bool) []domain.Ticket {
	var less func(a, b domain.Ticket) bool
	switch field {
	case SortByDate:
		less = func(a, b domain.Ticket) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortByPriority:
		less = func(a, b domain.Ticket) bool { return domain.PriorityRank[a.Priority] < domain.PriorityRank[b.Priority] }
	case SortByStatus:
		less = func(a, b domain.Ticket) bool { return domain.StatusRank[a.Status] < domain.StatusRank[b.Status] }
	case SortByTitle:
		less = func(a, b domain.Ticket) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	default:
		return tickets
	}

	sorted := make([]domain.Ticket, len(tickets))
	copy(sorted, tickets)
	sort.SliceStable(sorted, func(i, j int) bool {
		if ascending {
			return less(sorted[i], sorted[j])
		}
		return less(sorted[j], sorted[i])
	})
	return sorted
}
