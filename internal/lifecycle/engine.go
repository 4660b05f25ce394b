package lifecycle

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ticketops/helpdesk-service/internal/domain"
	"github.com/ticketops/helpdesk-service/internal/events"
	"github.com/ticketops/helpdesk-service/internal/store"
	"github.com/ticketops/helpdesk-service/pkg/apperrors"
)

// Engine applies ticket lifecycle rules over the durable collections. It
// retains no ticket state across calls: every mutation reloads the
// authoritative collection, mutates a copy and writes back under one mutex,
// so at most one write is in flight per process.
type Engine struct {
	mu         sync.Mutex
	tickets    store.TicketStore
	users      store.UserStore
	clock      Clock
	dispatcher events.Dispatcher

	// lastSeq is the high-water mark of issued sequence numbers per year,
	// so ids are never reused after a deletion of the newest ticket.
	lastSeq map[int]int
}

// Dependencies bundles collaborators for the engine.
type Dependencies struct {
	TicketStore store.TicketStore
	UserStore   store.UserStore
	Clock       Clock
	Dispatcher  events.Dispatcher
}

// NewEngine constructs the engine. A nil Clock falls back to the system clock.
func NewEngine(deps Dependencies) *Engine {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock()
	}
	return &Engine{
		tickets:    deps.TicketStore,
		users:      deps.UserStore,
		clock:      clock,
		dispatcher: deps.Dispatcher,
		lastSeq:    make(map[int]int),
	}
}

// CreateTicketInput describes ticket creation payload.
type CreateTicketInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Category    string
}

// CreateTicket validates input, derives the id and SLA deadline, and appends
// the ticket to the store.
func (e *Engine) CreateTicket(ctx context.Context, input CreateTicketInput, reporter string) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description are required", nil)
	}
	if !domain.ValidPriority(input.Priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": input.Priority})
	}
	if strings.TrimSpace(reporter) == "" {
		return nil, apperrors.NewValidationError("reporter is required", nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	tickets, err := e.tickets.LoadTickets(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := e.clock.Now()
	ticket := domain.Ticket{
		ID:          e.nextTicketID(tickets, now),
		Title:       title,
		Description: description,
		Priority:    input.Priority,
		Category:    strings.TrimSpace(input.Category),
		Reporter:    reporter,
		Status:      domain.TicketStatusNew,
		CreatedAt:   now,
		SLADeadline: now.Add(domain.SLAHours[input.Priority]),
		Comments:    []domain.Comment{},
	}

	tickets = append(tickets, ticket)
	if err := e.tickets.SaveTickets(ctx, tickets); err != nil {
		return nil, apperrors.MapError(err)
	}

	e.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    reporter,
		Payload: events.TicketCreatedPayload{
			Title:       ticket.Title,
			Priority:    ticket.Priority,
			Category:    ticket.Category,
			Reporter:    ticket.Reporter,
			SLADeadline: ticket.SLADeadline,
		},
	})
	return &ticket, nil
}

// GetTicket returns the ticket with the given id.
func (e *Engine) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	tickets, err := e.tickets.LoadTickets(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range tickets {
		if tickets[i].ID == ticketID {
			ticket := tickets[i].Clone()
			return &ticket, nil
		}
	}
	return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
}

// ListTickets returns the full collection in append order.
func (e *Engine) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := e.tickets.LoadTickets(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// UpdateStatus sets a new status, recording the change as a system comment.
// Re-setting the current status is accepted as a no-op write.
func (e *Engine) UpdateStatus(ctx context.Context, ticketID string, newStatus domain.TicketStatus, actor domain.User) (*domain.Ticket, error) {
	if !domain.ValidStatus(newStatus) {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": newStatus})
	}

	return e.mutateTicket(ctx, ticketID, func(ticket *domain.Ticket) error {
		oldStatus := ticket.Status
		ticket.Status = newStatus
		e.appendSystemComment(ticket, fmt.Sprintf("Status changed from %s to %s", oldStatus, newStatus))
		e.publish(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			Actor:    actor.Username,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: newStatus,
			},
		})
		return nil
	})
}

// AssignTicket sets the technician responsible for a ticket. Admin only; the
// technician must be a known user. Assignment forces the ticket in progress.
func (e *Engine) AssignTicket(ctx context.Context, ticketID, technician string, actor domain.User) (*domain.Ticket, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("only administrators can assign tickets")
	}

	users, err := e.users.LoadUsers(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	known := false
	for _, user := range users {
		if user.Username == technician {
			known = true
			break
		}
	}
	if !known {
		return nil, apperrors.NewNotFound("user", map[string]any{"username": technician})
	}

	return e.mutateTicket(ctx, ticketID, func(ticket *domain.Ticket) error {
		oldAssignee := ticket.AssignedTo
		previous := oldAssignee
		if previous == "" {
			previous = "unassigned"
		}
		ticket.AssignedTo = technician
		ticket.Status = domain.TicketStatusInProgress
		e.appendSystemComment(ticket, fmt.Sprintf("Assignment changed from %s to %s by %s", previous, technician, actor.Username))
		e.publish(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: ticket.ID,
			Actor:    actor.Username,
			Payload: events.TicketAssignedPayload{
				OldAssignee: oldAssignee,
				NewAssignee: technician,
			},
		})
		return nil
	})
}

// AddComment appends a comment. A comment on a new ticket advances it to
// in_progress.
func (e *Engine) AddComment(ctx context.Context, ticketID, author, message string) (*domain.Ticket, error) {
	return e.mutateTicket(ctx, ticketID, func(ticket *domain.Ticket) error {
		comment := domain.Comment{
			ID:        uuid.NewString(),
			Author:    author,
			Message:   message,
			Timestamp: e.clock.Now(),
		}
		ticket.Comments = append(ticket.Comments, comment)
		if ticket.Status == domain.TicketStatusNew {
			ticket.Status = domain.TicketStatusInProgress
		}
		e.publish(ctx, events.Event{
			Type:     events.EventTicketCommentAdded,
			TicketID: ticket.ID,
			Actor:    author,
			Payload: events.TicketCommentAddedPayload{
				CommentID:      comment.ID,
				Author:         author,
				MessagePreview: messagePreview(message, 120),
			},
		})
		return nil
	})
}

// DeleteTicket removes a ticket. Admins may delete any ticket; other users
// only their own. The confirm flag must be set by the caller boundary.
func (e *Engine) DeleteTicket(ctx context.Context, ticketID string, actor domain.User, confirm bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tickets, err := e.tickets.LoadTickets(ctx)
	if err != nil {
		return apperrors.MapError(err)
	}

	index := -1
	for i := range tickets {
		if tickets[i].ID == ticketID {
			index = i
			break
		}
	}
	if index == -1 {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	if !actor.IsAdmin() && tickets[index].Reporter != actor.Username {
		return apperrors.NewForbidden("you can only delete your own tickets")
	}
	if !confirm {
		return apperrors.NewValidationError("deletion requires confirmation", nil)
	}

	reporter := tickets[index].Reporter
	tickets = append(tickets[:index], tickets[index+1:]...)
	if err := e.tickets.SaveTickets(ctx, tickets); err != nil {
		return apperrors.MapError(err)
	}

	e.publish(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticketID,
		Actor:    actor.Username,
		Payload:  events.TicketDeletedPayload{Reporter: reporter},
	})
	return nil
}

// mutateTicket runs the load-locate-mutate-save cycle for a single ticket
// under the single-writer lock.
func (e *Engine) mutateTicket(ctx context.Context, ticketID string, mutate func(*domain.Ticket) error) (*domain.Ticket, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tickets, err := e.tickets.LoadTickets(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	for i := range tickets {
		if tickets[i].ID != ticketID {
			continue
		}
		if err := mutate(&tickets[i]); err != nil {
			return nil, err
		}
		if err := e.tickets.SaveTickets(ctx, tickets); err != nil {
			return nil, apperrors.MapError(err)
		}
		ticket := tickets[i].Clone()
		return &ticket, nil
	}
	return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
}

func (e *Engine) appendSystemComment(ticket *domain.Ticket, message string) {
	ticket.Comments = append(ticket.Comments, domain.Comment{
		ID:        uuid.NewString(),
		Author:    domain.SystemAuthor,
		Message:   message,
		Timestamp: e.clock.Now(),
	})
}

func (e *Engine) publish(ctx context.Context, event events.Event) {
	if e.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = e.clock.Now()
	}
	_ = e.dispatcher.Publish(ctx, event)
}

// nextTicketID derives the next id for the current year. The stored max
// numeric suffix seeds the sequence across restarts; the in-process
// high-water mark keeps it strictly increasing even when the newest ticket
// was deleted. The sequence restarts at 001 across year boundaries.
// Caller holds e.mu.
func (e *Engine) nextTicketID(tickets []domain.Ticket, now time.Time) string {
	year := now.Year()
	prefix := fmt.Sprintf("TKT-%d-", year)
	max := e.lastSeq[year]
	for _, ticket := range tickets {
		if !strings.HasPrefix(ticket.ID, prefix) {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(ticket.ID, prefix)); err == nil && n > max {
			max = n
		}
	}
	e.lastSeq[year] = max + 1
	return fmt.Sprintf("%s%03d", prefix, max+1)
}

// messagePreview truncates on rune boundaries so multi-byte text never ends
// up split mid-character in event payloads.
func messagePreview(message string, max int) string {
	message = strings.TrimSpace(message)
	if utf8.RuneCountInString(message) <= max {
		return message
	}
	runes := []rune(message)
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
