package accesscontrol

import (
	"context"

	"github.com/ticketops/helpdesk-service/internal/domain"
	"github.com/ticketops/helpdesk-service/internal/lifecycle"
	"github.com/ticketops/helpdesk-service/pkg/apperrors"
)

// Controller wraps every lifecycle operation with a role/ownership pre-check.
// The acting identity is an explicit parameter on each call; there is no
// ambient session state.
//
//	operation        admin        regular user
//	create ticket    allowed      allowed (reporter forced to self)
//	view all         allowed      own tickets only
//	update status    any ticket   own ticket only
//	assign ticket    allowed      denied
//	add comment      any ticket   own ticket only
//	delete ticket    any ticket   own ticket only
//	reports / SLA    allowed      denied
type Controller struct {
	engine *lifecycle.Engine
}

// NewController wraps the lifecycle engine.
func NewController(engine *lifecycle.Engine) *Controller {
	return &Controller{engine: engine}
}

// CreateTicket creates a ticket reported by the acting user. The reporter is
// always the actor, regardless of role.
func (c *Controller) CreateTicket(ctx context.Context, actor domain.User, input lifecycle.CreateTicketInput) (*domain.Ticket, error) {
	return c.engine.CreateTicket(ctx, input, actor.Username)
}

// ListTickets returns all tickets for admins and only the actor's own
// tickets otherwise.
func (c *Controller) ListTickets(ctx context.Context, actor domain.User) ([]domain.Ticket, error) {
	tickets, err := c.engine.ListTickets(ctx)
	if err != nil {
		return nil, err
	}
	return c.visibleTo(actor, tickets), nil
}

// GetTicket fetches one ticket, enforcing ownership for regular users.
func (c *Controller) GetTicket(ctx context.Context, actor domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := c.engine.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && ticket.Reporter != actor.Username {
		return nil, apperrors.NewForbidden("you can only view your own tickets")
	}
	return ticket, nil
}

// UpdateStatus changes a ticket's status. Regular users may only touch their
// own tickets.
func (c *Controller) UpdateStatus(ctx context.Context, actor domain.User, ticketID string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if err := c.requireOwnershipUnlessAdmin(ctx, actor, ticketID, "you can only update your own tickets"); err != nil {
		return nil, err
	}
	return c.engine.UpdateStatus(ctx, ticketID, newStatus, actor)
}

// AssignTicket is admin only; the engine re-checks the role.
func (c *Controller) AssignTicket(ctx context.Context, actor domain.User, ticketID, technician string) (*domain.Ticket, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("only administrators can assign tickets")
	}
	return c.engine.AssignTicket(ctx, ticketID, technician, actor)
}

// AddComment appends a comment authored by the actor. Regular users may only
// comment on their own tickets.
func (c *Controller) AddComment(ctx context.Context, actor domain.User, ticketID, message string) (*domain.Ticket, error) {
	if err := c.requireOwnershipUnlessAdmin(ctx, actor, ticketID, "you can only comment on your own tickets"); err != nil {
		return nil, err
	}
	return c.engine.AddComment(ctx, ticketID, actor.Username, message)
}

// DeleteTicket removes a ticket after confirmation; the engine enforces
// admin-any / owner-own.
func (c *Controller) DeleteTicket(ctx context.Context, actor domain.User, ticketID string, confirm bool) error {
	return c.engine.DeleteTicket(ctx, ticketID, actor, confirm)
}

// SearchTickets filters by keyword; regular users search only their own
// tickets.
func (c *Controller) SearchTickets(ctx context.Context, actor domain.User, keyword string) ([]domain.Ticket, error) {
	tickets, err := c.engine.SearchTickets(ctx, keyword)
	if err != nil {
		return nil, err
	}
	return c.visibleTo(actor, tickets), nil
}

// CheckSLAViolations is admin only.
func (c *Controller) CheckSLAViolations(ctx context.Context, actor domain.User) ([]lifecycle.Violation, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("only administrators can view SLA violations")
	}
	return c.engine.CheckSLAViolations(ctx)
}

// GenerateReport is admin only.
func (c *Controller) GenerateReport(ctx context.Context, actor domain.User) (*lifecycle.Report, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("only administrators can view reports")
	}
	return c.engine.GenerateReport(ctx)
}

func (c *Controller) visibleTo(actor domain.User, tickets []domain.Ticket) []domain.Ticket {
	if actor.IsAdmin() {
		return tickets
	}
	own := make([]domain.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		if ticket.Reporter == actor.Username {
			own = append(own, ticket)
		}
	}
	return own
}

func (c *Controller) requireOwnershipUnlessAdmin(ctx context.Context, actor domain.User, ticketID, denial string) error {
	if actor.IsAdmin() {
		return nil
	}
	ticket, err := c.engine.GetTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket.Reporter != actor.Username {
		return apperrors.NewForbidden(denial)
	}
	return nil
}
