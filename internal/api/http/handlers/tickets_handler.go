package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ticketops/helpdesk-service/internal/accesscontrol"
	"github.com/ticketops/helpdesk-service/internal/api/dto"
	"github.com/ticketops/helpdesk-service/internal/auth"
	"github.com/ticketops/helpdesk-service/internal/domain"
	"github.com/ticketops/helpdesk-service/internal/lifecycle"
	"github.com/ticketops/helpdesk-service/pkg/apperrors"
)

// TicketsHandler manages ticket endpoints for both roles; the access
// controller decides what each caller may touch.
type TicketsHandler struct {
	controller *accesscontrol.Controller
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(controller *accesscontrol.Controller) *TicketsHandler {
	return &TicketsHandler{controller: controller}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.controller.CreateTicket(c.UserContext(), actor, lifecycle.CreateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListTickets GET /tickets. Supports ?q= keyword search and ?sort=&order=.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var tickets []domain.Ticket
	var err error
	if keyword := c.Query("q"); strings.TrimSpace(keyword) != "" {
		tickets, err = h.controller.SearchTickets(c.UserContext(), actor, keyword)
	} else {
		tickets, err = h.controller.ListTickets(c.UserContext(), actor)
	}
	if err != nil {
		return err
	}

	if field := c.Query("sort"); field != "" {
		ascending := !strings.EqualFold(c.Query("order"), "desc")
		tickets = lifecycle.SortTickets(tickets, lifecycle.SortField(field), ascending)
	}

	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.controller.GetTicket(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.controller.UpdateStatus(c.UserContext(), actor, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// AssignTicket POST /tickets/:id/assign.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Technician) == "" {
		return apperrors.NewValidationError("technician required", nil)
	}
	ticket, err := h.controller.AssignTicket(c.UserContext(), actor, c.Params("id"), req.Technician)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AddCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Message) == "" {
		return apperrors.NewValidationError("message required", nil)
	}
	ticket, err := h.controller.AddComment(c.UserContext(), actor, c.Params("id"), req.Message)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// DeleteTicket DELETE /tickets/:id?confirm=true.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	confirm, _ := strconv.ParseBool(c.Query("confirm"))
	if err := h.controller.DeleteTicket(c.UserContext(), actor, c.Params("id"), confirm); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	comments := make([]dto.CommentResponse, 0, len(ticket.Comments))
	for _, comment := range ticket.Comments {
		comments = append(comments, dto.CommentResponse{
			ID:        comment.ID,
			Author:    comment.Author,
			Message:   comment.Message,
			Timestamp: comment.Timestamp,
		})
	}
	return dto.TicketResponse{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Priority:    ticket.Priority,
		Category:    ticket.Category,
		Reporter:    ticket.Reporter,
		AssignedTo:  ticket.AssignedTo,
		Status:      ticket.Status,
		CreatedAt:   ticket.CreatedAt,
		SLADeadline: ticket.SLADeadline,
		Comments:    comments,
	}
}
