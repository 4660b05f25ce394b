package dto

import (
	"time"

	"github.com/ticketops/helpdesk-service/internal/domain"
	"github.com/ticketops/helpdesk-service/internal/lifecycle"
)

// CreateTicketRequest payload for new tickets.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    string                `json:"category"`
}

// UpdateStatusRequest payload for status transitions.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// AssignTicketRequest payload for assignment.
type AssignTicketRequest struct {
	Technician string `json:"technician"`
}

// AddCommentRequest payload for comments.
type AddCommentRequest struct {
	Message string `json:"message"`
}

// CommentResponse is one thread entry.
type CommentResponse struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// TicketResponse is the full ticket representation.
type TicketResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    string                `json:"category,omitempty"`
	Reporter    string                `json:"reporter"`
	AssignedTo  string                `json:"assigned_to,omitempty"`
	Status      domain.TicketStatus   `json:"status"`
	CreatedAt   time.Time             `json:"created_at"`
	SLADeadline time.Time             `json:"sla_deadline"`
	Comments    []CommentResponse     `json:"comments"`
}

// ViolationResponse is one SLA violation entry.
type ViolationResponse struct {
	TicketID       string                `json:"ticket_id"`
	Title          string                `json:"title"`
	Priority       domain.TicketPriority `json:"priority"`
	Status         domain.TicketStatus   `json:"status"`
	Severity       lifecycle.Severity    `json:"severity"`
	RemainingHours float64               `json:"remaining_hours"`
}

// ReportResponse is the aggregate system report.
type ReportResponse struct {
	TotalTickets      int                           `json:"total_tickets"`
	OpenTickets       int                           `json:"open_tickets"`
	ClosedTickets     int                           `json:"closed_tickets"`
	ByStatus          map[domain.TicketStatus]int   `json:"by_status"`
	ByPriority        map[domain.TicketPriority]int `json:"by_priority"`
	SLAViolationCount int                           `json:"sla_violation_count"`
	SLAViolations     []ViolationResponse           `json:"sla_violations"`
}
