package events

import (
	"time"

	"github.com/ticketops/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketCommentAdded  EventType = "ticket_comment_added"
	EventTicketDeleted       EventType = "ticket_deleted"
	EventSLABreached         EventType = "sla_breached"
)

// Event represents a domain event emitted by the lifecycle engine.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title       string                `json:"title"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    string                `json:"category,omitempty"`
	Reporter    string                `json:"reporter"`
	SLADeadline time.Time             `json:"sla_deadline"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	OldAssignee string `json:"old_assignee,omitempty"`
	NewAssignee string `json:"new_assignee"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID      string `json:"comment_id"`
	Author         string `json:"author"`
	MessagePreview string `json:"message_preview"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	Reporter string `json:"reporter"`
}

// SLABreachedPayload payload.
type SLABreachedPayload struct {
	Priority     domain.TicketPriority `json:"priority"`
	HoursOverdue float64               `json:"hours_overdue"`
}
