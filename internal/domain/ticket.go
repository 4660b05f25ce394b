package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// ValidStatus reports whether s is one of the defined ticket statuses.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusNew, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of the defined priorities.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// SLAHours maps priority to the resolution window granted at creation.
var SLAHours = map[TicketPriority]time.Duration{
	TicketPriorityUrgent: 4 * time.Hour,
	TicketPriorityHigh:   8 * time.Hour,
	TicketPriorityMedium: 24 * time.Hour,
	TicketPriorityLow:    48 * time.Hour,
}

// PriorityRank orders priorities most-urgent first for sorting.
var PriorityRank = map[TicketPriority]int{
	TicketPriorityUrgent: 0,
	TicketPriorityHigh:   1,
	TicketPriorityMedium: 2,
	TicketPriorityLow:    3,
}

// StatusRank orders statuses by lifecycle progression for sorting.
var StatusRank = map[TicketStatus]int{
	TicketStatusNew:        0,
	TicketStatusInProgress: 1,
	TicketStatusResolved:   2,
	TicketStatusClosed:     3,
}

// SystemAuthor is the reserved comment author for engine-generated comments.
const SystemAuthor = "system"

// Comment is an immutable ticket thread entry.
type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    TicketPriority `json:"priority"`
	Category    string         `json:"category,omitempty"`
	Reporter    string         `json:"reporter"`
	AssignedTo  string         `json:"assigned_to,omitempty"`
	Status      TicketStatus   `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	SLADeadline time.Time      `json:"sla_deadline"`
	Comments    []Comment      `json:"comments"`
}

// Clone returns a deep copy so callers can mutate without aliasing the store.
func (t Ticket) Clone() Ticket {
	clone := t
	clone.Comments = make([]Comment, len(t.Comments))
	copy(clone.Comments, t.Comments)
	return clone
}
