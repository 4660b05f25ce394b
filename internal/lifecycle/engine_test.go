package lifecycle

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketops/helpdesk-service/internal/domain"
	"github.com/ticketops/helpdesk-service/internal/store"
	"github.com/ticketops/helpdesk-service/pkg/apperrors"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

var (
	admin = domain.User{Username: "admin", Role: domain.RoleAdmin}
	user1 = domain.User{Username: "user1", Role: domain.RoleUser}
	user2 = domain.User{Username: "user2", Role: domain.RoleUser}
)

func newTestEngine(t *testing.T) (*Engine, *store.MemoryStore, *fixedClock) {
	t.Helper()
	backing := store.NewMemoryStore()
	clock := &fixedClock{now: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)}
	err := backing.SaveUsers(context.Background(), []domain.User{
		{Username: "admin", Role: domain.RoleAdmin},
		{Username: "tech", Role: domain.RoleAdmin},
		{Username: "user1", Role: domain.RoleUser},
		{Username: "user2", Role: domain.RoleUser},
	})
	require.NoError(t, err)
	engine := NewEngine(Dependencies{
		TicketStore: backing,
		UserStore:   backing,
		Clock:       clock,
	})
	return engine, backing, clock
}

func mustCreate(t *testing.T, engine *Engine, title string, priority domain.TicketPriority, reporter string) *domain.Ticket {
	t.Helper()
	ticket, err := engine.CreateTicket(context.Background(), CreateTicketInput{
		Title:       title,
		Description: "description of " + title,
		Priority:    priority,
	}, reporter)
	require.NoError(t, err)
	return ticket
}

func TestCreateTicketAssignsSequentialIDs(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	first := mustCreate(t, engine, "Printer down", domain.TicketPriorityHigh, "user1")
	second := mustCreate(t, engine, "Monitor flicker", domain.TicketPriorityLow, "user2")

	assert.Equal(t, "TKT-2024-001", first.ID)
	assert.Equal(t, "TKT-2024-002", second.ID)
	assert.Equal(t, domain.TicketStatusNew, first.Status)
}

func TestCreateTicketIDsNotReusedAfterDeletion(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	mustCreate(t, engine, "one", domain.TicketPriorityLow, "user1")
	second := mustCreate(t, engine, "two", domain.TicketPriorityLow, "user1")

	require.NoError(t, engine.DeleteTicket(ctx, second.ID, admin, true))

	third := mustCreate(t, engine, "three", domain.TicketPriorityLow, "user1")
	assert.Equal(t, "TKT-2024-003", third.ID)
}

func TestCreateTicketSequenceRestartsAcrossYears(t *testing.T) {
	engine, _, clock := newTestEngine(t)

	mustCreate(t, engine, "late december", domain.TicketPriorityMedium, "user1")
	clock.now = time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	newYear := mustCreate(t, engine, "early january", domain.TicketPriorityMedium, "user1")

	assert.Equal(t, "TKT-2025-001", newYear.ID)
}

func TestCreateTicketComputesSLADeadlineFromPriority(t *testing.T) {
	engine, _, clock := newTestEngine(t)

	cases := map[domain.TicketPriority]time.Duration{
		domain.TicketPriorityUrgent: 4 * time.Hour,
		domain.TicketPriorityHigh:   8 * time.Hour,
		domain.TicketPriorityMedium: 24 * time.Hour,
		domain.TicketPriorityLow:    48 * time.Hour,
	}
	for priority, window := range cases {
		ticket := mustCreate(t, engine, "sla "+string(priority), priority, "user1")
		assert.Equal(t, clock.now.Add(window), ticket.SLADeadline, "priority %s", priority)
	}
}

func TestCreateTicketInvalidPriorityDoesNotMutateStore(t *testing.T) {
	engine, backing, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.CreateTicket(ctx, CreateTicketInput{
		Title:       "bad",
		Description: "bad",
		Priority:    "catastrophic",
	}, "user1")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	tickets, err := backing.LoadTickets(ctx)
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestCreateTicketRequiresTitleAndDescription(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.CreateTicket(context.Background(), CreateTicketInput{
		Title:       "  ",
		Description: "something broke",
		Priority:    domain.TicketPriorityLow,
	}, "user1")
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestAddCommentAdvancesNewToInProgress(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	ticket := mustCreate(t, engine, "Printer down", domain.TicketPriorityHigh, "user1")
	updated, err := engine.AddComment(ctx, ticket.ID, "user1", "it is the big printer")
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	require.Len(t, updated.Comments, 1)
	assert.Equal(t, "user1", updated.Comments[0].Author)
	assert.Equal(t, "it is the big printer", updated.Comments[0].Message)
}

func TestAddCommentLeavesNonNewStatusUnchanged(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	ticket := mustCreate(t, engine, "Printer down", domain.TicketPriorityHigh, "user1")
	_, err := engine.UpdateStatus(ctx, ticket.ID, domain.TicketStatusResolved, admin)
	require.NoError(t, err)

	updated, err := engine.AddComment(ctx, ticket.ID, "admin", "double checked")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, updated.Status)
}

func TestAddCommentUnknownTicket(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.AddComment(context.Background(), "TKT-2024-999", "user1", "hello?")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestUpdateStatusRecordsSystemComment(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	ticket := mustCreate(t, engine, "Printer down", domain.TicketPriorityHigh, "user1")
	updated, err := engine.UpdateStatus(ctx, ticket.ID, domain.TicketStatusResolved, admin)
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusResolved, updated.Status)
	require.Len(t, updated.Comments, 1)
	assert.Equal(t, domain.SystemAuthor, updated.Comments[0].Author)
	assert.Equal(t, "Status changed from new to resolved", updated.Comments[0].Message)
}

func TestUpdateStatusSameStatusAccepted(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	ticket := mustCreate(t, engine, "Printer down", domain.TicketPriorityHigh, "user1")
	updated, err := engine.UpdateStatus(ctx, ticket.ID, domain.TicketStatusNew, admin)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusNew, updated.Status)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	ticket := mustCreate(t, engine, "Printer down", domain.TicketPriorityHigh, "user1")
	_, err := engine.UpdateStatus(context.Background(), ticket.ID, "on_fire", admin)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestAssignTicketForbiddenForNonAdmin(t *testing.T) {
	engine, backing, _ := newTestEngine(t)
	ctx := context.Background()

	ticket := mustCreate(t, engine, "Printer down", domain.TicketPriorityHigh, "user1")
	_, err := engine.AssignTicket(ctx, ticket.ID, "tech", user1)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	tickets, err := backing.LoadTickets(ctx)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Empty(t, tickets[0].AssignedTo)
	assert.Equal(t, domain.TicketStatusNew, tickets[0].Status)
}

func TestAssignTicketUnknownTechnician(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	ticket := mustCreate(t, engine, "Printer down", domain.TicketPriorityHigh, "user1")
	_, err := engine.AssignTicket(context.Background(), ticket.ID, "ghost", admin)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestAssignTicketForcesInProgress(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	ticket := mustCreate(t, engine, "Printer down", domain.TicketPriorityHigh, "user1")
	updated, err := engine.AssignTicket(ctx, ticket.ID, "tech", admin)
	require.NoError(t, err)

	assert.Equal(t, "tech", updated.AssignedTo)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	require.Len(t, updated.Comments, 1)
	assert.Equal(t, domain.SystemAuthor, updated.Comments[0].Author)
	assert.Equal(t, "Assignment changed from unassigned to tech by admin", updated.Comments[0].Message)
}

func TestDeleteTicketRequiresConfirmation(t *testing.T) {
	engine, backing, _ := newTestEngine(t)
	ctx := context.Background()

	ticket := mustCreate(t, engine, "Printer down", domain.TicketPriorityHigh, "user1")
	err := engine.DeleteTicket(ctx, ticket.ID, user1, false)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	tickets, err := backing.LoadTickets(ctx)
	require.NoError(t, err)
	assert.Len(t, tickets, 1)
}

func TestDeleteTicketForbiddenForNonOwner(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	ticket := mustCreate(t, engine, "Printer down", domain.TicketPriorityHigh, "user1")
	err := engine.DeleteTicket(context.Background(), ticket.ID, user2, true)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestDeleteTicketOwnerAndAdmin(t *testing.T) {
	engine, backing, _ := newTestEngine(t)
	ctx := context.Background()

	mine := mustCreate(t, engine, "mine", domain.TicketPriorityLow, "user1")
	other := mustCreate(t, engine, "someone else's", domain.TicketPriorityLow, "user2")

	require.NoError(t, engine.DeleteTicket(ctx, mine.ID, user1, true))
	require.NoError(t, engine.DeleteTicket(ctx, other.ID, admin, true))

	tickets, err := backing.LoadTickets(ctx)
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestMessagePreviewTruncatesOnRuneBoundaries(t *testing.T) {
	long := strings.Repeat("ü", 80)
	preview := messagePreview(long, 10)

	assert.True(t, utf8.ValidString(preview))
	assert.Equal(t, strings.Repeat("ü", 7)+"...", preview)

	assert.Equal(t, "short", messagePreview("  short  ", 10))
	assert.Equal(t, "äb", messagePreview("äbc", 2))
}

func TestEndToEndLifecycle(t *testing.T) {
	engine, _, clock := newTestEngine(t)
	ctx := context.Background()

	ticket := mustCreate(t, engine, "Printer down", domain.TicketPriorityHigh, "user1")
	assert.Equal(t, "TKT-2024-001", ticket.ID)
	assert.Equal(t, domain.TicketStatusNew, ticket.Status)

	commented, err := engine.AddComment(ctx, ticket.ID, "user1", "paper jam in tray 2")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, commented.Status)

	_, err = engine.UpdateStatus(ctx, ticket.ID, domain.TicketStatusResolved, admin)
	require.NoError(t, err)

	// past the deadline, but resolved tickets are never reported
	clock.now = clock.now.Add(72 * time.Hour)
	violations, err := engine.CheckSLAViolations(ctx)
	require.NoError(t, err)
	assert.Empty(t, violations)
}
