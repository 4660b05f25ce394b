package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketops/helpdesk-service/internal/domain"
	"github.com/ticketops/helpdesk-service/internal/store"
)

func seedSLATickets(t *testing.T, backing *store.MemoryStore, tickets []domain.Ticket) {
	t.Helper()
	require.NoError(t, backing.SaveTickets(context.Background(), tickets))
}

func TestCheckSLAViolationsSeverities(t *testing.T) {
	engine, backing, clock := newTestEngine(t)
	now := clock.now

	seedSLATickets(t, backing, []domain.Ticket{
		{
			ID: "TKT-2024-001", Title: "past deadline", Priority: domain.TicketPriorityUrgent,
			Status: domain.TicketStatusInProgress, SLADeadline: now.Add(-time.Hour),
		},
		{
			ID: "TKT-2024-002", Title: "high, one hour left", Priority: domain.TicketPriorityHigh,
			Status: domain.TicketStatusNew, SLADeadline: now.Add(time.Hour),
		},
		{
			ID: "TKT-2024-003", Title: "medium, three hours left", Priority: domain.TicketPriorityMedium,
			Status: domain.TicketStatusInProgress, SLADeadline: now.Add(3 * time.Hour),
		},
		{
			ID: "TKT-2024-004", Title: "low, plenty of time", Priority: domain.TicketPriorityLow,
			Status: domain.TicketStatusNew, SLADeadline: now.Add(40 * time.Hour),
		},
	})

	violations, err := engine.CheckSLAViolations(context.Background())
	require.NoError(t, err)
	require.Len(t, violations, 3)

	bySeverity := map[string]Violation{}
	for _, v := range violations {
		bySeverity[v.TicketID] = v
	}
	assert.Equal(t, SeverityBreached, bySeverity["TKT-2024-001"].Severity)
	assert.Less(t, bySeverity["TKT-2024-001"].RemainingHours, 0.0)
	assert.Equal(t, SeverityCriticalWarning, bySeverity["TKT-2024-002"].Severity)
	assert.Equal(t, SeverityWarning, bySeverity["TKT-2024-003"].Severity)
}

func TestCheckSLAViolationsSkipsResolvedAndClosed(t *testing.T) {
	engine, backing, clock := newTestEngine(t)
	now := clock.now

	seedSLATickets(t, backing, []domain.Ticket{
		{
			ID: "TKT-2024-001", Title: "resolved long ago", Priority: domain.TicketPriorityUrgent,
			Status: domain.TicketStatusResolved, SLADeadline: now.Add(-48 * time.Hour),
		},
		{
			ID: "TKT-2024-002", Title: "closed long ago", Priority: domain.TicketPriorityHigh,
			Status: domain.TicketStatusClosed, SLADeadline: now.Add(-48 * time.Hour),
		},
	})

	violations, err := engine.CheckSLAViolations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestCheckSLAViolationsWarningBandsArePriorityBound(t *testing.T) {
	engine, backing, clock := newTestEngine(t)
	now := clock.now

	// a low-priority ticket one hour out is a warning, never critical; a
	// high-priority ticket three hours out is not yet inside its band
	seedSLATickets(t, backing, []domain.Ticket{
		{
			ID: "TKT-2024-001", Title: "low, one hour left", Priority: domain.TicketPriorityLow,
			Status: domain.TicketStatusNew, SLADeadline: now.Add(time.Hour),
		},
		{
			ID: "TKT-2024-002", Title: "high, three hours left", Priority: domain.TicketPriorityHigh,
			Status: domain.TicketStatusNew, SLADeadline: now.Add(3 * time.Hour),
		},
	})

	violations, err := engine.CheckSLAViolations(context.Background())
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "TKT-2024-001", violations[0].TicketID)
	assert.Equal(t, SeverityWarning, violations[0].Severity)
}
