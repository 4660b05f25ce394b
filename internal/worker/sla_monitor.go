package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ticketops/helpdesk-service/internal/events"
	"github.com/ticketops/helpdesk-service/internal/lifecycle"
)

// SLAMonitor periodically scans open tickets against their SLA deadlines,
// logging every violation and publishing an event for each breach.
type SLAMonitor struct {
	engine     *lifecycle.Engine
	dispatcher events.Dispatcher
	logger     *zap.Logger
	schedule   string
	cron       *cron.Cron
}

// NewSLAMonitor constructs the monitor with a cron schedule spec such as
// "@every 5m".
func NewSLAMonitor(engine *lifecycle.Engine, dispatcher events.Dispatcher, logger *zap.Logger, schedule string) *SLAMonitor {
	return &SLAMonitor{
		engine:     engine,
		dispatcher: dispatcher,
		logger:     logger,
		schedule:   schedule,
		cron:       cron.New(),
	}
}

// Start registers the scan job and begins the scheduler.
func (m *SLAMonitor) Start(ctx context.Context) error {
	if _, err := m.cron.AddFunc(m.schedule, func() {
		if _, err := m.RunOnce(ctx); err != nil {
			m.logger.Error("sla scan failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}
	m.cron.Start()
	m.logger.Info("sla monitor started", zap.String("schedule", m.schedule))
	return nil
}

// Stop halts the scheduler and waits for a running scan to finish.
func (m *SLAMonitor) Stop() {
	<-m.cron.Stop().Done()
}

// RunOnce performs a single scan and returns the violations found.
func (m *SLAMonitor) RunOnce(ctx context.Context) ([]lifecycle.Violation, error) {
	violations, err := m.engine.CheckSLAViolations(ctx)
	if err != nil {
		return nil, err
	}

	for _, violation := range violations {
		m.logger.Warn("sla violation",
			zap.String("ticket_id", violation.TicketID),
			zap.String("severity", string(violation.Severity)),
			zap.String("priority", string(violation.Priority)),
			zap.Float64("remaining_hours", violation.RemainingHours),
		)
		if violation.Severity == lifecycle.SeverityBreached && m.dispatcher != nil {
			_ = m.dispatcher.Publish(ctx, events.Event{
				ID:        uuid.NewString(),
				Type:      events.EventSLABreached,
				TicketID:  violation.TicketID,
				Actor:     "sla-monitor",
				Timestamp: time.Now(),
				Payload: events.SLABreachedPayload{
					Priority:     violation.Priority,
					HoursOverdue: -violation.RemainingHours,
				},
			})
		}
	}
	return violations, nil
}
