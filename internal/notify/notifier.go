package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/ticketops/helpdesk-service/internal/events"
)

// Notifier subscribes to domain events and surfaces them in the log. Actual
// delivery channels (mail, webhooks) are out of scope.
type Notifier struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotifier creates the notifier.
func NewNotifier(dispatcher events.Dispatcher, logger *zap.Logger) *Notifier {
	return &Notifier{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to every ticket event, including types added
// later.
func (n *Notifier) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.SubscribeAll(n.handleEvent)
}

func (n *Notifier) handleEvent(_ context.Context, event events.Event) error {
	n.logger.Info("ticket event",
		zap.String("type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.String("actor", event.Actor),
		zap.Any("payload", event.Payload),
	)
	return nil
}
