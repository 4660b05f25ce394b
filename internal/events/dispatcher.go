package events

import (
	"context"
	"sync"
)

// EventHandler consumes one published ticket event.
type EventHandler func(context.Context, Event) error

// Dispatcher fans ticket lifecycle events out to in-process subscribers.
// Delivery is synchronous and best-effort: a failing handler never blocks
// the remaining ones, and the engine treats publication as fire-and-forget.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
	SubscribeAll(handler EventHandler)
}

type busDispatcher struct {
	mu       sync.RWMutex
	byType   map[EventType][]EventHandler
	catchAll []EventHandler
}

// NewDispatcher returns an empty in-process dispatcher.
func NewDispatcher() Dispatcher {
	return &busDispatcher{byType: make(map[EventType][]EventHandler)}
}

// Publish delivers the event to every catch-all handler and every handler
// registered for its type. Handler errors are swallowed.
func (d *busDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := make([]EventHandler, 0, len(d.catchAll)+len(d.byType[event.Type]))
	handlers = append(handlers, d.catchAll...)
	handlers = append(handlers, d.byType[event.Type]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		_ = handler(ctx, event)
	}
	return nil
}

// Subscribe registers a handler for one event type.
func (d *busDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byType[eventType] = append(d.byType[eventType], handler)
}

// SubscribeAll registers a handler for every event type, current and future.
func (d *busDispatcher) SubscribeAll(handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.catchAll = append(d.catchAll, handler)
}
