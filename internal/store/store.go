package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ticketops/helpdesk-service/internal/config"
	"github.com/ticketops/helpdesk-service/internal/domain"
)

// TicketStore is the durable ticket collection. Load returns the full
// collection in append order; Save atomically replaces it. Absent or corrupt
// data degrades to an empty collection, never an error.
type TicketStore interface {
	LoadTickets(ctx context.Context) ([]domain.Ticket, error)
	SaveTickets(ctx context.Context, tickets []domain.Ticket) error
}

// UserStore mirrors the same full-collection contract for user records.
type UserStore interface {
	LoadUsers(ctx context.Context) ([]domain.User, error)
	SaveUsers(ctx context.Context, users []domain.User) error
}

// Store combines both collections behind one backend.
type Store interface {
	TicketStore
	UserStore
	Ping(ctx context.Context) error
	Close()
}

// Open selects a backend by driver name.
func Open(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case "file":
		return NewFileStore(cfg.TicketsFile, cfg.UsersFile, logger), nil
	case "postgres":
		return NewPostgresStore(ctx, cfg, logger)
	case "redis":
		return NewRedisStore(cfg, logger), nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
