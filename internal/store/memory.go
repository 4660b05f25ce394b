package store

import (
	"context"
	"sync"

	"github.com/ticketops/helpdesk-service/internal/domain"
)

// MemoryStore keeps both collections in process memory. Used by tests and
// for ephemeral runs.
type MemoryStore struct {
	mu      sync.RWMutex
	tickets []domain.Ticket
	users   []domain.User
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// LoadTickets returns a copy of the ticket collection.
func (s *MemoryStore) LoadTickets(_ context.Context) ([]domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		out = append(out, t.Clone())
	}
	return out, nil
}

// SaveTickets replaces the ticket collection.
func (s *MemoryStore) SaveTickets(_ context.Context, tickets []domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets = make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		s.tickets = append(s.tickets, t.Clone())
	}
	return nil
}

// LoadUsers returns a copy of the user collection.
func (s *MemoryStore) LoadUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

// SaveUsers replaces the user collection.
func (s *MemoryStore) SaveUsers(_ context.Context, users []domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make([]domain.User, len(users))
	copy(s.users, users)
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(_ context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close() {}
