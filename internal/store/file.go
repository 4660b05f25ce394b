package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ticketops/helpdesk-service/internal/domain"
)

// FileStore persists both collections as JSON documents on disk.
type FileStore struct {
	ticketsPath string
	usersPath   string
	logger      *zap.Logger
}

// NewFileStore builds a store over the given file paths.
func NewFileStore(ticketsPath, usersPath string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{ticketsPath: ticketsPath, usersPath: usersPath, logger: logger}
}

// LoadTickets reads the ticket collection, degrading to empty on absence or corruption.
func (s *FileStore) LoadTickets(_ context.Context) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	s.loadCollection(s.ticketsPath, &tickets)
	return tickets, nil
}

// SaveTickets overwrites the ticket collection.
func (s *FileStore) SaveTickets(_ context.Context, tickets []domain.Ticket) error {
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return s.saveCollection(s.ticketsPath, tickets)
}

// LoadUsers reads the user collection, degrading to empty on absence or corruption.
func (s *FileStore) LoadUsers(_ context.Context) ([]domain.User, error) {
	var users []domain.User
	s.loadCollection(s.usersPath, &users)
	return users, nil
}

// SaveUsers overwrites the user collection.
func (s *FileStore) SaveUsers(_ context.Context, users []domain.User) error {
	if users == nil {
		users = []domain.User{}
	}
	return s.saveCollection(s.usersPath, users)
}

// Ping verifies the target directory is writable.
func (s *FileStore) Ping(_ context.Context) error {
	dir := filepath.Dir(s.ticketsPath)
	if dir == "" {
		dir = "."
	}
	_, err := os.Stat(dir)
	return err
}

// Close is a no-op for file storage.
func (s *FileStore) Close() {}

func (s *FileStore) loadCollection(path string, out any) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("unable to read store file", zap.String("path", path), zap.Error(err))
		}
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn("corrupt store file, treating as empty", zap.String("path", path), zap.Error(err))
		// discard any partially decoded state
		_ = json.Unmarshal([]byte("[]"), out)
	}
}

func (s *FileStore) saveCollection(path string, collection any) error {
	data, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
