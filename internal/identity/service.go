package identity

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ticketops/helpdesk-service/internal/auth"
	"github.com/ticketops/helpdesk-service/internal/domain"
	"github.com/ticketops/helpdesk-service/internal/store"
	"github.com/ticketops/helpdesk-service/pkg/apperrors"
)

// defaultUsers are seeded once when the user collection is empty. Passwords
// are hashed on seeding; the plaintext values here exist only for first-run
// bootstrap of a fresh install.
var defaultUsers = []struct {
	Username string
	Password string
	Role     domain.Role
}{
	{"admin", "admin123", domain.RoleAdmin},
	{"tech", "tech123", domain.RoleAdmin},
	{"user1", "user123", domain.RoleUser},
	{"user2", "user123", domain.RoleUser},
}

// Service owns the user collection: credential checks, registration and
// removal. Writes go through one mutex, same single-writer discipline as the
// ticket engine.
type Service struct {
	mu         sync.Mutex
	users      store.UserStore
	bcryptCost int
	logger     *zap.Logger
}

// NewService constructs the identity service.
func NewService(users store.UserStore, bcryptCost int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{users: users, bcryptCost: bcryptCost, logger: logger}
}

// EnsureDefaults seeds the default accounts when no users exist yet.
func (s *Service) EnsureDefaults(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.users.LoadUsers(ctx)
	if err != nil {
		return apperrors.MapError(err)
	}
	if len(existing) > 0 {
		return nil
	}

	seeded := make([]domain.User, 0, len(defaultUsers))
	for _, def := range defaultUsers {
		hash, err := auth.HashPassword(def.Password, s.bcryptCost)
		if err != nil {
			return apperrors.MapError(err)
		}
		seeded = append(seeded, domain.User{
			Username:     def.Username,
			PasswordHash: hash,
			Role:         def.Role,
		})
	}
	if err := s.users.SaveUsers(ctx, seeded); err != nil {
		return apperrors.MapError(err)
	}
	s.logger.Info("seeded default users", zap.Int("count", len(seeded)))
	return nil
}

// Authenticate verifies credentials and returns the matching user.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	users, err := s.users.LoadUsers(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range users {
		if users[i].Username != username {
			continue
		}
		if err := auth.ComparePassword(users[i].PasswordHash, password); err != nil {
			break
		}
		user := users[i]
		return &user, nil
	}
	return nil, apperrors.NewUnauthorized("invalid username or password")
}

// GetByUsername returns the user record for a username.
func (s *Service) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	users, err := s.users.LoadUsers(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range users {
		if users[i].Username == username {
			user := users[i]
			return &user, nil
		}
	}
	return nil, apperrors.NewNotFound("user", map[string]any{"username": username})
}

// List returns all users. Admin only.
func (s *Service) List(ctx context.Context, actor domain.User) ([]domain.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("only administrators can list users")
	}
	users, err := s.users.LoadUsers(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// Register creates a new account. Admin only; usernames are unique.
func (s *Service) Register(ctx context.Context, actor domain.User, username, password string, role domain.Role) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("only administrators can register users")
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password are required", nil)
	}
	if !domain.ValidRole(role) {
		return nil, apperrors.NewValidationError("role must be admin or user", map[string]any{"role": role})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users.LoadUsers(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for _, existing := range users {
		if existing.Username == username {
			return nil, apperrors.NewConflict("username already exists", map[string]any{"username": username})
		}
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	user := domain.User{Username: username, PasswordHash: hash, Role: role}
	users = append(users, user)
	if err := s.users.SaveUsers(ctx, users); err != nil {
		return nil, apperrors.MapError(err)
	}
	return &user, nil
}

// Delete removes an account. Admin only; self-deletion is refused and the
// caller boundary must confirm.
func (s *Service) Delete(ctx context.Context, actor domain.User, username string, confirm bool) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbidden("only administrators can delete users")
	}
	if username == actor.Username {
		return apperrors.NewForbidden("you cannot delete your own account")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users.LoadUsers(ctx)
	if err != nil {
		return apperrors.MapError(err)
	}
	index := -1
	for i := range users {
		if users[i].Username == username {
			index = i
			break
		}
	}
	if index == -1 {
		return apperrors.NewNotFound("user", map[string]any{"username": username})
	}
	if !confirm {
		return apperrors.NewValidationError("deletion requires confirmation", nil)
	}

	users = append(users[:index], users[index+1:]...)
	if err := s.users.SaveUsers(ctx, users); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}
