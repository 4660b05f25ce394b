package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ticketops/helpdesk-service/internal/domain"
	"github.com/ticketops/helpdesk-service/internal/store"
	"github.com/ticketops/helpdesk-service/pkg/apperrors"
)

var (
	adminActor = domain.User{Username: "admin", Role: domain.RoleAdmin}
	userActor  = domain.User{Username: "user1", Role: domain.RoleUser}
)

func newTestService(t *testing.T) (*Service, *store.MemoryStore) {
	t.Helper()
	backing := store.NewMemoryStore()
	service := NewService(backing, bcrypt.MinCost, nil)
	require.NoError(t, service.EnsureDefaults(context.Background()))
	return service, backing
}

func TestEnsureDefaultsSeedsOnce(t *testing.T) {
	service, backing := newTestService(t)
	ctx := context.Background()

	users, err := backing.LoadUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 4)

	byName := map[string]domain.User{}
	for _, user := range users {
		byName[user.Username] = user
		assert.NotEmpty(t, user.PasswordHash)
		assert.NotEqual(t, "admin123", user.PasswordHash)
	}
	assert.Equal(t, domain.RoleAdmin, byName["admin"].Role)
	assert.Equal(t, domain.RoleAdmin, byName["tech"].Role)
	assert.Equal(t, domain.RoleUser, byName["user1"].Role)
	assert.Equal(t, domain.RoleUser, byName["user2"].Role)

	// a second run against a populated collection is a no-op
	require.NoError(t, service.EnsureDefaults(ctx))
	users, err = backing.LoadUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 4)
}

func TestEnsureDefaultsSkippedWhenUsersExist(t *testing.T) {
	backing := store.NewMemoryStore()
	require.NoError(t, backing.SaveUsers(context.Background(), []domain.User{
		{Username: "solo", Role: domain.RoleAdmin},
	}))

	service := NewService(backing, bcrypt.MinCost, nil)
	require.NoError(t, service.EnsureDefaults(context.Background()))

	users, err := backing.LoadUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "solo", users[0].Username)
}

func TestAuthenticate(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	user, err := service.Authenticate(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)

	_, err = service.Authenticate(ctx, "admin", "wrong")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	_, err = service.Authenticate(ctx, "nobody", "admin123")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
}

func TestRegisterAdminOnly(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Register(context.Background(), userActor, "newbie", "secret", domain.RoleUser)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Register(context.Background(), adminActor, "user1", "secret", domain.RoleUser)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestRegisterAndAuthenticateNewUser(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	created, err := service.Register(ctx, adminActor, "newbie", "secret", domain.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "newbie", created.Username)
	assert.NotEqual(t, "secret", created.PasswordHash)

	user, err := service.Authenticate(ctx, "newbie", "secret")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
}

func TestRegisterRejectsInvalidRole(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Register(context.Background(), adminActor, "newbie", "secret", domain.Role("superuser"))
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestDeleteAdminOnly(t *testing.T) {
	service, _ := newTestService(t)

	err := service.Delete(context.Background(), userActor, "user2", true)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestDeleteSelfRefused(t *testing.T) {
	service, _ := newTestService(t)

	err := service.Delete(context.Background(), adminActor, "admin", true)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	service, backing := newTestService(t)
	ctx := context.Background()

	err := service.Delete(ctx, adminActor, "user2", false)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	users, err := backing.LoadUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 4)
}

func TestDeleteRemovesUser(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, service.Delete(ctx, adminActor, "user2", true))

	_, err := service.GetByUsername(ctx, "user2")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	err = service.Delete(ctx, adminActor, "user2", true)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestListAdminOnly(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.List(ctx, userActor)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	users, err := service.List(ctx, adminActor)
	require.NoError(t, err)
	assert.Len(t, users, 4)
}
