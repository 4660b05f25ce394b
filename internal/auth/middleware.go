package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ticketops/helpdesk-service/internal/domain"
	"github.com/ticketops/helpdesk-service/pkg/apperrors"
)

const principalKey = "auth_principal"

// UserResolver looks up the acting user by username. It is satisfied by
// *identity.Service; declaring it here avoids an import cycle between the
// auth and identity packages.
type UserResolver interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Middleware validates bearer tokens and resolves the acting user.
type Middleware struct {
	tokens   *TokenManager
	identity UserResolver
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, identityService UserResolver) *Middleware {
	return &Middleware{tokens: tokens, identity: identityService}
}

// Handle enforces authentication for protected routes. The resolved user is
// reloaded from the identity store so role changes and deletions take effect
// before token expiry.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	user, err := m.identity.GetByUsername(c.UserContext(), claims.Username)
	if err != nil {
		return apperrors.NewUnauthorized("unknown user")
	}

	c.Locals(principalKey, *user)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated user.
func PrincipalFromContext(c *fiber.Ctx) (domain.User, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return domain.User{}, false
	}
	user, ok := val.(domain.User)
	return user, ok
}

// RequireAdmin ensures the principal holds the admin role.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !user.IsAdmin() {
			return apperrors.NewForbidden("administrator role required")
		}
		return c.Next()
	}
}
