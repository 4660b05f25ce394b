package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticketops/helpdesk-service/internal/api/dto"
	"github.com/ticketops/helpdesk-service/internal/auth"
	"github.com/ticketops/helpdesk-service/internal/identity"
	"github.com/ticketops/helpdesk-service/pkg/apperrors"
)

// AuthHandler exchanges credentials for session tokens.
type AuthHandler struct {
	identity *identity.Service
	tokens   *auth.TokenManager
}

// NewAuthHandler constructs handler.
func NewAuthHandler(identityService *identity.Service, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{identity: identityService, tokens: tokens}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	user, err := h.identity.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	token, expiresAt, err := h.tokens.GenerateToken(*user)
	if err != nil {
		return apperrors.MapError(err)
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.UserResponse{Username: user.Username, Role: user.Role},
			"auth": dto.AuthResponse{Token: token, ExpiresAt: expiresAt},
		},
	})
}
