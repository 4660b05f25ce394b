package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ticketops/helpdesk-service/internal/api/dto"
	"github.com/ticketops/helpdesk-service/internal/auth"
	"github.com/ticketops/helpdesk-service/internal/identity"
	"github.com/ticketops/helpdesk-service/pkg/apperrors"
)

// UsersHandler exposes admin-only user management endpoints.
type UsersHandler struct {
	identity *identity.Service
}

// NewUsersHandler constructs handler.
func NewUsersHandler(identityService *identity.Service) *UsersHandler {
	return &UsersHandler{identity: identityService}
}

// Register POST /users.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.RegisterUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.identity.Register(c.UserContext(), actor, req.Username, req.Password, req.Role)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.UserResponse{Username: user.Username, Role: user.Role},
	})
}

// List GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	users, err := h.identity.List(c.UserContext(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, dto.UserResponse{Username: user.Username, Role: user.Role})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Delete DELETE /users/:username?confirm=true.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	confirm, _ := strconv.ParseBool(c.Query("confirm"))
	if err := h.identity.Delete(c.UserContext(), actor, c.Params("username"), confirm); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
