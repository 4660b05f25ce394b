package dto

import (
	"time"

	"github.com/ticketops/helpdesk-service/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RegisterUserRequest payload for admin user registration.
type RegisterUserRequest struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// UserResponse is the public user representation.
type UserResponse struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}
