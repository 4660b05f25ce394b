package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ticketops/helpdesk-service/internal/api/dto"
	"github.com/ticketops/helpdesk-service/internal/store"
)

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	store       store.Store
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, backing store.Store) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, store: backing}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking the store backend.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: dto.ErrorBody{
			Code:    "DEPENDENCY_UNAVAILABLE",
			Message: "store unavailable",
			Details: map[string]any{"store": err.Error()},
		}})
	}
	return c.JSON(fiber.Map{
		"status":       "ready",
		"dependencies": fiber.Map{"store": "ok"},
	})
}
