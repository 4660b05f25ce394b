package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticketops/helpdesk-service/internal/api/http/handlers"
	"github.com/ticketops/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Users          *handlers.UsersHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	tickets := protected.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Post("/:id/assign", auth.RequireAdmin(), cfg.Tickets.AssignTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)

	admin := protected.Group("", auth.RequireAdmin())
	admin.Get("/reports", cfg.Reports.Report)
	admin.Get("/sla/violations", cfg.Reports.SLAViolations)
	admin.Post("/users", cfg.Users.Register)
	admin.Get("/users", cfg.Users.List)
	admin.Delete("/users/:username", cfg.Users.Delete)
}
