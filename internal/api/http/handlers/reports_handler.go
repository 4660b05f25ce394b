package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ticketops/helpdesk-service/internal/accesscontrol"
	"github.com/ticketops/helpdesk-service/internal/api/dto"
	"github.com/ticketops/helpdesk-service/internal/auth"
	"github.com/ticketops/helpdesk-service/internal/lifecycle"
	"github.com/ticketops/helpdesk-service/pkg/apperrors"
)

// ReportsHandler exposes aggregate reporting and the SLA violation listing.
type ReportsHandler struct {
	controller *accesscontrol.Controller
}

// NewReportsHandler constructs handler.
func NewReportsHandler(controller *accesscontrol.Controller) *ReportsHandler {
	return &ReportsHandler{controller: controller}
}

// Report GET /reports.
func (h *ReportsHandler) Report(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	report, err := h.controller.GenerateReport(c.UserContext(), actor)
	if err != nil {
		if errors.Is(err, lifecycle.ErrNoTickets) {
			return c.JSON(fiber.Map{"data": nil, "message": "no ticket data available"})
		}
		return err
	}
	return c.JSON(fiber.Map{"data": reportResponse(report)})
}

// SLAViolations GET /sla/violations.
func (h *ReportsHandler) SLAViolations(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	violations, err := h.controller.CheckSLAViolations(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": violationResponses(violations)})
}

func reportResponse(report *lifecycle.Report) dto.ReportResponse {
	return dto.ReportResponse{
		TotalTickets:      report.TotalTickets,
		OpenTickets:       report.OpenTickets,
		ClosedTickets:     report.ClosedTickets,
		ByStatus:          report.ByStatus,
		ByPriority:        report.ByPriority,
		SLAViolationCount: report.SLAViolationCount,
		SLAViolations:     violationResponses(report.SLAViolations),
	}
}

func violationResponses(violations []lifecycle.Violation) []dto.ViolationResponse {
	items := make([]dto.ViolationResponse, 0, len(violations))
	for _, violation := range violations {
		items = append(items, dto.ViolationResponse{
			TicketID:       violation.TicketID,
			Title:          violation.Title,
			Priority:       violation.Priority,
			Status:         violation.Status,
			Severity:       violation.Severity,
			RemainingHours: violation.RemainingHours,
		})
	}
	return items
}
