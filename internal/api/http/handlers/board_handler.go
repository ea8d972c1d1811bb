package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-board/internal/api/dto"
	"github.com/spec-kit/issue-board/internal/domain"
	"github.com/spec-kit/issue-board/internal/observability"
	"github.com/spec-kit/issue-board/internal/service"
)

// BoardHandler serves the reference data the forms are built from.
type BoardHandler struct {
	tickets *service.TicketService
	metrics *observability.Metrics
}

// NewBoardHandler constructs handler.
func NewBoardHandler(tickets *service.TicketService, metrics *observability.Metrics) *BoardHandler {
	return &BoardHandler{tickets: tickets, metrics: metrics}
}

// Meta GET /api/meta.
func (h *BoardHandler) Meta(c *fiber.Ctx) error {
	meta := dto.MetaResponse{
		Projects:       h.tickets.Projects(),
		DefaultProject: h.tickets.DefaultProject(),
		CurrentUser:    userResponse(h.tickets.CurrentUser()),
	}
	for _, status := range domain.TicketStatuses {
		meta.Statuses = append(meta.Statuses, string(status))
	}
	for _, priority := range domain.TicketPriorities {
		meta.Priorities = append(meta.Priorities, string(priority))
	}
	for _, issueType := range domain.IssueTypes {
		meta.IssueTypes = append(meta.IssueTypes, string(issueType))
	}
	return c.JSON(fiber.Map{"data": meta})
}

// Users GET /api/users.
func (h *BoardHandler) Users(c *fiber.Ctx) error {
	users := h.tickets.Users()
	items := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, userResponse(user))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Metrics GET /debug/metrics.
func (h *BoardHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}
