package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-board/internal/service"
	apperrors "github.com/spec-kit/issue-board/pkg/util/errorutil"
)

// SelectionHandler exposes the ticket currently open in the detail view.
type SelectionHandler struct {
	tickets   *service.TicketService
	selection *service.Selection
}

// NewSelectionHandler constructs handler.
func NewSelectionHandler(tickets *service.TicketService, selection *service.Selection) *SelectionHandler {
	return &SelectionHandler{tickets: tickets, selection: selection}
}

// Get GET /api/selection.
func (h *SelectionHandler) Get(c *fiber.Ctx) error {
	ticket, ok := h.selection.Current()
	if !ok {
		return apperrors.NewNotFound("selection", nil)
	}
	return c.JSON(fiber.Map{"data": ticketDetail(&ticket)})
}

// Select PUT /api/selection/:id. The id may also be a ticket key.
func (h *SelectionHandler) Select(c *fiber.Ctx) error {
	target, err := h.tickets.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	ticket, err := h.selection.Select(target.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(&ticket)})
}

// Clear DELETE /api/selection.
func (h *SelectionHandler) Clear(c *fiber.Ctx) error {
	h.selection.Clear()
	return c.SendStatus(fiber.StatusNoContent)
}
