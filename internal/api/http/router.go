package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-board/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Board     *handlers.BoardHandler
	Tickets   *handlers.TicketsHandler
	Selection *handlers.SelectionHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/debug/metrics", cfg.Board.Metrics)

	api := app.Group("/api")
	api.Get("/meta", cfg.Board.Meta)
	api.Get("/users", cfg.Board.Users)

	tickets := api.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Get("/:id/history", cfg.Tickets.TicketHistory)

	api.Get("/selection", cfg.Selection.Get)
	api.Put("/selection/:id", cfg.Selection.Select)
	api.Delete("/selection", cfg.Selection.Clear)
}
