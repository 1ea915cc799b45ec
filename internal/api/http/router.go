package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/azlan18/iDEA/internal/api/http/handlers"
	"github.com/azlan18/iDEA/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Priority       *handlers.PriorityHandler
	Tickets        *handlers.TicketsHandler
	Agents         *handlers.AgentsHandler
	AuthMiddleware *auth.AuthMiddleware
	IngressKey     string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	app.Post("/auth/agents/login", cfg.Auth.Login)
	app.Post("/priority/score", cfg.Priority.Score)

	app.Post("/tickets", auth.RequireIngressKey(cfg.IngressKey), cfg.Tickets.SubmitTicket)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/complete", cfg.Tickets.CompleteTicket)
	tickets.Post("/:id/hold", cfg.Tickets.HoldTicket)
	tickets.Post("/:id/resume", cfg.Tickets.ResumeTicket)
	tickets.Post("/:id/work-updates", cfg.Tickets.AddWorkUpdate)

	agents := app.Group("/agents", cfg.AuthMiddleware.Handle)
	agents.Get("/", cfg.Agents.ListAgents)
	agents.Get("/:id", cfg.Agents.GetAgent)
	agents.Get("/:id/statistics", auth.RequireSelfOrSupervisor("id"), cfg.Agents.Statistics)
}
