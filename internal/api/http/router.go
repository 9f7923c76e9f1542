package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/servicedesk/internal/api/http/handlers"
	"github.com/spec-kit/servicedesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	ServiceTickets *handlers.ServiceTicketsHandler
	WorkEntries    *handlers.WorkEntriesHandler
	Reference      *handlers.ReferenceHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        http.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	app.Post("/auth/login", cfg.Auth.Login)

	api := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	api.Post("/auth/password/change", cfg.Auth.ChangePassword)

	tickets := api.Group("/service-tickets")
	tickets.Get("", cfg.ServiceTickets.List)
	tickets.Post("", cfg.ServiceTickets.Create)
	tickets.Get("/:id", cfg.ServiceTickets.Get)
	tickets.Patch("/:id", cfg.ServiceTickets.Update)
	tickets.Delete("/:id", cfg.ServiceTickets.Delete)
	tickets.Get("/:id/machines", cfg.ServiceTickets.Machines)
	tickets.Get("/:id/work-entries", cfg.ServiceTickets.WorkEntries)
	tickets.Post("/:id/work-entries", cfg.ServiceTickets.AddWorkEntry)
	tickets.Get("/:id/audit", cfg.ServiceTickets.Audit)

	work := api.Group("/work-entries")
	work.Get("", cfg.WorkEntries.List)
	work.Get("/:id", cfg.WorkEntries.Get)
	work.Patch("/:id", cfg.WorkEntries.Update)
	work.Delete("/:id", cfg.WorkEntries.Delete)

	api.Get("/statuses", cfg.Reference.ListStatuses)
	api.Post("/statuses", auth.RequireAdmin(), cfg.Reference.CreateStatus)
	api.Get("/priorities", cfg.Reference.ListPriorities)
	api.Post("/priorities", auth.RequireAdmin(), cfg.Reference.CreatePriority)
	api.Get("/machines", cfg.Reference.ListMachines)
	api.Get("/machines/:id", cfg.Reference.GetMachine)
	api.Post("/machines", cfg.Reference.CreateMachine)
	api.Get("/products/:reference/stock", cfg.Reference.Stock)
}
