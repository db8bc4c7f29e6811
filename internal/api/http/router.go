package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/customer-data-service/internal/api/http/handlers"
	"github.com/spec-kit/customer-data-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Tools    *handlers.ToolsHandler
	Metrics  http.Handler
	CallAuth *auth.CallAuth
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	app.Get("/tools", cfg.Tools.ListTools)
	if cfg.CallAuth != nil {
		app.Post("/call", cfg.CallAuth.Handle, cfg.Tools.Call)
	} else {
		app.Post("/call", cfg.Tools.Call)
	}
}
