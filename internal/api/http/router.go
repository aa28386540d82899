package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/auditkit/revision-service/internal/api/http/handlers"
	"github.com/auditkit/revision-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Entities       *handlers.EntitiesHandler
	Audit          *handlers.AuditHandler
	Plugins        *handlers.PluginsHandler
	AuthMiddleware *auth.AuthMiddleware
	// EnterpriseEnabled exposes the admin audit tables.
	EnterpriseEnabled bool
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)

	api.Post("/collections", cfg.Entities.CreateCollection)

	admin := api.Group("/admin", auth.RequireAdmin())
	admin.Get("/plugins/cache-ttl", cfg.Plugins.Fields)
	admin.Put("/plugins/cache-ttl", cfg.Plugins.InstallCacheTTL)
	admin.Delete("/plugins/cache-ttl", cfg.Plugins.Clear)

	if cfg.EnterpriseEnabled {
		audit := admin.Group("/audit")
		audit.Get("/subscriptions", cfg.Audit.Subscriptions)
		audit.Delete("/subscriptions/:id", cfg.Audit.DeleteSubscription)
		audit.Get("/alerts", cfg.Audit.Alerts)
		audit.Get("/alerts/:id", cfg.Audit.Alert)
		audit.Put("/alerts/:id/channels", cfg.Audit.SetAlertChannels)
		audit.Delete("/alerts/:id", cfg.Audit.DeleteAlert)
	}

	api.Post("/:entity", cfg.Entities.Save)
	api.Get("/:entity/:id", cfg.Entities.Get)
	api.Post("/:entity/:id/move", cfg.Entities.Move)
	api.Get("/:entity/:id/revisions", cfg.Entities.Timeline)
	api.Get("/:entity/:id/revisions/:revisionID/diff", cfg.Entities.Diff)
	api.Post("/:entity/:id/revert", cfg.Entities.Revert)
}
