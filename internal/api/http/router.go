package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/novel-reader/internal/api/http/handlers"
	"github.com/spec-kit/novel-reader/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Chapters       *handlers.ChaptersHandler
	Stories        *handlers.StoriesHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	Roles          auth.RoleLookup
	// VerboseAdminGate makes the admin gate log every decision at info/warn.
	VerboseAdminGate bool
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api")
	gate := cfg.AuthMiddleware.Handle

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", gate, cfg.Auth.Me)
	authGroup.Post("/refresh", gate, cfg.Auth.Refresh)

	chapters := api.Group("/chapters")
	chapters.Post("/purchase/:chapterId", gate, cfg.Chapters.Purchase)
	chapters.Get("/:id", cfg.AuthMiddleware.Optional(), cfg.Chapters.Get)

	stories := api.Group("/stories")
	stories.Post("/:id/increment-views", cfg.Stories.IncrementViews)
	stories.Post("/:id/chapters/:chapterId/increment-views", cfg.Stories.IncrementChapterViews)

	admin := api.Group("/admin",
		cfg.AuthMiddleware.Gate(auth.GateOptions{Name: "admin", Verbose: cfg.VerboseAdminGate}),
		auth.RequireAdmin(cfg.Roles),
	)
	admin.Get("/users/:id", cfg.Admin.GetUser)
	admin.Get("/stories/:id/views", cfg.Admin.StoryViews)
}
