package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/davisgreg1/valet-time-keeping/internal/api/http/handlers"
	"github.com/davisgreg1/valet-time-keeping/internal/authz"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Valets         *handlers.ValetsHandler
	ClockIns       *handlers.ClockInsHandler
	AuthMiddleware *authz.AuthMiddleware
	Guard          *authz.Guard
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/signup", cfg.Auth.SignUp)
	authGroup.Post("/bootstrap", cfg.Auth.Bootstrap)
	authGroup.Post("/password-reset", cfg.Auth.PasswordReset)

	// the session endpoint stays reachable for deactivated accounts so
	// the account-status page can explain why access was pulled
	authed := authGroup.Group("", cfg.AuthMiddleware.Handle)
	authed.Post("/logout", cfg.Auth.Logout)
	authed.Get("/session", authz.AllowDeactivated(cfg.Guard), cfg.Auth.Session)

	valets := app.Group("/valets", cfg.AuthMiddleware.Handle, authz.RequireAdmin(cfg.Guard))
	valets.Post("", cfg.Valets.Create)
	valets.Get("", cfg.Valets.List)
	// registered before /:id so "stats" never binds as a valet id
	valets.Get("/stats", cfg.Valets.Stats)
	valets.Get("/:id", cfg.Valets.Get)
	valets.Patch("/:id/status", cfg.Valets.SetStatus)
	valets.Post("/:id/promote", cfg.Valets.Promote)
	valets.Post("/:id/demote", cfg.Valets.Demote)
	valets.Delete("/:id", cfg.Valets.Delete)

	clockIns := app.Group("/clock-ins", cfg.AuthMiddleware.Handle)
	clockIns.Post("", authz.RequireActiveValet(cfg.Guard), cfg.ClockIns.Clock)
	clockIns.Get("/history", authz.RequireActiveValet(cfg.Guard), cfg.ClockIns.History)
	clockIns.Get("/today", authz.RequireActiveValet(cfg.Guard), cfg.ClockIns.Today)
	clockIns.Get("/recent", authz.RequireAdmin(cfg.Guard), cfg.ClockIns.Recent)

	app.Get("/reports", cfg.AuthMiddleware.Handle, authz.RequireAdmin(cfg.Guard), cfg.ClockIns.Report)
}
