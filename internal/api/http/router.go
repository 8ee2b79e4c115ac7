package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/site-auth/internal/api/http/handlers"
	"github.com/spec-kit/site-auth/internal/auth"
	"github.com/spec-kit/site-auth/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Admin          *handlers.AdminHandler
	Contact        *handlers.ContactHandler
	AuthMiddleware *auth.AuthMiddleware
	LoginLimiter   fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	loginPath := cfg.AuthMiddleware.LoginPath()
	loginLimiter := cfg.LoginLimiter
	if loginLimiter == nil {
		loginLimiter = func(c *fiber.Ctx) error { return c.Next() }
	}

	health := app.Group("/health")
	health.Get("/live", cfg.Health.Live)
	health.Get("/ready", cfg.Health.Ready)
	health.Get("/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", loginLimiter, cfg.Auth.Login)
	authGroup.Post("/logout", cfg.AuthMiddleware.Optional, cfg.Auth.Logout)
	authGroup.Get("/me", cfg.AuthMiddleware.Optional, cfg.Auth.Me)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(loginPath), cfg.Auth.ChangePassword)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireUserType(loginPath, domain.UserTypeAdmin))
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Delete("/users/:id", cfg.Admin.DeleteUser)
	admin.Get("/inquiries", cfg.Admin.ListInquiries)

	app.Post("/contact", cfg.Contact.Submit)
}
