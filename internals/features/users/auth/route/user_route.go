package route

import (
	"github.com/gofiber/fiber/v2"

	"fcehub_backend/internals/features/users/auth/controller"
	"fcehub_backend/internals/features/users/auth/service"
	rateLimiter "fcehub_backend/internals/middlewares"
)

// AuthRoutes mounts /api/auth. requireStaff guards the session endpoints.
func AuthRoutes(app *fiber.App, svc *service.AuthService, requireStaff fiber.Handler) {
	ac := controller.NewAuthController(svc)

	g := app.Group("/api/auth")
	g.Post("/login", rateLimiter.LoginRateLimiter(), ac.Login)
	g.Post("/google", rateLimiter.LoginRateLimiter(), ac.LoginGoogle)
	g.Post("/logout", requireStaff, ac.Logout)
	g.Get("/me", requireStaff, ac.Me)
	g.Post("/change-password", requireStaff, ac.ChangePassword)
}
