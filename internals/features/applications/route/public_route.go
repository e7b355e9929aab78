package route

import (
	"github.com/gofiber/fiber/v2"

	appController "fcehub_backend/internals/features/applications/controller"
	rateLimiter "fcehub_backend/internals/middlewares"
)

// ApplicationPublicRoutes mounts the customer form on /api/public.
// checkout is the payments handler for POST /applications/:id/checkout.
func ApplicationPublicRoutes(r fiber.Router, ctl *appController.ApplicationController, checkout fiber.Handler) {
	apps := r.Group("/applications")

	apps.Post("/", rateLimiter.PublicWriteRateLimiter(), ctl.Create)
	apps.Get("/:id", ctl.Get)
	apps.Patch("/:id", ctl.Autosave)
	apps.Post("/:id/documents", rateLimiter.PublicWriteRateLimiter(), ctl.UploadDocument)
	apps.Post("/:id/submit", rateLimiter.PublicWriteRateLimiter(), ctl.Submit)
	if checkout != nil {
		apps.Post("/:id/checkout", rateLimiter.PublicWriteRateLimiter(), checkout)
	}
}

// AutomationRoutes mounts the token-protected sweep trigger on /api/automation.
func AutomationRoutes(r fiber.Router, ctl *appController.AutomationController) {
	r.Post("/expire-payments", ctl.ExpirePayments)
}
