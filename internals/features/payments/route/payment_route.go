package route

import (
	"github.com/gofiber/fiber/v2"

	"fcehub_backend/internals/constants"
	payController "fcehub_backend/internals/features/payments/controller"
	authMiddleware "fcehub_backend/internals/middlewares/auth"
)

// WebhookRoutes: provider callbacks on /api/webhooks, no auth (signed payloads).
func WebhookRoutes(r fiber.Router, ctl *payController.WebhookController) {
	r.Post("/stripe", ctl.Stripe)
	r.Post("/midtrans", ctl.Midtrans)
}

// PaymentAdminRoutes mounts the gateway event log on /api/a.
func PaymentAdminRoutes(r fiber.Router, ctl *payController.EventController) {
	r.Get("/payment-events",
		authMiddleware.OnlyRoles(constants.RoleErrorStaff("Payment events"), constants.StaffRoles...),
		ctl.List,
	)
}
