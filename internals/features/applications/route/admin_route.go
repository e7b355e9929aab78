package route

import (
	"github.com/gofiber/fiber/v2"

	"fcehub_backend/internals/constants"
	appController "fcehub_backend/internals/features/applications/controller"
	authMiddleware "fcehub_backend/internals/middlewares/auth"
)

// ApplicationAdminRoutes mounts the dashboard on /api/a (already behind auth).
func ApplicationAdminRoutes(r fiber.Router, ctl *appController.AdminController) {
	apps := r.Group("/applications",
		authMiddleware.OnlyRoles(constants.RoleErrorStaff("Applications"), constants.StaffRoles...),
	)

	apps.Get("/", ctl.List)
	apps.Get("/export", ctl.Export)
	apps.Get("/:id", ctl.Detail)

	apps.Patch("/:id/status", ctl.ChangeStatus)
	apps.Patch("/:id/payment-status", ctl.ChangePaymentStatus)
	apps.Patch("/:id/paid-at", ctl.ChangePaidAt)
	apps.Patch("/:id/due-amount", ctl.ChangeDueAmount)
	apps.Patch("/:id/office", ctl.ChangeOffice)

	apps.Patch("/:id/educations/:education_id", ctl.UpdateEducationAI)
	apps.Post("/:id/notify", ctl.Notify)
}
