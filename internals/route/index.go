package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"fcehub_backend/internals/configs"
	appController "fcehub_backend/internals/features/applications/controller"
	appRoute "fcehub_backend/internals/features/applications/route"
	appService "fcehub_backend/internals/features/applications/service"
	payController "fcehub_backend/internals/features/payments/controller"
	payRepo "fcehub_backend/internals/features/payments/repository"
	payRoute "fcehub_backend/internals/features/payments/route"
	payService "fcehub_backend/internals/features/payments/service"
	authRoute "fcehub_backend/internals/features/users/auth/route"
	helperOSS "fcehub_backend/internals/helpers/oss"
	authMiddleware "fcehub_backend/internals/middlewares/auth"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, s *Services) {
	startTime = time.Now()

	log.Println("[INFO] Setting up BaseRoutes...")
	BaseRoutes(app, s.DB)

	requireStaff := authMiddleware.AuthMiddleware(s.Auth)

	// ===================== AUTH =====================
	log.Println("[INFO] Setting up AuthRoutes...")
	authRoute.AuthRoutes(app, s.Auth, requireStaff)

	// ===================== PUBLIC (customer form) =====================
	log.Println("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api/public")

	apps := appService.NewApplicationService(s.Apps, s.Manager, s.Mailer)
	var docs *appService.DocumentService
	if s.Blobs != nil {
		docs = appService.NewDocumentService(s.Apps, s.Blobs, helperOSS.WebPOptionsFromEnv())
	}
	var checkout fiber.Handler
	if s.Gateway != nil {
		checkout = payController.NewCheckoutController(payService.NewCheckoutService(s.Manager, s.Gateway)).Start
	}
	appRoute.ApplicationPublicRoutes(public, appController.NewApplicationController(apps, docs), checkout)

	// ===================== WEBHOOKS =====================
	log.Println("[INFO] Setting up WEBHOOK group...")
	events := payRepo.NewGatewayEventRepository(s.DB)
	webhook := payController.NewWebhookController(
		payService.NewWebhookService(s.Manager, events),
		payService.Verifiers(s.Gateway),
	)
	payRoute.WebhookRoutes(app.Group("/api/webhooks"), webhook)

	// ===================== AUTOMATION =====================
	log.Println("[INFO] Setting up AUTOMATION group...")
	automation := app.Group("/api/automation", authMiddleware.AutomationToken(configs.AutomationToken))
	appRoute.AutomationRoutes(automation, appController.NewAutomationController(s.Manager))

	// ===================== ADMIN (staff) =====================
	log.Println("[INFO] Setting up ADMIN group (Auth + RoleCheck)...")
	admin := app.Group("/api/a", requireStaff)
	appRoute.ApplicationAdminRoutes(admin, appController.NewAdminController(s.Manager,
		appService.NewAdminService(s.Apps, s.Manager, s.Mailer)))
	payRoute.PaymentAdminRoutes(admin, payController.NewEventController(events))
}
