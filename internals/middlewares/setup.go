package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"fcehub_backend/internals/middlewares/logger"
)

// SetupMiddlewares installs the app-wide chain: recover first so it also
// covers panics raised in later middleware.
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(CorsMiddleware())
	app.Use(logger.LoggerMiddleware())
	app.Use(GlobalRateLimiter())
}
