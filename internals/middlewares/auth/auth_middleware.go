package auth

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"fcehub_backend/internals/features/users/auth/service"
	helper "fcehub_backend/internals/helpers"
)

// AuthMiddleware admits requests carrying a valid, unrevoked staff token for
// an active account and stores the caller in Locals.
func AuthMiddleware(svc *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := extractBearerToken(c)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
		}

		staff, claims, err := svc.Authenticate(c.UserContext(), raw)
		switch {
		case err == nil:
		case errors.Is(err, service.ErrTokenRevoked):
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - token has been logged out")
		case errors.Is(err, service.ErrInvalidCredentials):
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - invalid or expired token")
		case errors.Is(err, service.ErrInactive):
			return helper.JsonError(c, fiber.StatusForbidden, "Your account has been disabled")
		default:
			log.Printf("[AUTH] ❌ authenticate %s %s: %v", c.Method(), c.Path(), err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "Internal server error")
		}

		storeStaffToLocals(c, raw, staff, claims)
		return c.Next()
	}
}
