package auth

import (
	"crypto/subtle"
	"log"

	"github.com/gofiber/fiber/v2"

	helper "fcehub_backend/internals/helpers"
)

// AutomationToken guards machine endpoints with a static bearer token. An
// empty configured token rejects everything.
func AutomationToken(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := extractBearerToken(c)
		if err != nil || token == "" ||
			subtle.ConstantTimeCompare([]byte(raw), []byte(token)) != 1 {
			log.Printf("[AUTOMATION] ⛔ rejected %s from %s", c.Path(), c.IP())
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
		}
		return c.Next()
	}
}
