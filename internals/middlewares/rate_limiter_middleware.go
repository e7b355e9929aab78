package middlewares

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	helper "fcehub_backend/internals/helpers"
)

var limiterStorage fiber.Storage

// UseLimiterStorage makes limiters created afterwards keep their counters in
// s. Call it before the routes are mounted.
func UseLimiterStorage(s fiber.Storage) { limiterStorage = s }

// name keeps counters of different limiters apart in shared storage.
func newIPLimiter(name string, max int, window time.Duration, message string, skip ...func(*fiber.Ctx) bool) fiber.Handler {
	cfg := limiter.Config{
		Max:        max,
		Expiration: window,
		Storage:    limiterStorage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return name + ":" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return helper.JsonError(c, fiber.StatusTooManyRequests, message)
		},
	}
	if len(skip) > 0 {
		cfg.Next = skip[0]
	}
	return limiter.New(cfg)
}

// GlobalRateLimiter applies to every route except webhooks.
func GlobalRateLimiter() fiber.Handler {
	return newIPLimiter("global", 100, time.Minute, "Too many requests. Please try again later.", func(c *fiber.Ctx) bool {
		return strings.HasPrefix(c.Path(), "/api/webhooks/")
	})
}

// LoginRateLimiter is the stricter limit on staff login.
func LoginRateLimiter() fiber.Handler {
	return newIPLimiter("login", 5, time.Minute, "Too many login attempts. Please wait a moment.")
}

// PublicWriteRateLimiter covers customer create/upload/submit/checkout.
func PublicWriteRateLimiter() fiber.Handler {
	return newIPLimiter("public-write", 30, time.Minute, "Too many requests for this application. Please slow down.")
}
