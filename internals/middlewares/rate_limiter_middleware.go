package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	helper "pahla_backend/internals/helpers"
)

func newLimiter(max int, window time.Duration, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return helper.JsonError(c, fiber.StatusTooManyRequests, message)
		},
	})
}

// GlobalRateLimiter applies to every route.
func GlobalRateLimiter() fiber.Handler {
	return newLimiter(120, time.Minute, "Too many requests. Please try again later.")
}

func LoginRateLimiter() fiber.Handler {
	return newLimiter(5, time.Minute, "Too many login attempts. Please wait a moment.")
}

// UploadRateLimiter guards the attachment endpoints.
func UploadRateLimiter() fiber.Handler {
	return newLimiter(30, time.Minute, "Too many uploads. Please slow down.")
}

// WizardStartRateLimiter caps how fast new wizard sessions are opened.
func WizardStartRateLimiter() fiber.Handler {
	return newLimiter(20, time.Minute, "Too many new nominations started. Please try again later.")
}
