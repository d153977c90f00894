package middlewares

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"pahla_backend/internals/logger"
)

// RecoveryMiddleware turns panics into 500 responses and logs the stack.
func RecoveryMiddleware() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			logger.With("http").Error().
				Str("path", c.Path()).
				Str("panic", fmt.Sprint(e)).
				Bytes("stack", debug.Stack()).
				Msg("recovered from panic")
		},
	})
}
