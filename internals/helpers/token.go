package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// LocRawToken holds the verified bearer token for handlers that need it.
const LocRawToken = "raw_token"

func SetRawAccessToken(c *fiber.Ctx, raw string) {
	if raw = strings.TrimSpace(raw); raw != "" {
		c.Locals(LocRawToken, raw)
	}
}

// GetRawAccessToken returns the token stored by the auth middleware.
func GetRawAccessToken(c *fiber.Ctx) string {
	v, _ := c.Locals(LocRawToken).(string)
	return v
}
