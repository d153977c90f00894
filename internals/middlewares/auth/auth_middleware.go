package auth

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"pahla_backend/internals/features/users/auth/service"
	helper "pahla_backend/internals/helpers"
	"pahla_backend/internals/logger"
)

// AccountChecker reports whether an admin account and its token may still act.
type AccountChecker interface {
	IsActive(ctx context.Context, id uuid.UUID) (bool, error)
	IsRevoked(ctx context.Context, rawToken string) (bool, error)
}

// AuthMiddleware validates the bearer JWT and stores user_id and userRole in Locals.
func AuthMiddleware(secret string, users AccountChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := logger.With("auth")

		tokenString, err := extractBearerToken(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - "+err.Error())
		}

		userID, role, err := service.ParseAccessToken(tokenString, secret)
		if err != nil {
			if errors.Is(err, service.ErrMissingSecret) {
				log.Error().Msg("JWT_SECRET is empty")
				return fiber.NewError(fiber.StatusInternalServerError, "Missing JWT secret")
			}
			log.Debug().Err(err).Msg("token rejected")
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - invalid or expired token")
		}

		if users != nil {
			revoked, err := users.IsRevoked(c.UserContext(), tokenString)
			if err != nil {
				log.Error().Err(err).Msg("revocation check")
				return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
			}
			if revoked {
				return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - session has ended, please sign in again")
			}

			active, err := users.IsActive(c.UserContext(), userID)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - user not found")
			case err != nil:
				log.Error().Err(err).Msg("active check")
				return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
			case !active:
				return fiber.NewError(fiber.StatusForbidden, "Account is disabled")
			}
		}

		helper.SetRawAccessToken(c, tokenString)
		c.Locals("user_id", userID.String())
		c.Locals("userRole", role)
		return c.Next()
	}
}
