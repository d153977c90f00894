package details

import (
	"github.com/gofiber/fiber/v2"

	"pahla_backend/internals/bootstrap"
	authRoute "pahla_backend/internals/features/users/auth/route"
)

func AuthRoutes(app *fiber.App, svcs *bootstrap.Services) {
	authRoute.AuthRoutes(app, svcs.Auth)
}
