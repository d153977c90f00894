package route

import (
	"github.com/gofiber/fiber/v2"

	"pahla_backend/internals/features/users/auth/controller"
	"pahla_backend/internals/features/users/auth/service"
	"pahla_backend/internals/middlewares"
	authMw "pahla_backend/internals/middlewares/auth"
)

func AuthRoutes(app *fiber.App, svc *service.AuthService) {
	ctl := controller.NewAuthController(svc)

	auth := app.Group("/api/auth")
	auth.Post("/login", middlewares.LoginRateLimiter(), ctl.Login)
	auth.Post("/logout", authMw.AuthMiddleware(svc.Secret, svc), ctl.Logout)
}
