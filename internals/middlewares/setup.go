package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"pahla_backend/internals/configs"
	accessLog "pahla_backend/internals/middlewares/logger"
)

func SetupMiddlewares(app *fiber.App, cfg *configs.Config) {
	app.Use(RecoveryMiddleware())
	app.Use(RequestID(30 * time.Second))
	app.Use(accessLog.LoggerMiddleware())
	app.Use(CorsMiddleware(cfg.CORSOrigins))
	app.Use(GlobalRateLimiter())
}
