package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"pahla_backend/internals/bootstrap"
	"pahla_backend/internals/constants"
	"pahla_backend/internals/logger"
	authMw "pahla_backend/internals/middlewares/auth"
	routeDetails "pahla_backend/internals/route/details"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB, jwtSecret string, svcs *bootstrap.Services) {
	startTime = time.Now()
	log := logger.With("routes")

	BaseRoutes(app, db)

	// ===================== AUTH =====================
	log.Info().Msg("mounting auth routes")
	routeDetails.AuthRoutes(app, svcs)

	// ===================== GROUPS =====================

	// PUBLIC: nominators use the wizard without an account
	public := app.Group("/api/public")

	// ADMIN: JWT + reviewer role
	admin := app.Group("/api/a",
		authMw.AuthMiddleware(jwtSecret, svcs.Auth),
		authMw.OnlyRoles(constants.RoleErrorAdmin("nomination review"), constants.ReviewerRoles...),
	)

	// ===================== MOUNT ROUTES =====================
	log.Info().Msg("mounting award routes")
	routeDetails.AwardPublicRoutes(public, svcs)

	log.Info().Msg("mounting nomination routes")
	routeDetails.NominationPublicRoutes(public, svcs)
	routeDetails.NominationAdminRoutes(admin, svcs)
}
