package details

import (
	"github.com/gofiber/fiber/v2"

	"pahla_backend/internals/bootstrap"
	nominationRoute "pahla_backend/internals/features/nominations/route"
)

func NominationPublicRoutes(public fiber.Router, svcs *bootstrap.Services) {
	nominationRoute.NominationPublicRoutes(public, svcs.Wizard, svcs.Attachments)
}

func NominationAdminRoutes(admin fiber.Router, svcs *bootstrap.Services) {
	nominationRoute.NominationAdminRoutes(admin, svcs.Review, svcs.Wizard)
}
