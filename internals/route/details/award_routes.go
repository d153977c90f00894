package details

import (
	"github.com/gofiber/fiber/v2"

	"pahla_backend/internals/bootstrap"
	categoryRoute "pahla_backend/internals/features/awards/categories/route"
)

func AwardPublicRoutes(public fiber.Router, svcs *bootstrap.Services) {
	categoryRoute.AwardCategoryPublicRoutes(public, svcs.Categories)
}
