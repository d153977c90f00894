package route

import (
	"github.com/gofiber/fiber/v2"

	"pahla_backend/internals/features/awards/categories/controller"
	"pahla_backend/internals/features/awards/categories/service"
)

func AwardCategoryPublicRoutes(public fiber.Router, svc *service.CategoryService) {
	ctl := controller.NewAwardCategoryController(svc)

	g := public.Group("/award-categories")
	g.Get("/", ctl.List)
	g.Get("/:id", ctl.Get)
}
