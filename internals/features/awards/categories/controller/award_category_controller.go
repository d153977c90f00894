package controller

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"pahla_backend/internals/features/awards/categories/dto"
	"pahla_backend/internals/features/awards/categories/service"
	helper "pahla_backend/internals/helpers"
	"pahla_backend/internals/logger"
)

type AwardCategoryController struct {
	Service *service.CategoryService
}

func NewAwardCategoryController(svc *service.CategoryService) *AwardCategoryController {
	return &AwardCategoryController{Service: svc}
}

// GET /api/public/award-categories
func (ctl *AwardCategoryController) List(c *fiber.Ctx) error {
	rows, err := ctl.Service.List(c.UserContext())
	if err != nil {
		logger.With("awards").Error().Err(err).Msg("list categories")
		return helper.JsonError(c, fiber.StatusInternalServerError, "failed to load award categories")
	}
	c.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", 300))
	return helper.JsonOK(c, "ok", dto.FromModels(rows))
}

// GET /api/public/award-categories/:id
func (ctl *AwardCategoryController) Get(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	row, err := ctl.Service.Get(c.UserContext(), id)
	if errors.Is(err, service.ErrCategoryNotFound) {
		return helper.JsonError(c, fiber.StatusNotFound, "award category not found")
	}
	if err != nil {
		logger.With("awards").Error().Err(err).Str("id", id).Msg("get category")
		return helper.JsonError(c, fiber.StatusInternalServerError, "failed to load award category")
	}
	return helper.JsonOK(c, "ok", dto.FromModel(row))
}
