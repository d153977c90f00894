package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"pahla_backend/internals/features/users/auth/service"
	helper "pahla_backend/internals/helpers"
	"pahla_backend/internals/logger"
)

type AuthController struct {
	Service   *service.AuthService
	Validator *validator.Validate
}

func NewAuthController(svc *service.AuthService) *AuthController {
	return &AuthController{Service: svc, Validator: validator.New()}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// POST /api/auth/login
func (ctl *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctl.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	res, err := ctl.Service.Login(c.UserContext(), req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrInactiveAccount):
		return helper.JsonError(c, fiber.StatusForbidden, err.Error())
	case err != nil:
		logger.With("auth").Error().Err(err).Msg("login")
		return helper.JsonError(c, fiber.StatusInternalServerError, "login failed")
	}
	return helper.JsonOK(c, "login successful", res)
}

// POST /api/auth/logout
func (ctl *AuthController) Logout(c *fiber.Ctx) error {
	raw := helper.GetRawAccessToken(c)
	if raw == "" {
		return helper.JsonError(c, fiber.StatusUnauthorized, "not signed in")
	}
	if err := ctl.Service.Logout(c.UserContext(), raw); err != nil {
		logger.With("auth").Error().Err(err).Msg("logout")
		return helper.JsonError(c, fiber.StatusInternalServerError, "logout failed")
	}
	return helper.JsonOK(c, "logged out", nil)
}
