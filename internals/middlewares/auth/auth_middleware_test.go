package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pahla_backend/internals/databases/dbtest"
	"pahla_backend/internals/features/users/auth/service"
	helper "pahla_backend/internals/helpers"
)

func newApp(t *testing.T) (*fiber.App, *service.AuthService, string) {
	t.Helper()
	db := dbtest.Open(t)
	_, err := service.EnsureAdmin(context.Background(), db, "reviewer@pahla.org", "Reviewer", "reviewer-pass", "admin")
	require.NoError(t, err)
	svc := service.NewAuthService(db, "mw-secret", time.Hour)
	res, err := svc.Login(context.Background(), "reviewer@pahla.org", "reviewer-pass")
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error { return helper.FromFiberError(c, err) },
	})
	app.Get("/admin", AuthMiddleware("mw-secret", svc), OnlyRoles("", "admin"), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user_id").(string))
	})
	app.Get("/owner", AuthMiddleware("mw-secret", svc), OnlyRoles("", "owner"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app, svc, res.AccessToken
}

func get(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthMiddleware(t *testing.T) {
	app, svc, token := newApp(t)

	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/admin", ""))
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/admin", "garbage"))
	assert.Equal(t, http.StatusOK, get(t, app, "/admin", token))
	assert.Equal(t, http.StatusForbidden, get(t, app, "/owner", token))

	require.NoError(t, svc.Logout(context.Background(), token))
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/admin", token))
}

func TestAuthMiddlewareRejectsDisabledAccount(t *testing.T) {
	app, svc, token := newApp(t)
	require.NoError(t, svc.DB.Exec("UPDATE admin_users SET is_active = ?", false).Error)
	assert.Equal(t, http.StatusForbidden, get(t, app, "/admin", token))
}
