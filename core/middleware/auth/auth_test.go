package auth

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func setupApp(cfg Config) *fiber.App {
	app := fiber.New()
	app.Use(New(cfg))
	app.Get("/protected", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/public/thing", func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

func TestAuth(t *testing.T) {
	t.Run("DisabledWhenNoKey", func(t *testing.T) {
		app := setupApp(Config{})
		resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("RejectsMissingKey", func(t *testing.T) {
		app := setupApp(Config{ApiKey: "secret"})
		resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("AcceptsValidKey", func(t *testing.T) {
		app := setupApp(Config{ApiKey: "secret"})
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("X-Api-Key", "secret")
		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("NextSkipsPublicRoutes", func(t *testing.T) {
		app := setupApp(Config{
			ApiKey: "secret",
			Next: func(c *fiber.Ctx) bool {
				return strings.HasPrefix(c.Path(), "/public/")
			},
		})
		resp, err := app.Test(httptest.NewRequest("GET", "/public/thing", nil))
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}
