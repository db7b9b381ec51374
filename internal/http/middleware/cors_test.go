package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func newCORSApp(allowOrigins string) *fiber.App {
	app := fiber.New()
	app.Use(CORS(allowOrigins))
	app.Get("/api/v1/files", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestCORS(t *testing.T) {
	t.Run("preflight from allowed origin", func(t *testing.T) {
		app := newCORSApp("http://localhost:3000")

		req := httptest.NewRequest(http.MethodOptions, "/api/v1/files", nil)
		req.Header.Set(fiber.HeaderOrigin, "http://localhost:3000")
		req.Header.Set(fiber.HeaderAccessControlRequestMethod, http.MethodPost)
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		assert.Equal(t, "http://localhost:3000", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
		assert.Contains(t, resp.Header.Get(fiber.HeaderAccessControlAllowMethods), "PATCH")
	})

	t.Run("preflight from unlisted origin gets no allowance", func(t *testing.T) {
		app := newCORSApp("http://localhost:3000")

		req := httptest.NewRequest(http.MethodOptions, "/api/v1/files", nil)
		req.Header.Set(fiber.HeaderOrigin, "https://evil.example")
		req.Header.Set(fiber.HeaderAccessControlRequestMethod, http.MethodPost)
		resp, _ := app.Test(req)

		assert.Empty(t, resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	})

	t.Run("simple request carries the origin back", func(t *testing.T) {
		app := newCORSApp("http://localhost:3000,https://app.example")

		req := httptest.NewRequest(http.MethodGet, "/api/v1/files", nil)
		req.Header.Set(fiber.HeaderOrigin, "https://app.example")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "https://app.example", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	})

	t.Run("wildcard", func(t *testing.T) {
		app := newCORSApp("*")

		req := httptest.NewRequest(http.MethodGet, "/api/v1/files", nil)
		req.Header.Set(fiber.HeaderOrigin, "https://anywhere.example")
		resp, _ := app.Test(req)

		assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	})
}
