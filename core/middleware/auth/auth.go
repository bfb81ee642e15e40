// Package auth provides API key validation middleware.
package auth

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// Config configures the API key middleware.
type Config struct {
	// ApiKey is the expected key. When empty, authentication is disabled.
	ApiKey string
	// Next skips authentication for a request when it returns true.
	Next func(c *fiber.Ctx) bool
}

// New returns a middleware validating the X-Api-Key header against the
// configured key.
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.ApiKey == "" {
			return c.Next()
		}
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		key := c.Get("X-Api-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(cfg.ApiKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or missing API key",
			})
		}
		return c.Next()
	}
}
