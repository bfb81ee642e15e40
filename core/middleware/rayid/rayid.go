// Package rayid assigns a unique request ID to every inbound request.
package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderName is the response header carrying the request's ray ID.
const HeaderName = "X-Ray-Id"

// New returns a middleware that stores a fresh ray ID in the request locals
// and echoes it on the response. An inbound X-Ray-Id is honored so upstream
// proxies can correlate.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(HeaderName)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals("ray_id", rid)
		c.Set(HeaderName, rid)
		return c.Next()
	}
}
