// Package requestid assigns a unique ID to every incoming request.
package requestid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderName is the response header carrying the request ID.
const HeaderName = "X-Request-ID"

// LocalsKey is the fiber.Ctx locals key the ID is stored under.
const LocalsKey = "request_id"

// New creates the request ID middleware. An inbound X-Request-ID is
// honored so callers can propagate their own trace IDs.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderName)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(LocalsKey, id)
		c.Set(HeaderName, id)

		return c.Next()
	}
}
