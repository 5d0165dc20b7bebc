package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

const requestIDCtxKey = "request_id"

// RequestID reuses the caller's X-Request-ID or assigns a fresh UUID, and
// echoes it on the response.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			u, err := uuid.NewV4()
			if err != nil {
				return err
			}
			id = u.String()
		}
		c.Locals(requestIDCtxKey, id)
		c.Set(HeaderRequestID, id)
		return c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID, or "".
func GetRequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestIDCtxKey).(string); ok {
		return id
	}
	return ""
}
