package constraints

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid"
)

// Require answers 404 when a non-empty path parameter fails valid, so a
// malformed segment behaves like an unmatched route. Static routes sharing the
// prefix must be registered first.
func Require(valid func(string) bool, params ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, param := range params {
			value := c.Params(param)
			if value != "" && !valid(value) {
				return c.SendStatus(fiber.StatusNotFound)
			}
		}
		return c.Next()
	}
}

// RequireUUID checks that every named path parameter is a UUID.
func RequireUUID(params ...string) fiber.Handler {
	return Require(isUUID, params...)
}

func isUUID(s string) bool {
	_, err := uuid.FromString(s)
	return err == nil
}
