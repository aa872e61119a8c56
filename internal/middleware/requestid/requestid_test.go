package requestid

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/qolzam/telar/apps/social/internal/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(seen *string) *fiber.App {
	app := fiber.New()
	app.Use(New())
	app.Get("/", func(c *fiber.Ctx) error {
		if log.RequestID(c.UserContext()) == GetRequestID(c) {
			*seen = GetRequestID(c)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestNew_KeepsIncomingID(t *testing.T) {
	var seen string
	app := newApp(&seen)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, "req-42", resp.Header.Get(HeaderRequestID))
	assert.Equal(t, "req-42", seen)
}

func TestNew_GeneratesID(t *testing.T) {
	var seen string
	app := newApp(&seen)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	id := resp.Header.Get(HeaderRequestID)
	assert.Len(t, id, 36)
	assert.Equal(t, id, seen)
}
