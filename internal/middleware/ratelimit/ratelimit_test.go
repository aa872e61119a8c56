package ratelimit

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformconfig "github.com/qolzam/telar/apps/social/internal/platform/config"
	"github.com/qolzam/telar/apps/social/internal/types"
)

// newApp serves POST /test behind limiter; the user header, when set,
// stands in for the JWT middleware.
func newApp(limiter fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if raw := c.Get("X-Test-User"); raw != "" {
			c.Locals(types.UserCtxName, types.UserContext{UserID: uuid.FromStringOrNil(raw)})
		}
		return c.Next()
	})
	app.Use(limiter)
	app.Post("/test", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true})
	})
	return app
}

func post(t *testing.T, app *fiber.App, user string) int {
	t.Helper()
	req := httptest.NewRequest("POST", "/test", nil)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestRateLimit_RejectsExcessiveRequests(t *testing.T) {
	app := newApp(New(Config{EndpointType: EndpointSignup, Max: 3, Window: time.Minute}))

	for i := 0; i < 3; i++ {
		assert.Equal(t, fiber.StatusOK, post(t, app, ""))
	}

	req := httptest.NewRequest("POST", "/test", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "RATE_LIMIT_EXCEEDED")
	assert.Contains(t, string(body), "signup")
	assert.Contains(t, string(body), `"retryAfter":60`)
}

func TestRateLimit_UsersHaveIndependentBudgets(t *testing.T) {
	app := newApp(New(Config{EndpointType: EndpointMessage, Max: 2, Window: time.Minute}))
	alice := "0b7c3f4e-8a56-4c2e-9f1a-2d3e4f5a6b01"
	bob := "1c8d4a5f-9b67-4d3f-8a2b-3e4f5a6b7c02"

	assert.Equal(t, fiber.StatusOK, post(t, app, alice))
	assert.Equal(t, fiber.StatusOK, post(t, app, alice))
	assert.Equal(t, fiber.StatusTooManyRequests, post(t, app, alice))
	assert.Equal(t, fiber.StatusOK, post(t, app, bob))
}

func TestFromConfig(t *testing.T) {
	t.Run("disabled passes everything", func(t *testing.T) {
		app := newApp(FromConfig(platformconfig.RateLimitConfig{Enabled: false, PostMax: 1, PostWindow: time.Minute}, EndpointPost))
		for i := 0; i < 5; i++ {
			assert.Equal(t, fiber.StatusOK, post(t, app, ""))
		}
	})

	t.Run("enabled uses the endpoint budget", func(t *testing.T) {
		cfg := platformconfig.RateLimitConfig{Enabled: true, PostMax: 1, PostWindow: time.Minute, SignupMax: 5, SignupWindow: time.Minute}
		app := newApp(FromConfig(cfg, EndpointPost))
		assert.Equal(t, fiber.StatusOK, post(t, app, ""))
		assert.Equal(t, fiber.StatusTooManyRequests, post(t, app, ""))
	})
}

func TestEndpointType_String(t *testing.T) {
	assert.Equal(t, "signup", EndpointSignup.String())
	assert.Equal(t, "message", EndpointMessage.String())
	assert.Equal(t, "post", EndpointPost.String())
	assert.Equal(t, "unknown", EndpointType(42).String())
}
