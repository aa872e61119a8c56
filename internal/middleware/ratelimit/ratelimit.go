// Package ratelimit throttles the endpoints that create content or accounts.
package ratelimit

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/qolzam/telar/apps/social/internal/pkg/log"
	platformconfig "github.com/qolzam/telar/apps/social/internal/platform/config"
	"github.com/qolzam/telar/apps/social/internal/types"
)

// EndpointType selects the budget a limiter applies.
type EndpointType int

const (
	EndpointSignup EndpointType = iota
	EndpointMessage
	EndpointPost
)

// Config holds the configuration for rate limiting middleware
type Config struct {
	EndpointType EndpointType
	Max          int
	Window       time.Duration

	// Next defines a function to skip this middleware when returned true
	Next func(c *fiber.Ctx) bool

	// Custom key generator (optional - uses the caller or the IP if not provided)
	KeyGenerator func(c *fiber.Ctx) string
}

func (t EndpointType) String() string {
	switch t {
	case EndpointSignup:
		return "signup"
	case EndpointMessage:
		return "message"
	case EndpointPost:
		return "post"
	default:
		return "unknown"
	}
}

// callerKey limits authenticated callers by user id and everyone else by IP.
func callerKey(t EndpointType) func(c *fiber.Ctx) string {
	return func(c *fiber.Ctx) string {
		if user, ok := c.Locals(types.UserCtxName).(types.UserContext); ok {
			return fmt.Sprintf("%s:user:%s", t, user.UserID)
		}
		return fmt.Sprintf("%s:ip:%s", t, c.IP())
	}
}

// New creates a new rate limiting middleware handler
func New(config Config) fiber.Handler {
	if config.Max <= 0 {
		config.Max = 5
	}
	if config.Window <= 0 {
		config.Window = 15 * time.Minute
	}
	if config.KeyGenerator == nil {
		config.KeyGenerator = callerKey(config.EndpointType)
	}

	endpoint := config.EndpointType.String()
	window := config.Window
	return limiter.New(limiter.Config{
		Max:          config.Max,
		Expiration:   window,
		KeyGenerator: config.KeyGenerator,
		Next:         config.Next,
		LimitReached: func(c *fiber.Ctx) error {
			log.WarnWithContext(c.UserContext(), "[RateLimit] Rate limit exceeded for %s from IP: %s", endpoint, c.IP())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"code":       "RATE_LIMIT_EXCEEDED",
				"message":    fmt.Sprintf("Too many %s requests. Please try again later.", endpoint),
				"retryAfter": int(window.Seconds()),
			})
		},
	})
}

// FromConfig builds the limiter of one endpoint, or a pass-through handler
// when rate limiting is off.
func FromConfig(cfg platformconfig.RateLimitConfig, endpoint EndpointType) fiber.Handler {
	if !cfg.Enabled {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	c := Config{EndpointType: endpoint}
	switch endpoint {
	case EndpointSignup:
		c.Max, c.Window = cfg.SignupMax, cfg.SignupWindow
	case EndpointMessage:
		c.Max, c.Window = cfg.MessageMax, cfg.MessageWindow
	case EndpointPost:
		c.Max, c.Window = cfg.PostMax, cfg.PostWindow
	}
	return New(c)
}
