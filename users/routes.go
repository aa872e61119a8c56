package users

import (
	"github.com/gofiber/fiber/v2"
	"github.com/qolzam/telar/apps/social/internal/middleware/authjwt"
	constraints "github.com/qolzam/telar/apps/social/internal/middleware/constraints"
	"github.com/qolzam/telar/apps/social/internal/middleware/ratelimit"
	platformconfig "github.com/qolzam/telar/apps/social/internal/platform/config"
	"github.com/qolzam/telar/apps/social/users/handlers"
)

// UsersHandlers holds all the handlers this router needs.
type UsersHandlers struct {
	UserHandler *handlers.UserHandler
}

// RegisterRoutes is the single entry point for setting up users routes.
// Sign up is public, everything else needs a JWT.
func RegisterRoutes(app fiber.Router, hs *UsersHandlers, cfg *platformconfig.Config) {
	h := hs.UserHandler

	app.Post("/users", ratelimit.FromConfig(cfg.RateLimit, ratelimit.EndpointSignup), h.CreateUser)

	group := app.Group("/users", authjwt.FromConfig(cfg, h.Cache))
	group.Get("/", h.QueryUsers)

	// Static routes before /:userId
	group.Get("/me", h.GetMe)
	group.Patch("/me", h.UpdateMe)
	group.Delete("/me", h.DeleteMe)
	group.Get("/by-name/:username", constraints.Require(handlers.ValidUsername, "username"), h.GetProfileByName)

	requireUser := constraints.RequireUUID("userId")
	group.Get("/:userId", requireUser, h.GetProfile)
	group.Put("/:userId/follow", requireUser, h.Follow)
	group.Delete("/:userId/follow", requireUser, h.Unfollow)
}
