package posts

import (
	"github.com/gofiber/fiber/v2"
	"github.com/qolzam/telar/apps/social/internal/middleware/authjwt"
	constraints "github.com/qolzam/telar/apps/social/internal/middleware/constraints"
	"github.com/qolzam/telar/apps/social/internal/middleware/ratelimit"
	platformconfig "github.com/qolzam/telar/apps/social/internal/platform/config"
	"github.com/qolzam/telar/apps/social/posts/handlers"
)

// PostsHandlers holds all the handlers this router needs.
type PostsHandlers struct {
	PostHandler *handlers.PostHandler
}

// RegisterRoutes is the single entry point for setting up posts routes.
func RegisterRoutes(app fiber.Router, handlers *PostsHandlers, cfg *platformconfig.Config) {
	h := handlers.PostHandler
	group := app.Group("/posts", authjwt.FromConfig(cfg, h.Cache))

	group.Get("/", h.QueryPosts)
	group.Post("/", ratelimit.FromConfig(cfg.RateLimit, ratelimit.EndpointPost), h.CreatePost)

	// Parameterized routes for a single post
	requirePost := constraints.RequireUUID("postId")
	group.Get("/:postId", requirePost, h.GetPost)
	group.Put("/:postId", requirePost, h.UpdatePost)
	group.Delete("/:postId", requirePost, h.DeletePost)

	group.Get("/:postId/reactions/:type", requirePost, h.GetReactions)
	group.Put("/:postId/reactions/:type", requirePost, h.AddReaction)
	group.Delete("/:postId/reactions/:type", requirePost, h.RemoveReaction)

	group.Get("/:postId/views", requirePost, h.GetViews)
	group.Put("/:postId/views/:field", requirePost, h.IncrementViews)
}
