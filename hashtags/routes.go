package hashtags

import (
	"github.com/gofiber/fiber/v2"
	"github.com/qolzam/telar/apps/social/hashtags/handlers"
	"github.com/qolzam/telar/apps/social/internal/middleware/authjwt"
	platformconfig "github.com/qolzam/telar/apps/social/internal/platform/config"
)

// HashtagsHandlers holds all the handlers this router needs.
type HashtagsHandlers struct {
	HashtagHandler *handlers.HashtagHandler
}

// RegisterRoutes is the single entry point for setting up hashtags routes.
func RegisterRoutes(app fiber.Router, handlers *HashtagsHandlers, cfg *platformconfig.Config) {
	h := handlers.HashtagHandler
	group := app.Group("/hashtags", authjwt.FromConfig(cfg, h.Cache))

	group.Get("/", h.SearchHashtags)
	group.Get("/trends", h.GetTrends)
}
