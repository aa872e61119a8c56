package rooms

import (
	"github.com/gofiber/fiber/v2"
	"github.com/qolzam/telar/apps/social/internal/middleware/authjwt"
	constraints "github.com/qolzam/telar/apps/social/internal/middleware/constraints"
	"github.com/qolzam/telar/apps/social/internal/middleware/ratelimit"
	platformconfig "github.com/qolzam/telar/apps/social/internal/platform/config"
	"github.com/qolzam/telar/apps/social/rooms/handlers"
)

// RoomsHandlers holds all the handlers this router needs.
type RoomsHandlers struct {
	RoomHandler *handlers.RoomHandler
}

// RegisterRoutes is the single entry point for setting up rooms routes.
func RegisterRoutes(app fiber.Router, handlers *RoomsHandlers, cfg *platformconfig.Config) {
	h := handlers.RoomHandler
	group := app.Group("/rooms", authjwt.FromConfig(cfg, h.Cache))

	group.Get("/", h.QueryRooms)

	// Message routes first, /messages would otherwise hit /:roomId
	requireMessage := constraints.RequireUUID("messageId")
	group.Get("/messages/search", h.SearchMessages)
	group.Post("/messages", ratelimit.FromConfig(cfg.RateLimit, ratelimit.EndpointMessage), h.SendMessage)
	group.Delete("/messages/:messageId", requireMessage, h.DeleteMessage)
	group.Put("/messages/:messageId/reactions", requireMessage, h.SetReaction)
	group.Delete("/messages/:messageId/reactions", requireMessage, h.ClearReaction)

	requireRoom := constraints.RequireUUID("roomId")
	group.Get("/:roomId", requireRoom, h.GetRoom)
	group.Get("/:roomId/messages", requireRoom, h.GetMessages)
	group.Put("/:roomId/:detail", requireRoom, h.AddDetail)
	group.Delete("/:roomId/:detail", requireRoom, h.RemoveDetail)
}
