package lists

import (
	"github.com/gofiber/fiber/v2"
	"github.com/qolzam/telar/apps/social/internal/middleware/authjwt"
	constraints "github.com/qolzam/telar/apps/social/internal/middleware/constraints"
	platformconfig "github.com/qolzam/telar/apps/social/internal/platform/config"
	"github.com/qolzam/telar/apps/social/lists/handlers"
)

// ListsHandlers holds all the handlers this router needs.
type ListsHandlers struct {
	ListHandler *handlers.ListHandler
}

// RegisterRoutes is the single entry point for setting up lists routes.
func RegisterRoutes(app fiber.Router, handlers *ListsHandlers, cfg *platformconfig.Config) {
	h := handlers.ListHandler
	group := app.Group("/lists", authjwt.FromConfig(cfg, h.Cache))

	group.Get("/", h.QueryLists)
	group.Post("/", h.CreateList)

	requireList := constraints.RequireUUID("listId")
	group.Get("/:listId", requireList, h.GetList)
	group.Patch("/:listId", requireList, h.UpdateList)
	group.Delete("/:listId", requireList, h.DeleteList)

	group.Put("/:listId/:detail", requireList, h.AddDetail)
	group.Delete("/:listId/:detail", requireList, h.RemoveDetail)
}
