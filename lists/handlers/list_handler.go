package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/telar/apps/social/internal/database/catalog"
	"github.com/qolzam/telar/apps/social/internal/platform"
	"github.com/qolzam/telar/apps/social/internal/platform/errors"
	"github.com/qolzam/telar/apps/social/internal/store"
	"github.com/qolzam/telar/apps/social/models"
)

// ListHandler handles curated list requests.
type ListHandler struct {
	*platform.BaseService
}

// NewListHandler creates a new ListHandler with injected dependencies
func NewListHandler(base *platform.BaseService) *ListHandler {
	return &ListHandler{BaseService: base}
}

// CreateListRequest is the body of POST /lists.
type CreateListRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Banner      string          `json:"banner"`
	Make        models.ListMake `json:"make"`
}

// UpdateListRequest is the body of PATCH /lists/:listId.
type UpdateListRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Banner      *string          `json:"banner"`
	Make        *models.ListMake `json:"make"`
}

// ListDetailRequest names the subject of a member or post detail. The same
// fields are read from the query string when the body is empty.
type ListDetailRequest struct {
	UserID uuid.UUID `json:"userId" schema:"userId"`
	PostID uuid.UUID `json:"postId" schema:"postId"`
}

// QueryLists returns one offset page of lists visible to the caller.
func (h *ListHandler) QueryLists(c *fiber.Ctx) error {
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}

	var filter catalog.ListsFilter
	if err := platform.DecodeQuery(c, &filter); err != nil {
		return errors.HandleValidationError(c, "Invalid query parameters", err.Error())
	}
	filter.Page = h.Page(c)

	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.GetLists(c.UserContext(), user.UserID, filter), http.StatusOK)
	})
}

// GetList returns one list.
func (h *ListHandler) GetList(c *fiber.Ctx) error {
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}
	listID := platform.ParamUUID(c, "listId")
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.GetList(c.UserContext(), user.UserID, listID), http.StatusOK)
	})
}

// CreateList handles list creation
func (h *ListHandler) CreateList(c *fiber.Ctx) error {
	var req CreateListRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleInvalidRequestError(c, "Invalid request body")
	}
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}

	in := store.NewList{
		UserID:      user.UserID,
		Name:        req.Name,
		Description: req.Description,
		Banner:      req.Banner,
		Make:        req.Make,
	}
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.CreateList(c.UserContext(), in), http.StatusCreated)
	})
}

// UpdateList changes a list owned by the caller.
func (h *ListHandler) UpdateList(c *fiber.Ctx) error {
	var req UpdateListRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleInvalidRequestError(c, "Invalid request body")
	}
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}

	listID := platform.ParamUUID(c, "listId")
	patch := store.ListPatch{
		Name:        req.Name,
		Description: req.Description,
		Banner:      req.Banner,
		Make:        req.Make,
	}
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.UpdateList(c.UserContext(), user.UserID, listID, patch), http.StatusOK)
	})
}

// DeleteList removes a list owned by the caller.
func (h *ListHandler) DeleteList(c *fiber.Ctx) error {
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}
	listID := platform.ParamUUID(c, "listId")
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.DeleteList(c.UserContext(), user.UserID, listID), http.StatusNoContent)
	})
}

func (h *ListHandler) detail(c *fiber.Ctx, add bool) error {
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}
	kind := models.ListDetailType(c.Params("detail"))
	if !kind.Valid() {
		return errors.HandleValidationError(c, "Unknown list detail", string(kind))
	}

	var req ListDetailRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errors.HandleInvalidRequestError(c, "Invalid request body")
		}
	} else if err := platform.DecodeQuery(c, &req); err != nil {
		return errors.HandleValidationError(c, "Invalid query parameters", err.Error())
	}

	in := store.ListDetailInput{
		Actor:  user.UserID,
		ListID: platform.ParamUUID(c, "listId"),
		Type:   kind,
		UserID: req.UserID,
		PostID: req.PostID,
		Add:    add,
	}
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.HandleListDetail(c.UserContext(), in), http.StatusOK)
	})
}

// AddDetail adds a member, post, follower or unshow marker.
func (h *ListHandler) AddDetail(c *fiber.Ctx) error {
	return h.detail(c, true)
}

// RemoveDetail undoes AddDetail.
func (h *ListHandler) RemoveDetail(c *fiber.Ctx) error {
	return h.detail(c, false)
}
