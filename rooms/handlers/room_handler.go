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

// RoomHandler handles direct message rooms and their messages.
type RoomHandler struct {
	*platform.BaseService
}

// NewRoomHandler creates a new RoomHandler with injected dependencies
func NewRoomHandler(base *platform.BaseService) *RoomHandler {
	return &RoomHandler{BaseService: base}
}

// SendMessageRequest is the body of POST /rooms/messages.
type SendMessageRequest struct {
	ReceiverID uuid.UUID     `json:"receiverId"`
	ParentID   uuid.NullUUID `json:"parentId"`
	Content    string        `json:"content"`
	Media      []string      `json:"media"`
}

// ReactionRequest is the body of PUT /rooms/messages/:messageId/reactions.
type ReactionRequest struct {
	Content string `json:"content"`
}

// QueryRooms lists the rooms of the caller.
func (h *RoomHandler) QueryRooms(c *fiber.Ctx) error {
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}

	var filter catalog.RoomsFilter
	if err := platform.DecodeQuery(c, &filter); err != nil {
		return errors.HandleValidationError(c, "Invalid query parameters", err.Error())
	}
	filter.Page = h.Page(c)

	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.GetRooms(c.UserContext(), user.UserID, filter), http.StatusOK)
	})
}

// GetRoom returns one room of the caller.
func (h *RoomHandler) GetRoom(c *fiber.Ctx) error {
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}
	roomID := platform.ParamUUID(c, "roomId")
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.GetRoom(c.UserContext(), user.UserID, roomID), http.StatusOK)
	})
}

// GetMessages returns one page of a room, newest first.
func (h *RoomHandler) GetMessages(c *fiber.Ctx) error {
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}
	roomID := platform.ParamUUID(c, "roomId")
	page := h.Page(c)
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.GetMessages(c.UserContext(), user.UserID, roomID, page), http.StatusOK)
	})
}

func (h *RoomHandler) detail(c *fiber.Ctx, add bool) error {
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}
	kind := models.RoomDetailType(c.Params("detail"))
	if !kind.Valid() {
		return errors.HandleValidationError(c, "Unknown room detail", string(kind))
	}

	in := store.RoomDetailInput{
		Actor:  user.UserID,
		RoomID: platform.ParamUUID(c, "roomId"),
		Type:   kind,
		Add:    add,
	}
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.HandleRoomDetail(c.UserContext(), in), http.StatusOK)
	})
}

// AddDetail pins, disables or snoozes a room for the caller.
func (h *RoomHandler) AddDetail(c *fiber.Ctx) error {
	return h.detail(c, true)
}

// RemoveDetail undoes AddDetail.
func (h *RoomHandler) RemoveDetail(c *fiber.Ctx) error {
	return h.detail(c, false)
}

// SendMessage handles message creation
func (h *RoomHandler) SendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleInvalidRequestError(c, "Invalid request body")
	}
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}
	if req.ReceiverID == uuid.Nil {
		return errors.HandleValidationError(c, "receiverId is required")
	}

	in := store.NewMessage{
		SenderID:   user.UserID,
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
		Media:      req.Media,
	}
	if req.ParentID.Valid {
		in.ParentID = req.ParentID.UUID
	}
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.SendMessage(c.UserContext(), in), http.StatusCreated)
	})
}

// SearchMessages searches the caller's messages.
func (h *RoomHandler) SearchMessages(c *fiber.Ctx) error {
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}

	var filter catalog.MessagesFilter
	if err := platform.DecodeQuery(c, &filter); err != nil {
		return errors.HandleValidationError(c, "Invalid query parameters", err.Error())
	}
	filter.Page = h.Page(c)

	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.SearchMessages(c.UserContext(), user.UserID, filter), http.StatusOK)
	})
}

// DeleteMessage removes a message sent by the caller.
func (h *RoomHandler) DeleteMessage(c *fiber.Ctx) error {
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}
	messageID := platform.ParamUUID(c, "messageId")
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.DeleteMessage(c.UserContext(), user.UserID, messageID), http.StatusNoContent)
	})
}

func (h *RoomHandler) react(c *fiber.Ctx, add bool) error {
	var req ReactionRequest
	if add {
		if err := c.BodyParser(&req); err != nil {
			return errors.HandleInvalidRequestError(c, "Invalid request body")
		}
	}
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}

	in := store.MessageReactionInput{
		Actor:     user.UserID,
		MessageID: platform.ParamUUID(c, "messageId"),
		Content:   req.Content,
		Add:       add,
	}
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.HandleMessageReaction(c.UserContext(), in), http.StatusOK)
	})
}

// SetReaction sets or replaces the caller's reaction on a message.
func (h *RoomHandler) SetReaction(c *fiber.Ctx) error {
	return h.react(c, true)
}

// ClearReaction removes the caller's reaction.
func (h *RoomHandler) ClearReaction(c *fiber.Ctx) error {
	return h.react(c, false)
}
