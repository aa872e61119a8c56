package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/telar/apps/social/internal/platform"
	"github.com/qolzam/telar/apps/social/internal/platform/errors"
	"github.com/qolzam/telar/apps/social/internal/store"
	"github.com/qolzam/telar/apps/social/models"
)

// PostHandler handles all post-related HTTP requests
type PostHandler struct {
	*platform.BaseService
}

// NewPostHandler creates a new PostHandler with injected dependencies
func NewPostHandler(base *platform.BaseService) *PostHandler {
	return &PostHandler{BaseService: base}
}

// CreatePostRequest is the body of POST /posts.
type CreatePostRequest struct {
	Text       string        `json:"text"`
	Images     []string      `json:"images"`
	Video      string        `json:"video"`
	ParentID   uuid.NullUUID `json:"parentId"`
	OriginalID uuid.NullUUID `json:"originalId"`
}

// UpdatePostRequest is the body of PUT /posts/:postId.
type UpdatePostRequest struct {
	Text   *string   `json:"text"`
	Images *[]string `json:"images"`
	Pinned *bool     `json:"pinned"`
}

// PostQuery holds the query string of GET /posts.
type PostQuery struct {
	Cursor    string    `schema:"cursor"`
	Size      int       `schema:"size"`
	User      uuid.UUID `schema:"user"`
	Parent    uuid.UUID `schema:"parent"`
	TopLevel  bool      `schema:"topLevel"`
	Following bool      `schema:"following"`
	LikedBy   uuid.UUID `schema:"likedBy"`
	Query     string    `schema:"q"`
	Media     bool      `schema:"media"`
}

func nullID(id uuid.NullUUID) uuid.UUID {
	if !id.Valid {
		return uuid.Nil
	}
	return id.UUID
}

// QueryPosts returns one cursor page of the feed.
func (h *PostHandler) QueryPosts(c *fiber.Ctx) error {
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}

	var q PostQuery
	if err := platform.DecodeQuery(c, &q); err != nil {
		return errors.HandleValidationError(c, "Invalid query parameters", err.Error())
	}
	cursor, err := store.ParseCursor(q.Cursor)
	if err != nil {
		return errors.HandleUUIDError(c, "cursor")
	}

	filter := store.PostFilter{
		UserID:    q.User,
		ParentID:  q.Parent,
		TopLevel:  q.TopLevel,
		Following: q.Following,
		LikedBy:   q.LikedBy,
		Query:     q.Query,
		MediaOnly: q.Media,
	}
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.GetPostList(c.UserContext(), user.UserID, filter, cursor, h.PageSize(q.Size)), http.StatusOK)
	})
}

// GetPost returns one advanced post.
func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	postID := platform.ParamUUID(c, "postId")
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.GetPost(c.UserContext(), postID), http.StatusOK)
	})
}

// CreatePost handles post creation
func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleInvalidRequestError(c, "Invalid request body")
	}
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}

	in := store.NewPost{
		UserID:     user.UserID,
		ParentID:   nullID(req.ParentID),
		OriginalID: nullID(req.OriginalID),
		Text:       req.Text,
		Images:     req.Images,
		Video:      strings.TrimSpace(req.Video),
	}
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.CreatePost(c.UserContext(), in), http.StatusCreated)
	})
}

// UpdatePost changes a post owned by the caller.
func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	var req UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleInvalidRequestError(c, "Invalid request body")
	}
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}

	postID := platform.ParamUUID(c, "postId")
	patch := store.PostPatch{Text: req.Text, Images: req.Images, Pinned: req.Pinned}
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.UpdatePost(c.UserContext(), user.UserID, postID, patch), http.StatusOK)
	})
}

// DeletePost removes a post owned by the caller.
func (h *PostHandler) DeletePost(c *fiber.Ctx) error {
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}
	postID := platform.ParamUUID(c, "postId")
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.DeletePost(c.UserContext(), user.UserID, postID), http.StatusNoContent)
	})
}

func (h *PostHandler) react(c *fiber.Ctx, add bool) error {
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}
	kind := models.ReactionType(c.Params("type"))
	if !kind.Valid() {
		return errors.HandleValidationError(c, "Unknown reaction type", string(kind))
	}
	var comment uuid.UUID
	if raw := c.Query("comment"); raw != "" {
		id, err := uuid.FromString(raw)
		if err != nil {
			return errors.HandleUUIDError(c, "comment")
		}
		comment = id
	}

	in := store.ReactionInput{
		Actor:     user.UserID,
		PostID:    platform.ParamUUID(c, "postId"),
		CommentID: comment,
		Type:      kind,
		Add:       add,
	}
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.HandleReaction(c.UserContext(), in), http.StatusOK)
	})
}

// AddReaction likes, reposts or bookmarks a post.
func (h *PostHandler) AddReaction(c *fiber.Ctx) error {
	return h.react(c, true)
}

// RemoveReaction undoes AddReaction.
func (h *PostHandler) RemoveReaction(c *fiber.Ctx) error {
	return h.react(c, false)
}

// GetReactions lists the reactions of one type on a post.
func (h *PostHandler) GetReactions(c *fiber.Ctx) error {
	kind := models.ReactionType(c.Params("type"))
	if !kind.Valid() {
		return errors.HandleValidationError(c, "Unknown reaction type", string(kind))
	}
	postID := platform.ParamUUID(c, "postId")
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.GetReactionList(c.UserContext(), postID, kind), http.StatusOK)
	})
}

// GetViews returns the counters of a post.
func (h *PostHandler) GetViews(c *fiber.Ctx) error {
	postID := platform.ParamUUID(c, "postId")
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.GetViews(c.UserContext(), postID), http.StatusOK)
	})
}

// IncrementViews bumps one counter of a post.
func (h *PostHandler) IncrementViews(c *fiber.Ctx) error {
	postID := platform.ParamUUID(c, "postId")
	field := models.ViewField(c.Params("field"))
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.IncrementViews(c.UserContext(), postID, field), http.StatusOK)
	})
}
