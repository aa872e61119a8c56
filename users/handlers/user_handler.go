package handlers

import (
	"net/http"
	"net/mail"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	gopass "github.com/nbutton23/zxcvbn-go"
	"github.com/qolzam/telar/apps/social/internal/database/catalog"
	"github.com/qolzam/telar/apps/social/internal/pkg/content"
	"github.com/qolzam/telar/apps/social/internal/platform"
	"github.com/qolzam/telar/apps/social/internal/platform/errors"
	"github.com/qolzam/telar/apps/social/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const maxNameLength = 50

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// ValidUsername reports whether s, with an optional leading @, is a well
// formed username.
func ValidUsername(s string) bool {
	return usernamePattern.MatchString(strings.TrimPrefix(s, "@"))
}

// UserHandler handles profile and follow requests.
type UserHandler struct {
	*platform.BaseService
	// hashCost is the bcrypt cost of new passwords.
	hashCost int
}

// NewUserHandler creates a new UserHandler with injected dependencies
func NewUserHandler(base *platform.BaseService) *UserHandler {
	return &UserHandler{BaseService: base, hashCost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost, for tests.
func (h *UserHandler) WithHashCost(cost int) *UserHandler {
	h.hashCost = cost
	return h
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest is the body of PATCH /users/me.
type UpdateUserRequest struct {
	Name       *string `json:"name"`
	Bio        *string `json:"bio"`
	Location   *string `json:"location"`
	Website    *string `json:"website"`
	Image      *string `json:"image"`
	Background *string `json:"background"`
}

// UserQuery holds the pagination part of GET /users.
type UserQuery struct {
	Cursor string `schema:"cursor"`
	Size   int    `schema:"size"`
}

func validateNewUser(req *CreateUserRequest) string {
	req.Name = strings.TrimSpace(req.Name)
	req.Username = strings.TrimPrefix(strings.TrimSpace(req.Username), "@")
	req.Email = strings.TrimSpace(req.Email)

	switch {
	case req.Name == "":
		return "Name is required"
	case len([]rune(req.Name)) > maxNameLength:
		return "Name is too long"
	case !ValidUsername(req.Username):
		return "Username must be 3 to 20 letters, digits or underscores"
	case req.Password == "":
		return "Password is required"
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return "Email is not valid"
	}
	passStrength := gopass.PasswordStrength(req.Password, []string{req.Username, req.Email, req.Name})
	if passStrength.Score < 3 || passStrength.Entropy < 37 {
		return "Password is not strong enough!"
	}
	return ""
}

// CreateUser registers a user with a hashed password.
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleInvalidRequestError(c, "Invalid request body")
	}
	if msg := validateNewUser(&req); msg != "" {
		return errors.HandleValidationError(c, msg)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.hashCost)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}

	in := store.NewUser{
		Name:         req.Name,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
	}
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.CreateUser(c.UserContext(), in), http.StatusCreated)
	})
}

// QueryUsers searches profiles with cursor pagination.
func (h *UserHandler) QueryUsers(c *fiber.Ctx) error {
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}

	var filter catalog.UsersFilter
	var page UserQuery
	if err := platform.DecodeQuery(c, &filter); err != nil {
		return errors.HandleValidationError(c, "Invalid query parameters", err.Error())
	}
	if err := platform.DecodeQuery(c, &page); err != nil {
		return errors.HandleValidationError(c, "Invalid query parameters", err.Error())
	}
	cursor, err := store.ParseCursor(page.Cursor)
	if err != nil {
		return errors.HandleUUIDError(c, "cursor")
	}

	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.GetUserList(c.UserContext(), user.UserID, filter, cursor, h.PageSize(page.Size)), http.StatusOK)
	})
}

// GetProfile returns the profile of :userId as seen by the caller.
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}
	target := platform.ParamUUID(c, "userId")
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.GetAdvancedUser(c.UserContext(), user.UserID, target), http.StatusOK)
	})
}

// GetProfileByName resolves :username and returns the profile.
func (h *UserHandler) GetProfileByName(c *fiber.Ctx) error {
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}
	return h.WithSession(c, func(sess *store.Session) error {
		found := sess.GetUserByName(c.UserContext(), c.Params("username"))
		if !found.IsOK() {
			return errors.HandleServiceError(c, found.Err())
		}
		return platform.Respond(c, sess.GetAdvancedUser(c.UserContext(), user.UserID, found.Value().ID), http.StatusOK)
	})
}

// GetMe returns the caller's own row.
func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.GetUser(c.UserContext(), user.UserID), http.StatusOK)
	})
}

// UpdateMe changes the caller's profile fields.
func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.HandleInvalidRequestError(c, "Invalid request body")
	}
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || len([]rune(name)) > maxNameLength {
			return errors.HandleValidationError(c, "Name must be 1 to 50 characters")
		}
		req.Name = &name
	}
	if req.Website != nil {
		site, err := content.NormalizeWebsite(*req.Website)
		if err != nil {
			return errors.HandleValidationError(c, "Website is not valid", err.Error())
		}
		req.Website = &site
	}

	patch := store.UserPatch{
		Name:       req.Name,
		Bio:        req.Bio,
		Location:   req.Location,
		Website:    req.Website,
		Image:      req.Image,
		Background: req.Background,
	}
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.UpdateUser(c.UserContext(), user.UserID, patch), http.StatusOK)
	})
}

// DeleteMe removes the caller and everything they own.
func (h *UserHandler) DeleteMe(c *fiber.Ctx) error {
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.DeleteUser(c.UserContext(), user.UserID), http.StatusNoContent)
	})
}

func (h *UserHandler) follow(c *fiber.Ctx, add bool) error {
	user, ok := platform.CurrentUser(c)
	if !ok {
		return errors.HandleUserContextError(c, "Invalid user context")
	}
	target := platform.ParamUUID(c, "userId")
	return h.WithSession(c, func(sess *store.Session) error {
		return platform.Respond(c, sess.HandleFollow(c.UserContext(), user.UserID, target, add), http.StatusOK)
	})
}

// Follow makes the caller follow :userId.
func (h *UserHandler) Follow(c *fiber.Ctx) error {
	return h.follow(c, true)
}

// Unfollow undoes Follow.
func (h *UserHandler) Unfollow(c *fiber.Ctx) error {
	return h.follow(c, false)
}
