package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	dbi "github.com/qolzam/telar/apps/social/internal/database/interfaces"
	"github.com/qolzam/telar/apps/social/internal/pkg/log"
	"github.com/qolzam/telar/apps/social/internal/platform"
	"github.com/qolzam/telar/apps/social/internal/platform/errors"
	"github.com/qolzam/telar/apps/social/internal/store"
	"github.com/qolzam/telar/apps/social/models"
)

// HashtagHandler serves trends and hashtag search.
type HashtagHandler struct {
	*platform.BaseService
	trendsTTL time.Duration
}

// NewHashtagHandler creates a new HashtagHandler. Trends are cached for
// trendsTTL when the cache is enabled.
func NewHashtagHandler(base *platform.BaseService, trendsTTL time.Duration) *HashtagHandler {
	return &HashtagHandler{BaseService: base, trendsTTL: trendsTTL}
}

func trendsKey(limit int) string {
	return fmt.Sprintf("hashtags:trends:%d", limit)
}

// cached serves key from the cache when possible and otherwise stores the
// result of load for trendsTTL.
func (h *HashtagHandler) cached(c *fiber.Ctx, key string, load func(sess *store.Session) dbi.Result[[]models.Hashtag]) error {
	ctx := c.UserContext()
	if h.Cache.IsEnabled() {
		var hit []models.Hashtag
		if err := h.Cache.GetCached(ctx, key, &hit); err == nil {
			return c.JSON(hit)
		}
	}

	return h.WithSession(c, func(sess *store.Session) error {
		r := load(sess)
		if r.IsOK() && h.Cache.IsEnabled() {
			if err := h.Cache.CacheData(ctx, key, r.Value(), h.trendsTTL); err != nil {
				log.WarnWithContext(ctx, "cache %s: %v", key, err)
			}
		}
		return platform.Respond(c, r, http.StatusOK)
	})
}

// GetTrends returns the heaviest hashtags.
func (h *HashtagHandler) GetTrends(c *fiber.Ctx) error {
	limit := store.ValidateLimit(c.QueryInt("limit", 0))
	return h.cached(c, trendsKey(limit), func(sess *store.Session) dbi.Result[[]models.Hashtag] {
		return sess.GetTrends(c.UserContext(), limit)
	})
}

// SearchHashtags finds hashtags whose title contains q.
func (h *HashtagHandler) SearchHashtags(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	term := strings.ToLower(strings.TrimPrefix(q, "#"))
	if term == "" {
		return errors.HandleValidationError(c, "q is required")
	}
	limit := store.ValidateLimit(c.QueryInt("limit", 0))
	key := h.Cache.GenerateHashKey("hashtags:search", map[string]interface{}{"q": term, "limit": limit})
	return h.cached(c, key, func(sess *store.Session) dbi.Result[[]models.Hashtag] {
		return sess.SearchHashtags(c.UserContext(), q, limit)
	})
}
