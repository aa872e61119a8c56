// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package platform

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/qolzam/telar/apps/social/internal/cache"
	dbi "github.com/qolzam/telar/apps/social/internal/database/interfaces"
	"github.com/qolzam/telar/apps/social/internal/database/query"
	"github.com/qolzam/telar/apps/social/internal/pkg/log"
	platformconfig "github.com/qolzam/telar/apps/social/internal/platform/config"
	"github.com/qolzam/telar/apps/social/internal/platform/errors"
	"github.com/qolzam/telar/apps/social/internal/store"
)

// BaseService provides common functionality for all feature handlers
type BaseService struct {
	Store      *store.Store
	Cache      *cache.GenericCacheService
	pagination platformconfig.PaginationConfig
}

// NewBaseService creates a new base service instance from platform config
func NewBaseService(st *store.Store, cacheService *cache.GenericCacheService, cfg *platformconfig.Config) *BaseService {
	pagination := platformconfig.PaginationConfig{DefaultSize: store.DefaultPageSize, MaxSize: store.MaxPageSize}
	if cfg != nil {
		pagination = cfg.Pagination
	}
	return &BaseService{
		Store:      st,
		Cache:      cacheService,
		pagination: pagination,
	}
}

// WithSession runs fn on a fresh store session and releases it afterwards.
func (s *BaseService) WithSession(c *fiber.Ctx, fn func(sess *store.Session) error) error {
	sess := s.Store.Session()
	defer func() {
		if err := sess.Release(); err != nil {
			log.WarnWithContext(c.UserContext(), "release session: %v", err)
		}
	}()
	return fn(sess)
}

// PageSize clamps a client supplied page size.
func (s *BaseService) PageSize(requested int) int {
	if requested <= 0 {
		return s.pagination.DefaultSize
	}
	if requested > s.pagination.MaxSize {
		return s.pagination.MaxSize
	}
	return requested
}

// Page reads the limit and page query parameters.
func (s *BaseService) Page(c *fiber.Ctx) query.Page {
	page := c.QueryInt("page", 0)
	if page < 0 {
		page = 0
	}
	if page > query.MaxPageIndex {
		page = query.MaxPageIndex
	}
	return query.Page{Limit: s.PageSize(c.QueryInt("limit", 0)), Offset: page}
}

// Respond writes an Ok result with status and every other result through
// HandleServiceError.
func Respond[T any](c *fiber.Ctx, r dbi.Result[T], status int) error {
	if r.IsOK() {
		if status == http.StatusNoContent {
			return c.SendStatus(status)
		}
		return c.Status(status).JSON(r.Value())
	}
	return errors.HandleServiceError(c, r.Err())
}
