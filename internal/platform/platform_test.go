package platform

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	uuid "github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbi "github.com/qolzam/telar/apps/social/internal/database/interfaces"
	"github.com/qolzam/telar/apps/social/internal/database/query"
	platformconfig "github.com/qolzam/telar/apps/social/internal/platform/config"
	"github.com/qolzam/telar/apps/social/internal/types"
)

func newBase() *BaseService {
	return NewBaseService(nil, nil, &platformconfig.Config{
		Pagination: platformconfig.PaginationConfig{DefaultSize: 10, MaxSize: 50},
	})
}

func TestBaseService_PageSize(t *testing.T) {
	base := newBase()
	assert.Equal(t, 10, base.PageSize(0))
	assert.Equal(t, 10, base.PageSize(-3))
	assert.Equal(t, 25, base.PageSize(25))
	assert.Equal(t, 50, base.PageSize(500))
}

func TestBaseService_Page(t *testing.T) {
	base := newBase()
	app := fiber.New()
	var got query.Page
	app.Get("/", func(c *fiber.Ctx) error {
		got = base.Page(c)
		return c.SendStatus(http.StatusOK)
	})

	_, err := app.Test(httptest.NewRequest("GET", "/?limit=80&page=2", nil))
	require.NoError(t, err)
	assert.Equal(t, query.Page{Limit: 50, Offset: 2}, got)

	_, err = app.Test(httptest.NewRequest("GET", "/?page=-1", nil))
	require.NoError(t, err)
	assert.Equal(t, query.Page{Limit: 10, Offset: 0}, got)

	_, err = app.Test(httptest.NewRequest("GET", "/?limit=50&page=92233720368547759", nil))
	require.NoError(t, err)
	assert.Equal(t, query.Page{Limit: 50, Offset: query.MaxPageIndex}, got)
	assert.Positive(t, got.RowOffset())
}

type sample struct {
	User  uuid.UUID `schema:"user"`
	Query string    `schema:"q"`
	Media bool      `schema:"media"`
}

func TestDecodeQuery(t *testing.T) {
	app := fiber.New()
	var got sample
	var decodeErr error
	app.Get("/", func(c *fiber.Ctx) error {
		got = sample{}
		decodeErr = DecodeQuery(c, &got)
		return nil
	})
	id := uuid.Must(uuid.NewV4())

	_, err := app.Test(httptest.NewRequest("GET", "/?user="+id.String()+"&q=go&media=true&other=1", nil))
	require.NoError(t, err)
	require.NoError(t, decodeErr)
	assert.Equal(t, sample{User: id, Query: "go", Media: true}, got)

	_, err = app.Test(httptest.NewRequest("GET", "/?user=nope", nil))
	require.NoError(t, err)
	assert.Error(t, decodeErr)
}

func TestCurrentUser(t *testing.T) {
	app := fiber.New()
	id := uuid.Must(uuid.NewV4())
	app.Get("/set", func(c *fiber.Ctx) error {
		c.Locals(types.UserCtxName, types.UserContext{UserID: id})
		user, ok := CurrentUser(c)
		if !ok || user.UserID != id {
			return c.SendStatus(http.StatusUnauthorized)
		}
		return c.SendStatus(http.StatusOK)
	})
	app.Get("/unset", func(c *fiber.Ctx) error {
		if _, ok := CurrentUser(c); ok {
			return c.SendStatus(http.StatusOK)
		}
		return c.SendStatus(http.StatusUnauthorized)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/set", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/unset", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRespond(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", func(c *fiber.Ctx) error {
		return Respond(c, dbi.Ok("hi"), http.StatusCreated)
	})
	app.Get("/gone", func(c *fiber.Ctx) error {
		return Respond(c, dbi.Ok(true), http.StatusNoContent)
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return Respond(c, dbi.NotFound[string](), http.StatusOK)
	})
	app.Get("/invalid", func(c *fiber.Ctx) error {
		return Respond(c, dbi.Failed[string](query.Invalid("bad filter")), http.StatusOK)
	})

	for path, want := range map[string]int{
		"/ok":      http.StatusCreated,
		"/gone":    http.StatusNoContent,
		"/missing": http.StatusNotFound,
		"/invalid": http.StatusBadRequest,
	} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, path)
	}
}
