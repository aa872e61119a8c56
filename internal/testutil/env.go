package testutil

import (
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	uuid "github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/qolzam/telar/apps/social/internal/cache"
	"github.com/qolzam/telar/apps/social/internal/database/postgres"
	"github.com/qolzam/telar/apps/social/internal/database/schema"
	"github.com/qolzam/telar/apps/social/internal/platform"
	platformconfig "github.com/qolzam/telar/apps/social/internal/platform/config"
	"github.com/qolzam/telar/apps/social/internal/store"
	"github.com/qolzam/telar/apps/social/internal/types"
	"github.com/stretchr/testify/require"
)

// Env is a feature test harness: a store over sqlmock, a platform config with
// a fresh signing key and a fiber app to register routes on.
type Env struct {
	t          *testing.T
	Mock       sqlmock.Sqlmock
	Store      *store.Store
	Base       *platform.BaseService
	Config     *platformconfig.Config
	App        *fiber.App
	privateKey string
}

// NewEnv builds an Env. The cache service is optional.
func NewEnv(t *testing.T, cacheService *cache.GenericCacheService) *Env {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(mockDB, "postgres")
	t.Cleanup(func() { _ = db.Close() })

	pubPEM, privPEM := GenerateECDSAKeyPairPEM(t)
	cfg, err := platformconfig.LoadFromMap(map[string]string{"JWT_PUBLIC_KEY": pubPEM})
	require.NoError(t, err)

	st := store.New(postgres.NewClientFromDB(db, "public"), schema.Default())
	return &Env{
		t:          t,
		Mock:       mock,
		Store:      st,
		Base:       platform.NewBaseService(st, cacheService, cfg),
		Config:     cfg,
		App:        fiber.New(),
		privateKey: privPEM,
	}
}

// Token signs an access token for id.
func (e *Env) Token(id uuid.UUID) string {
	return SignToken(e.t, e.privateKey, e.Config.JWT.ClaimKey, types.UserContext{
		UserID:     id,
		Username:   "tester",
		SystemRole: types.UserRole,
	})
}

// Request starts an authenticated request as user.
func (e *Env) Request(user uuid.UUID, method, path string, body interface{}) *Request {
	return NewHTTPHelper(e.t, e.App).NewRequest(method, path, body).WithJWTAuth(e.Token(user))
}

// ExpectationsWereMet fails the test on unmet sqlmock expectations.
func (e *Env) ExpectationsWereMet() {
	require.NoError(e.t, e.Mock.ExpectationsWereMet())
}

// SQL quotes s for the sqlmock regexp matcher.
func SQL(s string) string {
	return regexp.QuoteMeta(s)
}
