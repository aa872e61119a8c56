package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/qolzam/telar/apps/social/internal/cache"
	"github.com/qolzam/telar/apps/social/internal/database/postgres"
	"github.com/qolzam/telar/apps/social/internal/database/schema"
	platformconfig "github.com/qolzam/telar/apps/social/internal/platform/config"
	"github.com/qolzam/telar/apps/social/internal/store"
	"github.com/qolzam/telar/apps/social/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *platformconfig.Config {
	pub, _ := testutil.GenerateECDSAKeyPairPEM(t)
	cfg, err := platformconfig.LoadFromMap(map[string]string{"JWT_PUBLIC_KEY": pub})
	require.NoError(t, err)
	return cfg
}

func mockClient(t *testing.T) (*postgres.Client, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	return postgres.NewClientFromDB(sqlx.NewDb(db, "postgres"), "public"), mock
}

func TestRun_ClosesDatabaseOnStartupFailure(t *testing.T) {
	client, mock := mockClient(t)
	mock.ExpectBegin().WillReturnError(errors.New("connection reset"))
	mock.ExpectClose()

	err := run(context.Background(), testConfig(t), func(context.Context, *platformconfig.Config) (*postgres.Client, error) {
		return client, nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to provision schema")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_ConnectFailure(t *testing.T) {
	err := run(context.Background(), testConfig(t), func(context.Context, *platformconfig.Config) (*postgres.Client, error) {
		return nil, errors.New("dial tcp: connection refused")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create postgres client")
}

func TestNewApp_Health(t *testing.T) {
	cfg := testConfig(t)
	client, mock := mockClient(t)
	cacheService, err := cache.NewFromConfig(context.Background(), cfg.Cache)
	require.NoError(t, err)
	app := newApp(cfg, client, store.New(client, schema.Default()), cacheService)

	mock.ExpectPing()
	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.NotContains(t, body, "cache")

	mock.ExpectPing().WillReturnError(errors.New("connection reset"))
	resp, err = app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
