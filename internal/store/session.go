// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package store is the data-access façade. A Session serves one request: it
// borrows a single pooled connection on first use and must be released exactly
// once. Sessions are not safe for concurrent use.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	dbi "github.com/qolzam/telar/apps/social/internal/database/interfaces"
	"github.com/qolzam/telar/apps/social/internal/database/observability"
	"github.com/qolzam/telar/apps/social/internal/database/postgres"
	"github.com/qolzam/telar/apps/social/internal/database/query"
	"github.com/qolzam/telar/apps/social/internal/database/schema"
	"github.com/qolzam/telar/apps/social/internal/pkg/log"
)

var now = time.Now

// Store is the process-wide entry point holding the pool and the compiler.
type Store struct {
	client   *postgres.Client
	compiler *query.Compiler
	metrics  *observability.Collector
}

// New creates a store over client validating statements against registry.
func New(client *postgres.Client, registry *schema.Registry) *Store {
	return &Store{client: client, compiler: query.NewCompiler(registry), metrics: observability.NewCollector()}
}

// TxStats reports the transaction outcomes of every session so far.
func (s *Store) TxStats() observability.Stats {
	return s.metrics.Stats()
}

// Session opens a request scoped session. No connection is taken until the
// first statement runs.
func (s *Store) Session() *Session {
	return &Session{client: s.client, compiler: s.compiler, metrics: s.metrics}
}

// executor is implemented by both *sqlx.Conn and *sqlx.Tx.
type executor interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

// Session owns one borrowed connection.
type Session struct {
	client   *postgres.Client
	compiler *query.Compiler
	metrics  *observability.Collector
	conn     *sqlx.Conn
	tx       *sqlx.Tx
	released bool
}

// Release returns the connection to the pool. Calling it twice returns
// ErrSessionReleased.
func (s *Session) Release() error {
	if s.released {
		return dbi.ErrSessionReleased
	}
	s.released = true
	if s.tx != nil {
		_ = s.tx.Rollback()
		s.tx = nil
	}
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *Session) executor(ctx context.Context) (executor, error) {
	if s.released {
		return nil, dbi.ErrSessionReleased
	}
	if s.tx != nil {
		return s.tx, nil
	}
	if s.conn == nil {
		conn, err := s.client.Conn(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", dbi.ErrConnectionFailed, err)
		}
		s.conn = conn
	}
	return s.conn, nil
}

// withTx runs fn inside a transaction on the session connection. Nested calls
// join the outer transaction.
func (s *Session) withTx(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if s.tx != nil {
		return fn(ctx)
	}
	if _, err := s.executor(ctx); err != nil {
		return err
	}

	tracked := s.metrics.Start(op)
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		tracked.Fail()
		return fmt.Errorf("store.%s: begin: %w", op, err)
	}
	s.tx = tx
	defer func() { s.tx = nil }()

	if err := fn(ctx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			tracked.Fail()
			log.ErrorWithContext(ctx, "store.%s: rollback: %v", op, rbErr)
			return fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
		}
		tracked.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		tracked.Fail()
		return fmt.Errorf("store.%s: commit: %w", op, err)
	}
	tracked.Commit()
	return nil
}

// fail logs err with the statement and wraps it as a failed result.
func fail[T any](ctx context.Context, op string, stmt query.Statement, err error) dbi.Result[T] {
	if query.IsConstructionError(err) {
		log.ErrorWithContext(ctx, "store.%s: %v", op, err)
		return dbi.Failed[T](fmt.Errorf("store.%s: %w", op, err))
	}
	log.ErrorWithContext(ctx, "store.%s: %v | sql: %s", op, err, stmt.SQL)
	return dbi.Failed[T](fmt.Errorf("store.%s: %w", op, dbi.MapError(err)))
}

// get runs stmt and scans a single row.
func get[T any](ctx context.Context, s *Session, op string, stmt query.Statement, err error) dbi.Result[T] {
	if err != nil {
		return fail[T](ctx, op, stmt, err)
	}
	ex, err := s.executor(ctx)
	if err != nil {
		return fail[T](ctx, op, stmt, err)
	}
	var out T
	if err := sqlx.GetContext(ctx, ex, &out, stmt.SQL, stmt.Args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbi.NotFound[T]()
		}
		return fail[T](ctx, op, stmt, err)
	}
	return dbi.Ok(out)
}

// list runs stmt and scans every row. No rows is an empty, non-nil slice.
func list[T any](ctx context.Context, s *Session, op string, stmt query.Statement, err error) dbi.Result[[]T] {
	if err != nil {
		return fail[[]T](ctx, op, stmt, err)
	}
	ex, err := s.executor(ctx)
	if err != nil {
		return fail[[]T](ctx, op, stmt, err)
	}
	out := []T{}
	if err := sqlx.SelectContext(ctx, ex, &out, stmt.SQL, stmt.Args...); err != nil {
		return fail[[]T](ctx, op, stmt, err)
	}
	return dbi.Ok(out)
}

// first narrows a list result to its first row.
func first[T any](r dbi.Result[[]T]) dbi.Result[T] {
	if !r.IsOK() {
		if r.IsNotFound() {
			return dbi.NotFound[T]()
		}
		return dbi.Failed[T](r.Err())
	}
	rows := r.Value()
	if len(rows) == 0 {
		return dbi.NotFound[T]()
	}
	return dbi.Ok(rows[0])
}

// exec runs stmt and returns the number of affected rows.
func (s *Session) exec(ctx context.Context, op string, stmt query.Statement, err error) dbi.Result[int64] {
	if err != nil {
		return fail[int64](ctx, op, stmt, err)
	}
	ex, err := s.executor(ctx)
	if err != nil {
		return fail[int64](ctx, op, stmt, err)
	}
	res, err := ex.ExecContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return fail[int64](ctx, op, stmt, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fail[int64](ctx, op, stmt, err)
	}
	return dbi.Ok(n)
}

// affected turns an exec result into a deletion flag, NotFound for zero rows.
func affected(r dbi.Result[int64]) dbi.Result[bool] {
	if !r.IsOK() {
		return dbi.Failed[bool](r.Err())
	}
	if r.Value() == 0 {
		return dbi.NotFound[bool]()
	}
	return dbi.Ok(true)
}

// txResult converts a transaction error into a result, keeping NotFound.
func txResult[T any](ctx context.Context, op string, v T, err error) dbi.Result[T] {
	if err == nil {
		return dbi.Ok(v)
	}
	if errors.Is(err, dbi.ErrNoDocuments) {
		return dbi.NotFound[T]()
	}
	if query.IsConstructionError(err) || errors.Is(err, dbi.ErrForbidden) {
		return dbi.Failed[T](err)
	}
	log.ErrorWithContext(ctx, "store.%s: %v", op, err)
	return dbi.Failed[T](err)
}
