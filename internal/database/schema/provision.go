// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package schema

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/qolzam/telar/apps/social/internal/pkg/log"
)

const (
	typeExistsSQL = `SELECT EXISTS (
	SELECT 1 FROM pg_type t
	JOIN pg_namespace n ON n.oid = t.typnamespace
	WHERE t.typname = $1 AND n.nspname = current_schema()
)`

	tableExistsSQL = `SELECT EXISTS (
	SELECT 1 FROM information_schema.tables
	WHERE table_schema = current_schema() AND table_name = $1
)`
)

// Provision creates the missing enums, tables and indexes of r and recreates
// its views, all inside one transaction. Running it twice is a no-op apart
// from the view refresh.
func Provision(ctx context.Context, db *sqlx.DB, r *Registry) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("schema: begin: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("schema: rollback: %v", rbErr)
			}
		}
	}()

	for _, e := range r.Enums {
		var exists bool
		if err = tx.GetContext(ctx, &exists, typeExistsSQL, e.Name); err != nil {
			return fmt.Errorf("schema: check type %s: %w", e.Name, err)
		}
		if exists {
			continue
		}
		if _, err = tx.ExecContext(ctx, e.DDL()); err != nil {
			return fmt.Errorf("schema: create type %s: %w", e.Name, err)
		}
		log.Info("schema: created type %s", e.Name)
	}

	for _, t := range r.Tables {
		var exists bool
		if err = tx.GetContext(ctx, &exists, tableExistsSQL, t.Name); err != nil {
			return fmt.Errorf("schema: check table %s: %w", t.Name, err)
		}
		if !exists {
			if _, err = tx.ExecContext(ctx, t.DDL()); err != nil {
				return fmt.Errorf("schema: create table %s: %w", t.Name, err)
			}
			log.Info("schema: created table %s", t.Name)
		}
		for _, stmt := range t.IndexDDL() {
			if _, err = tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("schema: index on %s: %w", t.Name, err)
			}
		}
	}

	for _, v := range r.Views {
		if _, err = tx.ExecContext(ctx, v.DDL()); err != nil {
			return fmt.Errorf("schema: view %s: %w", v.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("schema: commit: %w", err)
	}
	return nil
}
