// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package store

import (
	uuid "github.com/gofrs/uuid"
	dbi "github.com/qolzam/telar/apps/social/internal/database/interfaces"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ValidateLimit validates and normalizes the limit value
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// Cursor is the primary key of the last row of the previous page; Nil starts
// from the beginning.
type Cursor = uuid.UUID

// ParseCursor reads a cursor from its string form. An empty string is the
// first page.
func ParseCursor(s string) (Cursor, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	return uuid.FromString(s)
}

// paginate slices the sorted rows after cursor. NextCursor is the id of the
// last returned row and is empty when nothing follows it. A cursor that is not
// in rows yields an empty page.
func paginate[T any](rows []T, id func(T) uuid.UUID, cursor Cursor, size int) dbi.CursorPaginationResult[T] {
	size = ValidateLimit(size)
	page := dbi.CursorPaginationResult[T]{Data: []T{}, Limit: size}

	start := 0
	if cursor != uuid.Nil {
		start = -1
		for i, row := range rows {
			if id(row) == cursor {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return page
		}
	}

	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	page.Data = append(page.Data, rows[start:end]...)
	if end < len(rows) && end > start {
		page.HasNext = true
		page.NextCursor = id(rows[end-1]).String()
	}
	return page
}

// cursorPage applies paginate to a list result.
func cursorPage[T any](r dbi.Result[[]T], id func(T) uuid.UUID, cursor Cursor, size int) dbi.Result[dbi.CursorPaginationResult[T]] {
	return dbi.Map(r, func(rows []T) dbi.CursorPaginationResult[T] {
		return paginate(rows, id, cursor, size)
	})
}
