// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package catalog holds the named queries whose result shape cannot be
// expressed as a flat filter: each starts from a hand-written template over
// the advanced views with the viewer id bound as $1 and appends compiled
// filters from $2.
package catalog

import (
	"strings"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/telar/apps/social/internal/database/query"
)

// build appends the compiled WHERE, the default order followed by the caller
// order, and the page to template.
func build(template string, sessionID uuid.UUID, where query.Groups, defaults, order []query.Order, page query.Page) (query.Statement, error) {
	if sessionID == uuid.Nil {
		return query.Statement{}, query.Invalid("session id is required")
	}

	clause, args, err := query.CompileWhere(where, 2)
	if err != nil {
		return query.Statement{}, err
	}

	terms := make([]query.Order, 0, len(defaults)+len(order))
	terms = append(terms, defaults...)
	terms = append(terms, order...)
	orderBy, err := query.CompileOrder(terms)
	if err != nil {
		return query.Statement{}, err
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(template))
	sb.WriteString("\n")
	sb.WriteString(clause)
	if orderBy != "" {
		sb.WriteString(orderBy)
		sb.WriteString("\n")
	}
	sb.WriteString(page.Clause())

	return query.Statement{
		SQL:  strings.TrimSpace(sb.String()),
		Args: append([]interface{}{sessionID.String()}, args...),
	}, nil
}

// contains matches a jsonb id array holding id.
func contains(alias, field string, id uuid.UUID) query.Where {
	return query.Cond(field, query.OpContains, query.Contains(id)).On(alias)
}

// search matches any of fields against the substring q.
func search(alias, q string, fields ...string) query.Group {
	pattern := query.Pattern(q)
	group := make(query.Group, 0, len(fields))
	for i, f := range fields {
		w := query.Cond(f, query.OpILike, pattern).On(alias)
		if i > 0 {
			w = w.Or()
		}
		group = append(group, w)
	}
	return group
}
