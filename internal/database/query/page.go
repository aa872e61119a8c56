// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package query

import (
	"fmt"
	"math"
	"strings"
)

// MaxPageIndex bounds the page index accepted from clients.
const MaxPageIndex = 1_000_000

// Page is offset pagination where Offset is a page index, not a row count.
type Page struct {
	Limit  int
	Offset int
}

// RowOffset returns the number of rows skipped, saturating at math.MaxInt.
func (p Page) RowOffset() int {
	if p.Limit <= 0 || p.Offset <= 0 {
		return 0
	}
	if p.Offset > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return p.Limit * p.Offset
}

// Clause renders LIMIT/OFFSET, or an empty string without a limit.
func (p Page) Clause() string {
	if p.Limit <= 0 {
		return ""
	}
	if off := p.RowOffset(); off > 0 {
		return fmt.Sprintf("LIMIT %d\nOFFSET %d", p.Limit, off)
	}
	return fmt.Sprintf("LIMIT %d", p.Limit)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Pattern builds a substring match for like/ilike, undefined for an empty
// search so the condition drops out.
func Pattern(search string) Param {
	search = strings.TrimSpace(search)
	if search == "" {
		return Undefined()
	}
	return String("%" + likeEscaper.Replace(search) + "%")
}
