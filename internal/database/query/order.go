// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package query

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Order describes one ORDER BY term.
type Order struct {
	Field      string
	TableAlias string
	// Operator is empty, ->> or #>>; SubField is then the literal key or path.
	Operator Operator
	SubField string
	// Func wraps the expression, e.g. "lower".
	Func string
	By   Direction
}

// OrderBy is shorthand for a plain column order.
func OrderBy(field string, by Direction) Order {
	return Order{Field: field, By: by}
}

// On sets the table alias.
func (o Order) On(alias string) Order {
	o.TableAlias = alias
	return o
}

// CompileOrder renders the ORDER BY clause, or an empty string for no terms.
func CompileOrder(orders []Order) (string, error) {
	if len(orders) == 0 {
		return "", nil
	}
	terms := make([]string, 0, len(orders))
	for _, o := range orders {
		term, err := compileOrderTerm(o)
		if err != nil {
			return "", err
		}
		terms = append(terms, term)
	}
	return "ORDER BY " + strings.Join(terms, ", "), nil
}

func compileOrderTerm(o Order) (string, error) {
	expr, err := column(o.TableAlias, o.Field)
	if err != nil {
		return "", err
	}

	switch o.Operator.normalize() {
	case OpEq:
		// no operator
	case OpJSONField:
		if o.SubField == "" {
			return "", detail(ErrInvalidOrder, "->> requires a sub field on %s", o.Field)
		}
		expr = fmt.Sprintf("%s ->> %s", expr, pq.QuoteLiteral(o.SubField))
	case OpJSONPath:
		if o.SubField == "" {
			return "", detail(ErrInvalidOrder, "#>> requires a sub field on %s", o.Field)
		}
		path := "{" + strings.Join(strings.Split(o.SubField, "."), ",") + "}"
		expr = fmt.Sprintf("%s #>> %s", expr, pq.QuoteLiteral(path))
	default:
		return "", detail(ErrInvalidOrder, "operator %q on %s", o.Operator, o.Field)
	}

	if o.Func != "" {
		if !identifierPattern.MatchString(o.Func) {
			return "", detail(ErrInvalidOrder, "function %q", o.Func)
		}
		expr = fmt.Sprintf("%s(%s)", o.Func, expr)
	}

	by := Direction(strings.ToUpper(string(o.By)))
	switch by {
	case "":
		by = Asc
	case Asc, Desc:
	default:
		return "", detail(ErrInvalidOrder, "direction %q", o.By)
	}
	return expr + " " + string(by), nil
}
