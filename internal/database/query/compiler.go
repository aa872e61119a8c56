// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package query

import (
	"fmt"
	"strings"
)

// Statement is compiled SQL text plus its positional arguments.
type Statement struct {
	SQL  string
	Args []interface{}
}

// Select describes a SELECT statement.
type Select struct {
	Table     string
	Fields    []string
	Where     Groups
	Order     []Order
	Limit     int
	Offset    int
	CountOnly bool
	// Lock appends FOR UPDATE. Ignored for count queries.
	Lock bool
}

// Insert describes an INSERT ... RETURNING * statement.
type Insert struct {
	Table  string
	Fields []string
	Values []Param
	// OnConflictDoNothing makes a duplicate insert return no row.
	OnConflictDoNothing bool
}

// Update describes an UPDATE statement.
type Update struct {
	Table  string
	Fields []string
	Values []Param
	Where  Groups
	// AllowAll permits an update without any condition.
	AllowAll bool
}

// Delete describes a DELETE statement.
type Delete struct {
	Table string
	Where Groups
	// AllowAll permits a delete without any condition.
	AllowAll bool
}

// CompileSelect compiles a SELECT statement.
func CompileSelect(s Select) (Statement, error) {
	if strings.TrimSpace(s.Table) == "" {
		return Statement{}, detail(ErrInvalidIdentifier, "empty table")
	}

	projection := "*"
	if s.CountOnly {
		projection = "count(*)"
	} else if len(s.Fields) > 0 {
		cols := make([]string, len(s.Fields))
		for i, f := range s.Fields {
			col, err := column("", f)
			if err != nil {
				return Statement{}, err
			}
			cols[i] = col
		}
		projection = strings.Join(cols, ", ")
	}

	where, args, err := CompileWhere(s.Where, 1)
	if err != nil {
		return Statement{}, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s\n", projection, s.Table)
	sb.WriteString(where)

	if !s.CountOnly {
		order, err := CompileOrder(s.Order)
		if err != nil {
			return Statement{}, err
		}
		if order != "" {
			sb.WriteString(order)
			sb.WriteString("\n")
		}
		if s.Limit > 0 {
			fmt.Fprintf(&sb, "LIMIT %d\n", s.Limit)
		}
		if s.Offset > 0 {
			fmt.Fprintf(&sb, "OFFSET %d\n", s.Offset)
		}
		if s.Lock {
			sb.WriteString("FOR UPDATE\n")
		}
	}

	return Statement{SQL: strings.TrimSpace(sb.String()), Args: args}, nil
}

// CompileInsert compiles an INSERT statement returning the inserted row.
func CompileInsert(s Insert) (Statement, error) {
	if len(s.Fields) > 0 && len(s.Fields) != len(s.Values) {
		return Statement{}, detail(ErrFieldValueMismatch, "%d fields, %d values", len(s.Fields), len(s.Values))
	}
	if len(s.Values) == 0 {
		return Statement{}, detail(ErrEmptyInsert, "%s", s.Table)
	}
	if strings.TrimSpace(s.Table) == "" {
		return Statement{}, detail(ErrInvalidIdentifier, "empty table")
	}

	placeholders := make([]string, len(s.Values))
	args := make([]interface{}, len(s.Values))
	for i, v := range s.Values {
		arg, err := v.Arg()
		if err != nil {
			return Statement{}, valueError(err, s.Fields, i)
		}
		args[i] = arg
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s", s.Table)
	if len(s.Fields) > 0 {
		cols := make([]string, len(s.Fields))
		for i, f := range s.Fields {
			col, err := column("", f)
			if err != nil {
				return Statement{}, err
			}
			cols[i] = col
		}
		fmt.Fprintf(&sb, " (%s)", strings.Join(cols, ", "))
	}
	fmt.Fprintf(&sb, "\nVALUES (%s)\n", strings.Join(placeholders, ", "))
	if s.OnConflictDoNothing {
		sb.WriteString("ON CONFLICT DO NOTHING\n")
	}
	sb.WriteString("RETURNING *")

	return Statement{SQL: sb.String(), Args: args}, nil
}

// CompileUpdate compiles an UPDATE statement. WHERE placeholders continue
// after the SET placeholders.
func CompileUpdate(s Update) (Statement, error) {
	if len(s.Fields) == 0 {
		return Statement{}, detail(ErrEmptyUpdate, "%s", s.Table)
	}
	if len(s.Fields) != len(s.Values) {
		return Statement{}, detail(ErrFieldValueMismatch, "%d fields, %d values", len(s.Fields), len(s.Values))
	}
	if !s.AllowAll && s.Where.Empty() {
		return Statement{}, detail(ErrEmptyWhere, "update %s", s.Table)
	}
	if strings.TrimSpace(s.Table) == "" {
		return Statement{}, detail(ErrInvalidIdentifier, "empty table")
	}

	assignments := make([]string, len(s.Fields))
	args := make([]interface{}, 0, len(s.Fields))
	for i, f := range s.Fields {
		col, err := column("", f)
		if err != nil {
			return Statement{}, err
		}
		arg, err := s.Values[i].Arg()
		if err != nil {
			return Statement{}, valueError(err, s.Fields, i)
		}
		assignments[i] = fmt.Sprintf("%s = $%d", col, i+1)
		args = append(args, arg)
	}

	where, whereArgs, err := CompileWhere(s.Where, len(s.Fields)+1)
	if err != nil {
		return Statement{}, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "UPDATE %s SET %s\n", s.Table, strings.Join(assignments, ", "))
	sb.WriteString(where)

	return Statement{SQL: strings.TrimSpace(sb.String()), Args: append(args, whereArgs...)}, nil
}

// CompileDelete compiles a DELETE statement.
func CompileDelete(s Delete) (Statement, error) {
	if !s.AllowAll && s.Where.Empty() {
		return Statement{}, detail(ErrEmptyWhere, "delete from %s", s.Table)
	}
	if strings.TrimSpace(s.Table) == "" {
		return Statement{}, detail(ErrInvalidIdentifier, "empty table")
	}

	where, args, err := CompileWhere(s.Where, 1)
	if err != nil {
		return Statement{}, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "DELETE FROM %s\n", s.Table)
	sb.WriteString(where)

	return Statement{SQL: strings.TrimSpace(sb.String()), Args: args}, nil
}

func valueError(err error, fields []string, i int) error {
	if i < len(fields) {
		return fmt.Errorf("field %s: %w", fields[i], err)
	}
	return fmt.Errorf("value %d: %w", i+1, err)
}

// Method selects the statement kind compiled by Compile.
type Method string

const (
	MethodSelect Method = "select"
	MethodInsert Method = "insert"
	MethodUpdate Method = "update"
	MethodDelete Method = "delete"
)

// Spec is the union of all statement descriptors, dispatched on Method.
type Spec struct {
	Method              Method
	Table               string
	Fields              []string
	Values              []Param
	Where               Groups
	Order               []Order
	Limit               int
	Offset              int
	CountOnly           bool
	Lock                bool
	AllowAll            bool
	OnConflictDoNothing bool
}

// Compile dispatches to the compiler for s.Method.
func Compile(s Spec) (Statement, error) {
	switch Method(strings.ToLower(string(s.Method))) {
	case MethodSelect:
		return CompileSelect(Select{
			Table:     s.Table,
			Fields:    s.Fields,
			Where:     s.Where,
			Order:     s.Order,
			Limit:     s.Limit,
			Offset:    s.Offset,
			CountOnly: s.CountOnly,
			Lock:      s.Lock,
		})
	case MethodInsert:
		return CompileInsert(Insert{
			Table:               s.Table,
			Fields:              s.Fields,
			Values:              s.Values,
			OnConflictDoNothing: s.OnConflictDoNothing,
		})
	case MethodUpdate:
		return CompileUpdate(Update{
			Table:    s.Table,
			Fields:   s.Fields,
			Values:   s.Values,
			Where:    s.Where,
			AllowAll: s.AllowAll,
		})
	case MethodDelete:
		return CompileDelete(Delete{
			Table:    s.Table,
			Where:    s.Where,
			AllowAll: s.AllowAll,
		})
	}
	return Statement{}, detail(ErrInvalidMethod, "%q", s.Method)
}
