// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package schema describes the relational schema of the social store. The
// registry drives one-time provisioning and field validation in the query
// compiler.
package schema

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// ForeignKey references a column of another table.
type ForeignKey struct {
	Table    string
	Column   string
	OnDelete string
}

// Column describes one table column.
type Column struct {
	Name       string
	Type       string
	Length     int
	NotNull    bool
	Default    string
	PrimaryKey bool
	ForeignKey *ForeignKey
}

// Unique is a multi-column uniqueness constraint.
type Unique struct {
	Name             string
	Columns          []string
	NullsNotDistinct bool
}

// Index is a non-unique index.
type Index struct {
	Name    string
	Columns []string
	// Expressions are trusted SQL appended after Columns.
	Expressions []string
	Unique      bool
}

// Table describes a base table.
type Table struct {
	Name    string
	Columns []Column
	Uniques []Unique
	Indexes []Index
}

// Enum is a PostgreSQL enum type.
type Enum struct {
	Name   string
	Values []string
}

// View is a read-only projection recreated at provisioning.
type View struct {
	Name    string
	Columns []string
	Query   string
}

// Registry is an ordered schema description. Order matters: enums, then
// tables in foreign-key dependency order, then views.
type Registry struct {
	Enums  []Enum
	Tables []Table
	Views  []View

	fields map[string]map[string]struct{}
}

// New builds a registry and its lookup index.
func New(enums []Enum, tables []Table, views []View) *Registry {
	r := &Registry{
		Enums:  enums,
		Tables: tables,
		Views:  views,
		fields: make(map[string]map[string]struct{}, len(tables)+len(views)),
	}
	for _, t := range tables {
		cols := make(map[string]struct{}, len(t.Columns))
		for _, c := range t.Columns {
			cols[c.Name] = struct{}{}
		}
		r.fields[t.Name] = cols
	}
	for _, v := range views {
		cols := make(map[string]struct{}, len(v.Columns))
		for _, c := range v.Columns {
			cols[c] = struct{}{}
		}
		r.fields[v.Name] = cols
	}
	return r
}

// HasTable reports whether name is a known table or view.
func (r *Registry) HasTable(name string) bool {
	_, ok := r.fields[name]
	return ok
}

// HasField reports whether table has the column field.
func (r *Registry) HasField(table, field string) bool {
	cols, ok := r.fields[table]
	if !ok {
		return false
	}
	_, ok = cols[field]
	return ok
}

// Columns returns the column names of a table or view in declaration order.
func (r *Registry) Columns(name string) []string {
	for _, t := range r.Tables {
		if t.Name == name {
			out := make([]string, len(t.Columns))
			for i, c := range t.Columns {
				out[i] = c.Name
			}
			return out
		}
	}
	for _, v := range r.Views {
		if v.Name == name {
			return append([]string(nil), v.Columns...)
		}
	}
	return nil
}

// Table returns the table named name.
func (r *Registry) Table(name string) (Table, bool) {
	for _, t := range r.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

func (c Column) definition() string {
	var sb strings.Builder
	sb.WriteString(pq.QuoteIdentifier(c.Name))
	sb.WriteString(" ")
	sb.WriteString(c.Type)
	if c.Length > 0 {
		fmt.Fprintf(&sb, "(%d)", c.Length)
	}
	if c.NotNull || c.PrimaryKey {
		sb.WriteString(" NOT NULL")
	}
	if c.Default != "" {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(c.Default)
	}
	if c.PrimaryKey {
		sb.WriteString(" PRIMARY KEY")
	}
	if fk := c.ForeignKey; fk != nil {
		fmt.Fprintf(&sb, " REFERENCES %s (%s)", fk.Table, pq.QuoteIdentifier(fk.Column))
		if fk.OnDelete != "" {
			sb.WriteString(" ON DELETE ")
			sb.WriteString(fk.OnDelete)
		}
	}
	return sb.String()
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = pq.QuoteIdentifier(n)
	}
	return strings.Join(quoted, ", ")
}

// DDL renders the CREATE TABLE statement including unique constraints.
func (t Table) DDL() string {
	lines := make([]string, 0, len(t.Columns)+len(t.Uniques))
	for _, c := range t.Columns {
		lines = append(lines, "\t"+c.definition())
	}
	for _, u := range t.Uniques {
		nulls := ""
		if u.NullsNotDistinct {
			nulls = " NULLS NOT DISTINCT"
		}
		lines = append(lines, fmt.Sprintf("\tCONSTRAINT %s UNIQUE%s (%s)", u.Name, nulls, quoteAll(u.Columns)))
	}
	return fmt.Sprintf("CREATE TABLE %s (\n%s\n)", t.Name, strings.Join(lines, ",\n"))
}

// IndexDDL renders the CREATE INDEX statements of the table.
func (t Table) IndexDDL() []string {
	out := make([]string, len(t.Indexes))
	for i, idx := range t.Indexes {
		kind := "INDEX"
		if idx.Unique {
			kind = "UNIQUE INDEX"
		}
		keys := make([]string, 0, len(idx.Columns)+len(idx.Expressions))
		if len(idx.Columns) > 0 {
			keys = append(keys, quoteAll(idx.Columns))
		}
		keys = append(keys, idx.Expressions...)
		out[i] = fmt.Sprintf("CREATE %s IF NOT EXISTS %s ON %s (%s)", kind, idx.Name, t.Name, strings.Join(keys, ", "))
	}
	return out
}

// DDL renders the CREATE TYPE statement.
func (e Enum) DDL() string {
	values := make([]string, len(e.Values))
	for i, v := range e.Values {
		values[i] = pq.QuoteLiteral(v)
	}
	return fmt.Sprintf("CREATE TYPE %s AS ENUM (%s)", e.Name, strings.Join(values, ", "))
}

// DDL renders the CREATE OR REPLACE VIEW statement.
func (v View) DDL() string {
	return fmt.Sprintf("CREATE OR REPLACE VIEW %s AS\n%s", v.Name, strings.TrimSpace(v.Query))
}
