// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package query

// Validator knows the tables and columns of the schema.
type Validator interface {
	HasTable(table string) bool
	HasField(table, field string) bool
}

// Compiler checks table and field names against a Validator before compiling.
// Tables unknown to the validator (subqueries, views built by the catalog) are
// passed through unchecked.
type Compiler struct {
	schema Validator
}

// NewCompiler creates a compiler backed by v.
func NewCompiler(v Validator) *Compiler {
	return &Compiler{schema: v}
}

func (c *Compiler) check(table string, fields []string, where Groups) error {
	if c == nil || c.schema == nil {
		return nil
	}
	if !identifierPattern.MatchString(table) {
		return nil
	}
	if !c.schema.HasTable(table) {
		return detail(ErrUnknownTable, "%s", table)
	}
	for _, f := range fields {
		if !c.schema.HasField(table, f) {
			return detail(ErrUnknownField, "%s.%s", table, f)
		}
	}
	for _, group := range where {
		for _, w := range group {
			if w.TableAlias != "" || w.skipped() {
				continue
			}
			if !c.schema.HasField(table, w.Field) {
				return detail(ErrUnknownField, "%s.%s", table, w.Field)
			}
		}
	}
	return nil
}

// Select validates and compiles s.
func (c *Compiler) Select(s Select) (Statement, error) {
	if err := c.check(s.Table, s.Fields, s.Where); err != nil {
		return Statement{}, err
	}
	return CompileSelect(s)
}

// Insert validates and compiles s.
func (c *Compiler) Insert(s Insert) (Statement, error) {
	if err := c.check(s.Table, s.Fields, nil); err != nil {
		return Statement{}, err
	}
	return CompileInsert(s)
}

// Update validates and compiles s.
func (c *Compiler) Update(s Update) (Statement, error) {
	if err := c.check(s.Table, s.Fields, s.Where); err != nil {
		return Statement{}, err
	}
	return CompileUpdate(s)
}

// Delete validates and compiles s.
func (c *Compiler) Delete(s Delete) (Statement, error) {
	if err := c.check(s.Table, nil, s.Where); err != nil {
		return Statement{}, err
	}
	return CompileDelete(s)
}
