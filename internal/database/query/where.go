// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lib/pq"
)

// Operator is a condition operator.
type Operator string

const (
	OpEq        Operator = "="
	OpNe        Operator = "<>"
	OpLt        Operator = "<"
	OpLte       Operator = "<="
	OpGt        Operator = ">"
	OpGte       Operator = ">="
	OpIn        Operator = "in"
	OpNotIn     Operator = "not in"
	OpLike      Operator = "like"
	OpILike     Operator = "ilike"
	OpNotLike   Operator = "not like"
	OpContains  Operator = "@>"
	OpJSONField Operator = "->>"
	OpJSONPath  Operator = "#>>"
	OpIsNull    Operator = "is null"
	OpIsNotNull Operator = "is not null"
)

var operators = map[Operator]string{
	OpEq:        "=",
	OpNe:        "<>",
	OpLt:        "<",
	OpLte:       "<=",
	OpGt:        ">",
	OpGte:       ">=",
	OpIn:        "IN",
	OpNotIn:     "NOT IN",
	OpLike:      "LIKE",
	OpILike:     "ILIKE",
	OpNotLike:   "NOT LIKE",
	OpContains:  "@>",
	OpJSONField: "->>",
	OpJSONPath:  "#>>",
	OpIsNull:    "IS NULL",
	OpIsNotNull: "IS NOT NULL",
}

func (o Operator) normalize() Operator {
	if o == "" {
		return OpEq
	}
	return Operator(strings.ToLower(strings.TrimSpace(string(o))))
}

// Nullary reports whether the operator takes no value.
func (o Operator) Nullary() bool {
	o = o.normalize()
	return o == OpIsNull || o == OpIsNotNull
}

// Logic joins a condition to the previous one in its group.
type Logic string

const (
	And Logic = "AND"
	Or  Logic = "OR"
)

// Where is a single predicate.
type Where struct {
	TableAlias string
	Field      string
	Operator   Operator
	Value      Param
	// SubField is the literal key for ->> and the literal path for #>>.
	// It is rendered into the statement text and must never carry user input.
	SubField string
	Logic    Logic
	Not      bool
}

// Group is a parenthesized list of conditions combined by their own logic.
type Group []Where

// Groups is a list of groups combined with AND.
type Groups []Group

// Cond builds an equality-style condition on field.
func Cond(field string, op Operator, value Param) Where {
	return Where{Field: field, Operator: op, Value: value}
}

// Eq builds field = value.
func Eq(field string, value Param) Where {
	return Where{Field: field, Operator: OpEq, Value: value}
}

// IsNull builds field IS NULL.
func IsNull(field string) Where {
	return Where{Field: field, Operator: OpIsNull}
}

// IsNotNull builds field IS NOT NULL.
func IsNotNull(field string) Where {
	return Where{Field: field, Operator: OpIsNotNull}
}

// On sets the table alias.
func (w Where) On(alias string) Where {
	w.TableAlias = alias
	return w
}

// Or joins the condition with OR.
func (w Where) Or() Where {
	w.Logic = Or
	return w
}

// Negate wraps the predicate in NOT (...).
func (w Where) Negate() Where {
	w.Not = true
	return w
}

// Sub sets the JSON key or path.
func (w Where) Sub(subField string) Where {
	w.SubField = subField
	return w
}

// skipped reports whether the condition contributes nothing to the clause.
func (w Where) skipped() bool {
	return w.Value.IsUndefined() && !w.Operator.Nullary()
}

// Empty reports whether no group contributes a condition.
func (g Groups) Empty() bool {
	for _, group := range g {
		for _, w := range group {
			if !w.skipped() {
				return false
			}
		}
	}
	return true
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func column(alias, field string) (string, error) {
	if field == "" {
		return "", detail(ErrInvalidIdentifier, "empty field")
	}
	col := pq.QuoteIdentifier(field)
	if alias == "" {
		return col, nil
	}
	if !identifierPattern.MatchString(alias) {
		return "", detail(ErrInvalidIdentifier, "alias %q", alias)
	}
	return alias + "." + col, nil
}

// CompileWhere compiles groups into a WHERE clause whose first placeholder is
// $start. It returns an empty clause when no group contributes a condition.
func CompileWhere(groups Groups, start int) (string, []interface{}, error) {
	var sb strings.Builder
	args := make([]interface{}, 0)
	index := start
	emitted := 0

	for _, group := range groups {
		lines := make([]string, 0, len(group))
		for _, w := range group {
			if w.skipped() {
				continue
			}
			predicate, values, err := compilePredicate(w, index)
			if err != nil {
				return "", nil, err
			}
			index += len(values)
			args = append(args, values...)

			if len(lines) == 0 {
				lines = append(lines, predicate)
				continue
			}
			logic, err := normalizeLogic(w.Logic)
			if err != nil {
				return "", nil, err
			}
			lines = append(lines, string(logic)+" "+predicate)
		}
		if len(lines) == 0 {
			continue
		}

		if emitted == 0 {
			sb.WriteString("WHERE\n\t(\n")
		} else {
			sb.WriteString("\tAND (\n")
		}
		for _, line := range lines {
			sb.WriteString("\t\t")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		sb.WriteString("\t)\n")
		emitted++
	}

	return sb.String(), args, nil
}

func normalizeLogic(l Logic) (Logic, error) {
	switch Logic(strings.ToUpper(string(l))) {
	case "", And:
		return And, nil
	case Or:
		return Or, nil
	}
	return "", detail(ErrInvalidLogic, "%q", l)
}

func compilePredicate(w Where, index int) (string, []interface{}, error) {
	op := w.Operator.normalize()
	keyword, ok := operators[op]
	if !ok {
		return "", nil, detail(ErrInvalidOperator, "%q on %s", w.Operator, w.Field)
	}
	if _, err := normalizeLogic(w.Logic); err != nil {
		return "", nil, err
	}
	col, err := column(w.TableAlias, w.Field)
	if err != nil {
		return "", nil, err
	}

	var predicate string
	var args []interface{}

	switch op {
	case OpIsNull, OpIsNotNull:
		predicate = fmt.Sprintf("%s %s", col, keyword)

	case OpIn, OpNotIn:
		items := w.Value.Items()
		if w.Value.Kind() != KindArray {
			items = []Param{w.Value}
		}
		if len(items) == 0 {
			return "", nil, detail(ErrEmptyIn, "%s", w.Field)
		}
		placeholders := make([]string, len(items))
		for i, item := range items {
			arg, err := item.Arg()
			if err != nil {
				return "", nil, err
			}
			placeholders[i] = fmt.Sprintf("$%d", index+i)
			args = append(args, arg)
		}
		predicate = fmt.Sprintf("%s %s (%s)", col, keyword, strings.Join(placeholders, ", "))

	case OpJSONField, OpJSONPath:
		if w.SubField == "" {
			return "", nil, detail(ErrInvalidOperator, "%s requires a sub field on %s", op, w.Field)
		}
		path := w.SubField
		if op == OpJSONPath {
			path = "{" + strings.Join(strings.Split(w.SubField, "."), ",") + "}"
		}
		arg, err := w.Value.Arg()
		if err != nil {
			return "", nil, err
		}
		args = append(args, arg)
		predicate = fmt.Sprintf("%s %s %s = $%d", col, keyword, pq.QuoteLiteral(path), index)

	default:
		arg, err := w.Value.Arg()
		if err != nil {
			return "", nil, err
		}
		args = append(args, arg)
		predicate = fmt.Sprintf("%s %s $%d", col, keyword, index)
	}

	if w.Not {
		predicate = "NOT (" + predicate + ")"
	}
	return predicate, args, nil
}
