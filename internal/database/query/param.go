// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package query

import (
	"encoding/json"
	"time"

	"github.com/gofrs/uuid"
	"github.com/lib/pq"
)

// Kind identifies the variant held by a Param.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindString
	KindInt
	KindFloat
	KindBool
	KindUUID
	KindTime
	KindJSON
	KindArray
)

// Param is a statement parameter. The zero Param is undefined: a condition
// carrying it is left out of the compiled WHERE clause.
type Param struct {
	kind  Kind
	value interface{}
	items []Param
}

func String(s string) Param { return Param{kind: KindString, value: s} }
func Int(i int64) Param { return Param{kind: KindInt, value: i} }
func Float(f float64) Param { return Param{kind: KindFloat, value: f} }
func Bool(b bool) Param { return Param{kind: KindBool, value: b} }
func UUID(id uuid.UUID) Param { return Param{kind: KindUUID, value: id} }
func Time(t time.Time) Param { return Param{kind: KindTime, value: t} }
func Null() Param { return Param{kind: KindNull} }
func JSON(v interface{}) Param { return Param{kind: KindJSON, value: v} }
func Array(items ...Param) Param { return Param{kind: KindArray, items: items} }
func Undefined() Param { return Param{} }

// Strings builds an array of string parameters.
func Strings(values ...string) Param {
	items := make([]Param, len(values))
	for i, v := range values {
		items[i] = String(v)
	}
	return Array(items...)
}

// UUIDs builds an array of UUID parameters.
func UUIDs(ids ...uuid.UUID) Param {
	items := make([]Param, len(ids))
	for i, id := range ids {
		items[i] = UUID(id)
	}
	return Array(items...)
}

// OptionalString is undefined for the empty string.
func OptionalString(s string) Param {
	if s == "" {
		return Undefined()
	}
	return String(s)
}

// OptionalUUID is undefined for uuid.Nil.
func OptionalUUID(id uuid.UUID) Param {
	if id == uuid.Nil {
		return Undefined()
	}
	return UUID(id)
}

// Contains builds the jsonb array used with the @> operator to test
// membership of a single id.
func Contains(id uuid.UUID) Param {
	if id == uuid.Nil {
		return Undefined()
	}
	return JSON([]string{id.String()})
}

// ParamOf converts an arbitrary Go value into a Param, rejecting anything
// outside the supported variants.
func ParamOf(v interface{}) (Param, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case Param:
		return t, nil
	case string:
		return String(t), nil
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case bool:
		return Bool(t), nil
	case uuid.UUID:
		return UUID(t), nil
	case uuid.NullUUID:
		if !t.Valid {
			return Null(), nil
		}
		return UUID(t.UUID), nil
	case time.Time:
		return Time(t), nil
	case *string:
		if t == nil {
			return Null(), nil
		}
		return String(*t), nil
	case *int64:
		if t == nil {
			return Null(), nil
		}
		return Int(*t), nil
	case *uuid.UUID:
		if t == nil {
			return Null(), nil
		}
		return UUID(*t), nil
	case *time.Time:
		if t == nil {
			return Null(), nil
		}
		return Time(*t), nil
	case []string:
		return Strings(t...), nil
	case []uuid.UUID:
		return UUIDs(t...), nil
	case []int64:
		items := make([]Param, len(t))
		for i, n := range t {
			items[i] = Int(n)
		}
		return Array(items...), nil
	case []int:
		items := make([]Param, len(t))
		for i, n := range t {
			items[i] = Int(int64(n))
		}
		return Array(items...), nil
	case json.RawMessage:
		return JSON(t), nil
	case map[string]interface{}:
		return JSON(t), nil
	}
	return Param{}, detail(ErrUnsupportedParam, "%T", v)
}

// Kind returns the variant of the parameter.
func (p Param) Kind() Kind {
	return p.kind
}

// IsUndefined reports whether p is the zero Param.
func (p Param) IsUndefined() bool {
	return p.kind == KindUndefined
}

// Items returns the elements of an array parameter.
func (p Param) Items() []Param {
	return p.items
}

// Value returns the raw Go value held by a scalar parameter.
func (p Param) Value() interface{} {
	return p.value
}

// Arg returns the driver argument for the parameter.
func (p Param) Arg() (interface{}, error) {
	switch p.kind {
	case KindUndefined:
		return nil, detail(ErrUnsupportedParam, "undefined value")
	case KindNull:
		return nil, nil
	case KindUUID:
		return p.value.(uuid.UUID).String(), nil
	case KindJSON:
		if raw, ok := p.value.(json.RawMessage); ok {
			return string(raw), nil
		}
		data, err := json.Marshal(p.value)
		if err != nil {
			return nil, detail(ErrUnsupportedParam, "json: %v", err)
		}
		return string(data), nil
	case KindArray:
		values := make([]interface{}, len(p.items))
		for i, item := range p.items {
			if !item.primitive() {
				return nil, detail(ErrUnsupportedParam, "array element of kind %d", item.kind)
			}
			arg, err := item.Arg()
			if err != nil {
				return nil, err
			}
			values[i] = arg
		}
		return pq.Array(values), nil
	}
	return p.value, nil
}

func (p Param) primitive() bool {
	switch p.kind {
	case KindString, KindInt, KindFloat, KindBool, KindUUID, KindTime, KindNull:
		return true
	}
	return false
}
