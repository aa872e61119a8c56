// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package query

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"testing"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamOf(t *testing.T) {
	id := uuid.Must(uuid.NewV4())
	now := time.Now()
	var nilString *string

	cases := []struct {
		name string
		in   interface{}
		kind Kind
	}{
		{"nil", nil, KindNull},
		{"string", "x", KindString},
		{"int", 3, KindInt},
		{"float", 1.5, KindFloat},
		{"bool", true, KindBool},
		{"uuid", id, KindUUID},
		{"null uuid", uuid.NullUUID{}, KindNull},
		{"time", now, KindTime},
		{"nil pointer", nilString, KindNull},
		{"strings", []string{"a"}, KindArray},
		{"raw json", json.RawMessage(`{"a":1}`), KindJSON},
		{"map", map[string]interface{}{"a": 1}, KindJSON},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ParamOf(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, p.Kind())
		})
	}

	_, err := ParamOf(struct{}{})
	assert.True(t, errors.Is(err, ErrUnsupportedParam))
}

func TestParam_Arg(t *testing.T) {
	id := uuid.Must(uuid.NewV4())

	arg, err := UUID(id).Arg()
	require.NoError(t, err)
	assert.Equal(t, id.String(), arg)

	arg, err = JSON(map[string]int{"n": 1}).Arg()
	require.NoError(t, err)
	assert.Equal(t, `{"n":1}`, arg)

	arg, err = Null().Arg()
	require.NoError(t, err)
	assert.Nil(t, arg)

	arg, err = Strings("a", "b").Arg()
	require.NoError(t, err)
	valuer, ok := arg.(driver.Valuer)
	require.True(t, ok)
	v, err := valuer.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"a","b"}`, v)

	_, err = Undefined().Arg()
	assert.True(t, errors.Is(err, ErrUnsupportedParam))
}

func TestOptionalParams(t *testing.T) {
	assert.True(t, OptionalString("").IsUndefined())
	assert.False(t, OptionalString("x").IsUndefined())
	assert.True(t, OptionalUUID(uuid.Nil).IsUndefined())
	assert.True(t, Contains(uuid.Nil).IsUndefined())

	id := uuid.Must(uuid.NewV4())
	arg, err := Contains(id).Arg()
	require.NoError(t, err)
	assert.Equal(t, `["`+id.String()+`"]`, arg)
}
