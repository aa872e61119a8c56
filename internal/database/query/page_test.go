// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package query

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPage_Clause(t *testing.T) {
	assert.Equal(t, "", Page{}.Clause())
	assert.Equal(t, "LIMIT 10", Page{Limit: 10}.Clause())
	assert.Equal(t, "LIMIT 10\nOFFSET 30", Page{Limit: 10, Offset: 3}.Clause())
	assert.Equal(t, 0, Page{Offset: 3}.RowOffset())
}

func TestPage_RowOffsetSaturates(t *testing.T) {
	huge := Page{Limit: 100, Offset: 92233720368547759}
	assert.Equal(t, math.MaxInt, huge.RowOffset())
	assert.Equal(t, fmt.Sprintf("LIMIT 100\nOFFSET %d", math.MaxInt), huge.Clause())
	assert.Equal(t, math.MaxInt, Page{Limit: 1, Offset: math.MaxInt}.RowOffset())
	assert.Equal(t, 100*MaxPageIndex, Page{Limit: 100, Offset: MaxPageIndex}.RowOffset())
}

func TestPattern(t *testing.T) {
	assert.True(t, Pattern("  ").IsUndefined())
	assert.Equal(t, "%bob%", Pattern(" bob ").Value())
	assert.Equal(t, `%50\%\_off%`, Pattern("50%_off").Value())
}
