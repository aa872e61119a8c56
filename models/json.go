// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	uuid "github.com/gofrs/uuid"
)

var errJSONType = errors.New("type assertion to []byte or string failed")

// scanJSON decodes a json/jsonb column into dst. A NULL column leaves dst untouched.
func scanJSON(value interface{}, dst interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	}
	return fmt.Errorf("%w: %T", errJSONType, value)
}

// IDs is a jsonb array of ids. It always encodes as an array, never null.
type IDs []uuid.UUID

// Scan implements sql.Scanner interface
func (ids *IDs) Scan(value interface{}) error {
	*ids = IDs{}
	return scanJSON(value, (*[]uuid.UUID)(ids))
}

// Value implements driver.Valuer interface
func (ids IDs) Value() (driver.Value, error) {
	return ids.MarshalJSON()
}

// MarshalJSON implements json.Marshaler
func (ids IDs) MarshalJSON() ([]byte, error) {
	if ids == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]uuid.UUID(ids))
}

// Contains reports whether id is in the list.
func (ids IDs) Contains(id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Media is a jsonb array of media URLs.
type Media []string

// Scan implements sql.Scanner interface
func (m *Media) Scan(value interface{}) error {
	*m = Media{}
	return scanJSON(value, (*[]string)(m))
}

// Value implements driver.Valuer interface
func (m Media) Value() (driver.Value, error) {
	return m.MarshalJSON()
}

// MarshalJSON implements json.Marshaler
func (m Media) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(m))
}

// Counts is the _count aggregate of an advanced entity.
type Counts map[string]int64

// Scan implements sql.Scanner interface
func (c *Counts) Scan(value interface{}) error {
	*c = Counts{}
	return scanJSON(value, (*map[string]int64)(c))
}

// MarshalJSON implements json.Marshaler
func (c Counts) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]int64(c))
}
