// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package models

import (
	"time"

	uuid "github.com/gofrs/uuid"
)

// HashtagType distinguishes explicit #tags from frequent words.
type HashtagType string

const (
	HashtagTag  HashtagType = "tag"
	HashtagWord HashtagType = "word"
)

// Hashtag is a trending term with its frequency and weight.
type Hashtag struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	Type      HashtagType `json:"type" db:"type"`
	Title     string      `json:"title" db:"title"`
	Count     int64       `json:"count" db:"count"`
	Weight    float64     `json:"weight" db:"weight"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}
