// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package models

import (
	"time"

	uuid "github.com/gofrs/uuid"
)

// User is the users table row.
type User struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Username   string    `json:"username" db:"username"`
	Email      string    `json:"email" db:"email"`
	Password   string    `json:"-" db:"password"`
	Bio        *string   `json:"bio" db:"bio"`
	Location   *string   `json:"location" db:"location"`
	Website    *string   `json:"website" db:"website"`
	Image      *string   `json:"image" db:"image"`
	Background *string   `json:"background" db:"background"`
	Verified   bool      `json:"verified" db:"verified"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// AdvancedUser is a public user profile with its follow graph relative to the viewer.
type AdvancedUser struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Username    string    `json:"username" db:"username"`
	Bio         *string   `json:"bio" db:"bio"`
	Location    *string   `json:"location" db:"location"`
	Website     *string   `json:"website" db:"website"`
	Image       *string   `json:"image" db:"image"`
	Background  *string   `json:"background" db:"background"`
	Verified    bool      `json:"verified" db:"verified"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	Followers   IDs       `json:"followers" db:"followers"`
	Following   IDs       `json:"following" db:"following"`
	Count       Counts    `json:"_count" db:"_count"`
	IsFollowing bool      `json:"is_following" db:"is_following"`
}

// UserSummary is the nested user object embedded in advanced entities.
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Username string    `json:"username"`
	Image    *string   `json:"image"`
	Verified bool      `json:"verified"`
}

// Scan implements sql.Scanner interface
func (u *UserSummary) Scan(value interface{}) error {
	return scanJSON(value, u)
}

// Follow is a follower -> following edge.
type Follow struct {
	ID          uuid.UUID `json:"id" db:"id"`
	FollowerID  uuid.UUID `json:"followerid" db:"followerid"`
	FollowingID uuid.UUID `json:"followingid" db:"followingid"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
