// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package models

import (
	"time"

	uuid "github.com/gofrs/uuid"
)

// ListMake is the visibility of a list.
type ListMake string

const (
	ListPublic  ListMake = "public"
	ListPrivate ListMake = "private"
)

// ListDetailType is the relation a list detail row records.
type ListDetailType string

const (
	ListMember   ListDetailType = "member"
	ListFollower ListDetailType = "follower"
	ListUnshow   ListDetailType = "unshow"
	ListPost     ListDetailType = "post"
)

// Valid reports whether t is a known detail type.
func (t ListDetailType) Valid() bool {
	switch t {
	case ListMember, ListFollower, ListUnshow, ListPost:
		return true
	}
	return false
}

// List is the lists table row.
type List struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"userid" db:"userid"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	Banner      *string   `json:"banner" db:"banner"`
	Make        ListMake  `json:"make" db:"make"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ListDetail links a user or a post to a list.
type ListDetail struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	ListID    uuid.UUID      `json:"listid" db:"listid"`
	Type      ListDetailType `json:"type" db:"type"`
	UserID    uuid.NullUUID  `json:"userid" db:"userid"`
	PostID    uuid.NullUUID  `json:"postid" db:"postid"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// AdvancedList is a row of advanced_lists with the viewer flags.
type AdvancedList struct {
	List
	User      UserSummary `json:"user" db:"user"`
	Members   IDs         `json:"members" db:"members"`
	Followers IDs         `json:"followers" db:"followers"`
	Unshow    IDs         `json:"unshow" db:"unshow"`
	Posts     IDs         `json:"posts" db:"posts"`
	Count     Counts      `json:"_count" db:"_count"`
	Mine      bool        `json:"mine" db:"mine"`
	Following bool        `json:"following" db:"following"`
	Hidden    bool        `json:"hidden" db:"hidden"`
}
