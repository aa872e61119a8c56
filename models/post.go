// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package models

import (
	"time"

	uuid "github.com/gofrs/uuid"
)

// Post is the posts table row.
type Post struct {
	ID         uuid.UUID     `json:"id" db:"id"`
	UserID     uuid.UUID     `json:"userid" db:"userid"`
	ParentID   uuid.NullUUID `json:"parentid" db:"parentid"`
	OriginalID uuid.NullUUID `json:"originalid" db:"originalid"`
	Text       *string       `json:"text" db:"text"`
	Images     Media         `json:"images" db:"images"`
	Video      *string       `json:"video" db:"video"`
	Pinned     bool          `json:"pinned" db:"pinned"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at" db:"updated_at"`
}

// PostSummary is the nested parent or original post.
type PostSummary struct {
	ID        uuid.UUID   `json:"id"`
	Text      *string     `json:"text"`
	Images    Media       `json:"images"`
	CreatedAt time.Time   `json:"created_at"`
	User      UserSummary `json:"user"`
}

// Scan implements sql.Scanner interface
func (p *PostSummary) Scan(value interface{}) error {
	return scanJSON(value, p)
}

// AdvancedPost is a row of the advanced_posts view.
type AdvancedPost struct {
	Post
	User      UserSummary  `json:"user" db:"user"`
	Parent    *PostSummary `json:"parent" db:"parent"`
	Original  *PostSummary `json:"original" db:"original"`
	Likes     IDs          `json:"likes" db:"likes"`
	Reposts   IDs          `json:"reposts" db:"reposts"`
	Bookmarks IDs          `json:"bookmarks" db:"bookmarks"`
	Comments  IDs          `json:"comments" db:"comments"`
	Count     Counts       `json:"_count" db:"_count"`
}

// ReactionType is the kind of a post reaction.
type ReactionType string

const (
	ReactionLike     ReactionType = "like"
	ReactionRepost   ReactionType = "repost"
	ReactionBookmark ReactionType = "bookmark"
)

// Valid reports whether t is a known reaction type.
func (t ReactionType) Valid() bool {
	switch t {
	case ReactionLike, ReactionRepost, ReactionBookmark:
		return true
	}
	return false
}

// Reaction is a like, repost or bookmark of a post by a user. CommentID is
// the quote post written when reposting with a comment.
type Reaction struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	Type      ReactionType  `json:"type" db:"type"`
	UserID    uuid.UUID     `json:"userid" db:"userid"`
	PostID    uuid.UUID     `json:"postid" db:"postid"`
	CommentID uuid.NullUUID `json:"commentid" db:"commentid"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

// ViewField names a per-post counter.
type ViewField string

const (
	ViewImpressions   ViewField = "impressions"
	ViewEngagements   ViewField = "engagements"
	ViewDetailExpands ViewField = "detail_expands"
	ViewProfileVisits ViewField = "profile_visits"
	ViewFollows       ViewField = "follows"
)

// ViewFields lists every counter in column order.
var ViewFields = []ViewField{ViewImpressions, ViewEngagements, ViewDetailExpands, ViewProfileVisits, ViewFollows}

// Valid reports whether f is a known counter.
func (f ViewField) Valid() bool {
	for _, v := range ViewFields {
		if v == f {
			return true
		}
	}
	return false
}

// Views holds the counters of one post.
type Views struct {
	PostID        uuid.UUID `json:"postid" db:"postid"`
	Impressions   int64     `json:"impressions" db:"impressions"`
	Engagements   int64     `json:"engagements" db:"engagements"`
	DetailExpands int64     `json:"detail_expands" db:"detail_expands"`
	ProfileVisits int64     `json:"profile_visits" db:"profile_visits"`
	Follows       int64     `json:"follows" db:"follows"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Get returns the value of counter f.
func (v Views) Get(f ViewField) int64 {
	switch f {
	case ViewImpressions:
		return v.Impressions
	case ViewEngagements:
		return v.Engagements
	case ViewDetailExpands:
		return v.DetailExpands
	case ViewProfileVisits:
		return v.ProfileVisits
	case ViewFollows:
		return v.Follows
	}
	return 0
}
