package testutil

import (
	"fmt"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	uuid "github.com/gofrs/uuid"
)

// TS is the timestamp of every fixture row.
var TS = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

var (
	UserColumns = []string{"id", "name", "username", "email", "password", "bio", "location", "website", "image", "background", "verified", "created_at", "updated_at"}

	AdvancedUserColumns = []string{"id", "name", "username", "bio", "location", "website", "image", "background", "verified", "created_at", "updated_at", "followers", "following", "_count", "is_following"}

	AdvancedPostColumns = []string{
		"id", "userid", "parentid", "originalid", "text", "images", "video", "pinned", "created_at", "updated_at",
		"user", "parent", "original", "likes", "reposts", "bookmarks", "comments", "_count",
	}

	AdvancedListColumns = []string{
		"id", "userid", "name", "description", "banner", "make", "created_at", "updated_at",
		"user", "members", "followers", "unshow", "posts", "_count", "mine", "following", "hidden",
	}
	ListColumns = []string{"id", "userid", "name", "description", "banner", "make", "created_at", "updated_at"}

	ViewsColumns   = []string{"postid", "impressions", "engagements", "detail_expands", "profile_visits", "follows", "created_at", "updated_at"}
	HashtagColumns = []string{"id", "type", "title", "count", "weight", "created_at", "updated_at"}
	RoomColumns    = []string{"id", "senderid", "receiverid", "created_at", "updated_at"}
	MessageColumns = []string{"id", "roomid", "senderid", "parentid", "content", "media", "created_at", "updated_at"}
)

func userJSON(id uuid.UUID, username string) []byte {
	return []byte(fmt.Sprintf(`{"id":"%s","name":"%s","username":"%s","image":null,"verified":false}`, id, username, username))
}

// UserRow is a users table row.
func UserRow(id uuid.UUID, username string) *sqlmock.Rows {
	return sqlmock.NewRows(UserColumns).
		AddRow(id.String(), username, username, username+"@example.com", "hash", nil, nil, nil, nil, nil, false, TS, TS)
}

// AdvancedUserRow is a users catalog row.
func AdvancedUserRow(id uuid.UUID, username string, following bool) *sqlmock.Rows {
	return sqlmock.NewRows(AdvancedUserColumns).
		AddRow(id.String(), username, username, nil, nil, nil, nil, nil, false, TS, TS,
			[]byte("[]"), []byte("[]"), []byte(`{"followers":0,"following":0,"posts":0}`), following)
}

// AddPost appends an advanced_posts row with text and a likes JSON array.
func AddPost(rows *sqlmock.Rows, id, owner uuid.UUID, text, likes string) *sqlmock.Rows {
	return rows.AddRow(id.String(), owner.String(), nil, nil, text, []byte("[]"), nil, false, TS, TS,
		userJSON(owner, "alice"), nil, nil, []byte(likes), []byte("[]"), []byte("[]"), []byte("[]"), []byte(`{"likes":0}`))
}

// PostRow is a single advanced_posts row.
func PostRow(id, owner uuid.UUID, text, likes string) *sqlmock.Rows {
	return AddPost(sqlmock.NewRows(AdvancedPostColumns), id, owner, text, likes)
}

// MessageRow is a single advanced_messages row.
func MessageRow(id, room, sender uuid.UUID, content string) *sqlmock.Rows {
	return sqlmock.NewRows(append(append([]string{}, MessageColumns...), "sender", "parent", "reactions")).
		AddRow(id.String(), room.String(), sender.String(), nil, content, []byte("[]"), TS, TS,
			userJSON(sender, "alice"), nil, []byte("[]"))
}

// ListRow is a lists table row.
func ListRow(id, owner uuid.UUID, visibility string) *sqlmock.Rows {
	return sqlmock.NewRows(ListColumns).
		AddRow(id.String(), owner.String(), "gophers", nil, nil, visibility, TS, TS)
}

// AdvancedListRow is a single lists catalog row; mine is derived from viewer.
func AdvancedListRow(id, owner, viewer uuid.UUID, visibility, members string) *sqlmock.Rows {
	return sqlmock.NewRows(AdvancedListColumns).
		AddRow(id.String(), owner.String(), "gophers", nil, nil, visibility, TS, TS,
			userJSON(owner, "alice"), []byte(members), []byte("[]"), []byte("[]"), []byte("[]"),
			[]byte(`{"members":0}`), owner == viewer, false, false)
}
