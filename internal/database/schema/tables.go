// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package schema

// Table names
const (
	TableUsers            = "users"
	TableFollows          = "follows"
	TablePosts            = "posts"
	TableReactions        = "reactions"
	TableViews            = "views"
	TableHashtags         = "hashtags"
	TableLists            = "lists"
	TableListDetails      = "list_details"
	TableRooms            = "rooms"
	TableRoomDetails      = "room_details"
	TableMessages         = "messages"
	TableMessageReactions = "message_reactions"
)

const (
	cascade = "CASCADE"
	setNull = "SET NULL"
)

func id() Column {
	return Column{Name: "id", Type: "uuid", PrimaryKey: true}
}

func ref(name, table string, notNull bool, onDelete string) Column {
	return Column{Name: name, Type: "uuid", NotNull: notNull, ForeignKey: &ForeignKey{Table: table, Column: "id", OnDelete: onDelete}}
}

func varchar(name string, length int, notNull bool) Column {
	return Column{Name: name, Type: "varchar", Length: length, NotNull: notNull}
}

func timestamps() []Column {
	return []Column{
		{Name: "created_at", Type: "timestamptz", NotNull: true, Default: "now()"},
		{Name: "updated_at", Type: "timestamptz", NotNull: true, Default: "now()"},
	}
}

func counter(name string) Column {
	return Column{Name: name, Type: "integer", NotNull: true, Default: "0"}
}

func jsonArray(name string) Column {
	return Column{Name: name, Type: "jsonb", NotNull: true, Default: "'[]'::jsonb"}
}

func columns(groups ...[]Column) []Column {
	var out []Column
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// Enums of the social schema.
var Enums = []Enum{
	{Name: "reaction_type", Values: []string{"like", "repost", "bookmark"}},
	{Name: "hashtag_type", Values: []string{"tag", "word"}},
	{Name: "list_make", Values: []string{"public", "private"}},
	{Name: "list_detail_type", Values: []string{"member", "follower", "unshow", "post"}},
	{Name: "room_detail_type", Values: []string{"pinned", "disabled", "snooze"}},
}

// Tables of the social schema in dependency order.
var Tables = []Table{
	{
		Name: TableUsers,
		Columns: columns([]Column{
			id(),
			varchar("name", 50, true),
			varchar("username", 30, true),
			varchar("email", 254, true),
			varchar("password", 72, true),
			varchar("bio", 160, false),
			varchar("location", 30, false),
			varchar("website", 100, false),
			{Name: "image", Type: "text"},
			{Name: "background", Type: "text"},
			{Name: "verified", Type: "boolean", NotNull: true, Default: "false"},
		}, timestamps()),
		Uniques: []Unique{
			{Name: "users_username_key", Columns: []string{"username"}},
			{Name: "users_email_key", Columns: []string{"email"}},
		},
	},
	{
		Name: TableFollows,
		Columns: []Column{
			id(),
			ref("followerid", TableUsers, true, cascade),
			ref("followingid", TableUsers, true, cascade),
			{Name: "created_at", Type: "timestamptz", NotNull: true, Default: "now()"},
		},
		Uniques: []Unique{{Name: "follows_edge_key", Columns: []string{"followerid", "followingid"}}},
		Indexes: []Index{{Name: "follows_followingid_idx", Columns: []string{"followingid"}}},
	},
	{
		Name: TablePosts,
		Columns: columns([]Column{
			id(),
			ref("userid", TableUsers, true, cascade),
			ref("parentid", TablePosts, false, setNull),
			ref("originalid", TablePosts, false, cascade),
			varchar("text", 280, false),
			jsonArray("images"),
			{Name: "video", Type: "text"},
			{Name: "pinned", Type: "boolean", NotNull: true, Default: "false"},
		}, timestamps()),
		Indexes: []Index{
			{Name: "posts_userid_idx", Columns: []string{"userid"}},
			{Name: "posts_parentid_idx", Columns: []string{"parentid"}},
			{Name: "posts_created_at_idx", Columns: []string{"created_at"}},
		},
	},
	{
		Name: TableReactions,
		Columns: []Column{
			id(),
			{Name: "type", Type: "reaction_type", NotNull: true},
			ref("userid", TableUsers, true, cascade),
			ref("postid", TablePosts, true, cascade),
			ref("commentid", TablePosts, false, cascade),
			{Name: "created_at", Type: "timestamptz", NotNull: true, Default: "now()"},
		},
		Uniques: []Unique{{
			Name:             "reactions_toggle_key",
			Columns:          []string{"type", "userid", "postid", "commentid"},
			NullsNotDistinct: true,
		}},
		Indexes: []Index{{Name: "reactions_postid_idx", Columns: []string{"postid"}}},
	},
	{
		Name: TableViews,
		Columns: columns([]Column{
			{Name: "postid", Type: "uuid", PrimaryKey: true, ForeignKey: &ForeignKey{Table: TablePosts, Column: "id", OnDelete: cascade}},
			counter("impressions"),
			counter("engagements"),
			counter("detail_expands"),
			counter("profile_visits"),
			counter("follows"),
		}, timestamps()),
	},
	{
		Name: TableHashtags,
		Columns: columns([]Column{
			id(),
			{Name: "type", Type: "hashtag_type", NotNull: true},
			varchar("title", 100, true),
			counter("count"),
			{Name: "weight", Type: "double precision", NotNull: true, Default: "0"},
		}, timestamps()),
		Uniques: []Unique{{Name: "hashtags_title_key", Columns: []string{"type", "title"}}},
	},
	{
		Name: TableLists,
		Columns: columns([]Column{
			id(),
			ref("userid", TableUsers, true, cascade),
			varchar("name", 25, true),
			varchar("description", 100, false),
			{Name: "banner", Type: "text"},
			{Name: "make", Type: "list_make", NotNull: true, Default: "'public'"},
		}, timestamps()),
		Indexes: []Index{{Name: "lists_userid_idx", Columns: []string{"userid"}}},
	},
	{
		Name: TableListDetails,
		Columns: []Column{
			id(),
			ref("listid", TableLists, true, cascade),
			{Name: "type", Type: "list_detail_type", NotNull: true},
			ref("userid", TableUsers, false, cascade),
			ref("postid", TablePosts, false, cascade),
			{Name: "created_at", Type: "timestamptz", NotNull: true, Default: "now()"},
		},
		Uniques: []Unique{{
			Name:             "list_details_toggle_key",
			Columns:          []string{"listid", "type", "userid", "postid"},
			NullsNotDistinct: true,
		}},
	},
	{
		Name: TableRooms,
		Columns: columns([]Column{
			id(),
			ref("senderid", TableUsers, true, cascade),
			ref("receiverid", TableUsers, true, cascade),
		}, timestamps()),
		// One room per unordered pair of participants.
		Indexes: []Index{
			{
				Name:        "rooms_participants_key",
				Expressions: []string{`LEAST("senderid", "receiverid")`, `GREATEST("senderid", "receiverid")`},
				Unique:      true,
			},
			{Name: "rooms_receiverid_idx", Columns: []string{"receiverid"}},
		},
	},
	{
		Name: TableRoomDetails,
		Columns: []Column{
			id(),
			ref("roomid", TableRooms, true, cascade),
			{Name: "type", Type: "room_detail_type", NotNull: true},
			ref("userid", TableUsers, true, cascade),
			{Name: "created_at", Type: "timestamptz", NotNull: true, Default: "now()"},
		},
		Uniques: []Unique{{Name: "room_details_toggle_key", Columns: []string{"roomid", "type", "userid"}}},
	},
	{
		Name: TableMessages,
		Columns: columns([]Column{
			id(),
			ref("roomid", TableRooms, true, cascade),
			ref("senderid", TableUsers, true, cascade),
			ref("parentid", TableMessages, false, setNull),
			{Name: "content", Type: "text"},
			jsonArray("media"),
		}, timestamps()),
		Indexes: []Index{{Name: "messages_roomid_idx", Columns: []string{"roomid", "created_at"}}},
	},
	{
		Name: TableMessageReactions,
		Columns: []Column{
			id(),
			ref("messageid", TableMessages, true, cascade),
			ref("userid", TableUsers, true, cascade),
			varchar("content", 16, true),
			{Name: "created_at", Type: "timestamptz", NotNull: true, Default: "now()"},
		},
		Uniques: []Unique{{Name: "message_reactions_toggle_key", Columns: []string{"messageid", "userid"}}},
	},
}

// Default returns the registry of the social schema.
func Default() *Registry {
	return New(Enums, Tables, Views)
}
