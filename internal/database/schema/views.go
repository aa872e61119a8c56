// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package schema

import "fmt"

// View names
const (
	ViewAdvancedPosts    = "advanced_posts"
	ViewAdvancedLists    = "advanced_lists"
	ViewAdvancedRooms    = "advanced_rooms"
	ViewAdvancedMessages = "advanced_messages"
)

// UserJSON renders the public user summary of alias as a jsonb object.
func UserJSON(alias string) string {
	return fmt.Sprintf(
		"jsonb_build_object('id', %[1]s.id, 'name', %[1]s.name, 'username', %[1]s.username, 'image', %[1]s.image, 'verified', %[1]s.verified)",
		alias,
	)
}

// idArray aggregates column of the rows matched by where into a jsonb array,
// '[]' when nothing matches.
func idArray(column, from, where string) string {
	return fmt.Sprintf("COALESCE((SELECT jsonb_agg(%s ORDER BY created_at) FROM %s WHERE %s), '[]'::jsonb)", column, from, where)
}

func count(from, where string) string {
	return fmt.Sprintf("(SELECT count(*) FROM %s WHERE %s)", from, where)
}

func postSummary(fk string) string {
	return fmt.Sprintf(`(
		SELECT jsonb_build_object('id', pp.id, 'text', pp.text, 'images', pp.images, 'created_at', pp.created_at, 'user', %s)
		FROM posts pp JOIN users pu ON pu.id = pp.userid
		WHERE pp.id = p.%s
	)`, UserJSON("pu"), fk)
}

func reactionFilter(kind string) string {
	return fmt.Sprintf("postid = p.id AND type = '%s'", kind)
}

func listFilter(kind string) string {
	return fmt.Sprintf("listid = l.id AND type = '%s'", kind)
}

func roomFilter(kind string) string {
	return fmt.Sprintf("roomid = r.id AND type = '%s'", kind)
}

var advancedPosts = View{
	Name: ViewAdvancedPosts,
	Columns: []string{
		"id", "userid", "parentid", "originalid", "text", "images", "video", "pinned", "created_at", "updated_at",
		"user", "parent", "original", "likes", "reposts", "bookmarks", "comments", "_count",
	},
	Query: fmt.Sprintf(`
SELECT
	p.id, p.userid, p.parentid, p.originalid, p.text, p.images, p.video, p.pinned, p.created_at, p.updated_at,
	%s AS "user",
	%s AS parent,
	%s AS original,
	%s AS likes,
	%s AS reposts,
	%s AS bookmarks,
	%s AS comments,
	jsonb_build_object(
		'likes', %s,
		'reposts', %s,
		'bookmarks', %s,
		'comments', %s
	) AS _count
FROM posts p
JOIN users u ON u.id = p.userid`,
		UserJSON("u"),
		postSummary("parentid"),
		postSummary("originalid"),
		idArray("userid", "reactions", reactionFilter("like")),
		idArray("userid", "reactions", reactionFilter("repost")),
		idArray("userid", "reactions", reactionFilter("bookmark")),
		idArray("id", "posts", "parentid = p.id"),
		count("reactions", reactionFilter("like")),
		count("reactions", reactionFilter("repost")),
		count("reactions", reactionFilter("bookmark")),
		count("posts c", "c.parentid = p.id"),
	),
}

var advancedLists = View{
	Name: ViewAdvancedLists,
	Columns: []string{
		"id", "userid", "name", "description", "banner", "make", "created_at", "updated_at",
		"user", "members", "followers", "unshow", "posts", "_count",
	},
	Query: fmt.Sprintf(`
SELECT
	l.id, l.userid, l.name, l.description, l.banner, l.make, l.created_at, l.updated_at,
	%s AS "user",
	%s AS members,
	%s AS followers,
	%s AS unshow,
	%s AS posts,
	jsonb_build_object(
		'members', %s,
		'followers', %s,
		'posts', %s
	) AS _count
FROM lists l
JOIN users u ON u.id = l.userid`,
		UserJSON("u"),
		idArray("userid", "list_details", listFilter("member")),
		idArray("userid", "list_details", listFilter("follower")),
		idArray("userid", "list_details", listFilter("unshow")),
		idArray("postid", "list_details", listFilter("post")),
		count("list_details", listFilter("member")),
		count("list_details", listFilter("follower")),
		count("list_details", listFilter("post")),
	),
}

var advancedRooms = View{
	Name: ViewAdvancedRooms,
	Columns: []string{
		"id", "senderid", "receiverid", "created_at", "updated_at",
		"sender", "receiver", "last_message", "last_activity", "pinned", "disabled", "snooze",
	},
	Query: fmt.Sprintf(`
SELECT
	r.id, r.senderid, r.receiverid, r.created_at, r.updated_at,
	%s AS sender,
	%s AS receiver,
	(
		SELECT jsonb_build_object('id', m.id, 'senderid', m.senderid, 'content', m.content, 'created_at', m.created_at)
		FROM messages m
		WHERE m.roomid = r.id
		ORDER BY m.created_at DESC
		LIMIT 1
	) AS last_message,
	COALESCE((SELECT max(m.created_at) FROM messages m WHERE m.roomid = r.id), r.created_at) AS last_activity,
	%s AS pinned,
	%s AS disabled,
	%s AS snooze
FROM rooms r
JOIN users s ON s.id = r.senderid
JOIN users v ON v.id = r.receiverid`,
		UserJSON("s"),
		UserJSON("v"),
		idArray("userid", "room_details", roomFilter("pinned")),
		idArray("userid", "room_details", roomFilter("disabled")),
		idArray("userid", "room_details", roomFilter("snooze")),
	),
}

var advancedMessages = View{
	Name: ViewAdvancedMessages,
	Columns: []string{
		"id", "roomid", "senderid", "parentid", "content", "media", "created_at", "updated_at",
		"sender", "parent", "reactions",
	},
	Query: fmt.Sprintf(`
SELECT
	m.id, m.roomid, m.senderid, m.parentid, m.content, m.media, m.created_at, m.updated_at,
	%s AS sender,
	(
		SELECT jsonb_build_object('id', pm.id, 'content', pm.content, 'senderid', pm.senderid, 'username', pu.username)
		FROM messages pm JOIN users pu ON pu.id = pm.senderid
		WHERE pm.id = m.parentid
	) AS parent,
	COALESCE((
		SELECT jsonb_agg(jsonb_build_object('user_id', mr.userid, 'content', mr.content) ORDER BY mr.created_at)
		FROM message_reactions mr
		WHERE mr.messageid = m.id
	), '[]'::jsonb) AS reactions
FROM messages m
JOIN users s ON s.id = m.senderid`,
		UserJSON("s"),
	),
}

// Views of the social schema.
var Views = []View{advancedPosts, advancedLists, advancedRooms, advancedMessages}
