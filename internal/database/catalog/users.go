// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package catalog

import (
	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/telar/apps/social/internal/database/query"
)

// UsersFilter narrows the user search. FollowersOf selects the users following
// that id, FollowingOf the users that id follows.
type UsersFilter struct {
	ID          uuid.UUID     `schema:"id"`
	Username    string        `schema:"username"`
	Query       string        `schema:"q"`
	FollowersOf uuid.UUID     `schema:"followersOf"`
	FollowingOf uuid.UUID     `schema:"followingOf"`
	Sort        []query.Order `schema:"-"`
	Page        query.Page    `schema:"-"`
}

const usersTemplate = `
SELECT u.* FROM (
	SELECT
		su.id, su.name, su.username, su.bio, su.location, su.website, su.image, su.background,
		su.verified, su.created_at, su.updated_at,
		COALESCE((SELECT jsonb_agg(f.followerid ORDER BY f.created_at) FROM follows f WHERE f.followingid = su.id), '[]'::jsonb) AS followers,
		COALESCE((SELECT jsonb_agg(f.followingid ORDER BY f.created_at) FROM follows f WHERE f.followerid = su.id), '[]'::jsonb) AS following,
		jsonb_build_object(
			'followers', (SELECT count(*) FROM follows f WHERE f.followingid = su.id),
			'following', (SELECT count(*) FROM follows f WHERE f.followerid = su.id),
			'posts', (SELECT count(*) FROM posts p WHERE p.userid = su.id)
		) AS _count,
		EXISTS (SELECT 1 FROM follows f WHERE f.followerid = $1::uuid AND f.followingid = su.id) AS is_following
	FROM users AS su
) AS u`

var usersDefaultOrder = []query.Order{
	query.OrderBy("created_at", query.Desc).On("u"),
	query.OrderBy("id", query.Desc).On("u"),
}

// Users selects public profiles with their follow graph and whether the
// viewer follows each of them.
func Users(sessionID uuid.UUID, f UsersFilter) (query.Statement, error) {
	where := query.Groups{
		{
			query.Eq("id", query.OptionalUUID(f.ID)).On("u"),
			query.Eq("username", query.OptionalString(f.Username)).On("u"),
			contains("u", "following", f.FollowersOf),
			contains("u", "followers", f.FollowingOf),
		},
		search("u", f.Query, "username", "name"),
	}
	return build(usersTemplate, sessionID, where, usersDefaultOrder, f.Sort, f.Page)
}

// UserWithFollows selects one advanced user.
func UserWithFollows(sessionID, userID uuid.UUID) (query.Statement, error) {
	if userID == uuid.Nil {
		return query.Statement{}, query.Invalid("user id is required")
	}
	return Users(sessionID, UsersFilter{ID: userID, Page: query.Page{Limit: 1}})
}
