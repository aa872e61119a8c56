// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package catalog

import (
	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/telar/apps/social/internal/database/query"
)

// Relation selects lists by how a user relates to them.
type Relation string

const (
	RelationOwner    Relation = "owner"
	RelationMember   Relation = "member"
	RelationFollower Relation = "follower"
	RelationUnshow   Relation = "unshow"
)

// ListsFilter narrows the lists visible to the viewer. UserID is the subject
// of Relation and defaults to the viewer.
type ListsFilter struct {
	ID       uuid.UUID     `schema:"id"`
	UserID   uuid.UUID     `schema:"user"`
	Query    string        `schema:"q"`
	Make     string        `schema:"make"`
	Relation Relation      `schema:"relation"`
	Sort     []query.Order `schema:"-"`
	Page     query.Page    `schema:"-"`
}

const listsTemplate = `
SELECT l.* FROM (
	SELECT al.*,
		al.userid = $1::uuid AS mine,
		al.followers @> jsonb_build_array($1::uuid) AS following,
		al.unshow @> jsonb_build_array($1::uuid) AS hidden
	FROM advanced_lists AS al
) AS l`

var listsDefaultOrder = []query.Order{
	query.OrderBy("following", query.Desc).On("l"),
	query.OrderBy("created_at", query.Desc).On("l"),
}

// Lists selects advanced lists with the viewer flags mine, following and
// hidden. The owner sees all of their lists, everyone else only public ones.
func Lists(sessionID uuid.UUID, f ListsFilter) (query.Statement, error) {
	subject := f.UserID
	if subject == uuid.Nil {
		subject = sessionID
	}

	var relation query.Where
	switch f.Relation {
	case "":
		relation = query.Eq("userid", query.OptionalUUID(f.UserID)).On("l")
	case RelationOwner:
		relation = query.Eq("userid", query.UUID(subject)).On("l")
	case RelationMember:
		relation = contains("l", "members", subject)
	case RelationFollower:
		relation = contains("l", "followers", subject)
	case RelationUnshow:
		relation = contains("l", "unshow", subject)
	default:
		return query.Statement{}, query.Invalid("relation %q", f.Relation)
	}

	switch f.Make {
	case "", "public", "private":
	default:
		return query.Statement{}, query.Invalid("make %q", f.Make)
	}

	where := query.Groups{
		{
			query.Eq("mine", query.Bool(true)).On("l"),
			query.Eq("make", query.String("public")).On("l").Or(),
		},
		{
			query.Eq("id", query.OptionalUUID(f.ID)).On("l"),
			query.Eq("make", query.OptionalString(f.Make)).On("l"),
			relation,
		},
		search("l", f.Query, "name", "description"),
	}

	return build(listsTemplate, sessionID, where, listsDefaultOrder, f.Sort, f.Page)
}
