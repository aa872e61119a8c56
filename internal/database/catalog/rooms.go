// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package catalog

import (
	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/telar/apps/social/internal/database/query"
)

// RoomMode restricts rooms by the viewer's room state.
type RoomMode string

const (
	RoomModeAll     RoomMode = "all"
	RoomModePinned  RoomMode = "pinned"
	RoomModeSnoozed RoomMode = "snoozed"
)

// RoomsFilter narrows the viewer's rooms. UserID is the other participant.
type RoomsFilter struct {
	ID     uuid.UUID     `schema:"id"`
	UserID uuid.UUID     `schema:"user"`
	Query  string        `schema:"q"`
	Mode   RoomMode      `schema:"mode"`
	Sort   []query.Order `schema:"-"`
	Page   query.Page    `schema:"-"`
}

const roomsTemplate = `
SELECT r.* FROM (
	SELECT ar.*,
		(CASE WHEN ar.senderid = $1::uuid THEN ar.receiver ELSE ar.sender END) AS other,
		(CASE WHEN ar.senderid = $1::uuid THEN ar.receiver ELSE ar.sender END) ->> 'username' AS other_username,
		(CASE WHEN ar.senderid = $1::uuid THEN ar.receiver ELSE ar.sender END) ->> 'name' AS other_name,
		ar.pinned @> jsonb_build_array($1::uuid) AS is_pinned,
		ar.disabled @> jsonb_build_array($1::uuid) AS is_disabled,
		ar.snooze @> jsonb_build_array($1::uuid) AS is_snoozed
	FROM advanced_rooms AS ar
	WHERE ar.senderid = $1::uuid OR ar.receiverid = $1::uuid
) AS r`

var roomsDefaultOrder = []query.Order{
	query.OrderBy("is_pinned", query.Desc).On("r"),
	query.OrderBy("last_activity", query.Desc).On("r"),
	query.OrderBy("created_at", query.Desc).On("r"),
}

// Rooms selects the rooms the viewer takes part in and has not disabled,
// pinned rooms first, then by latest activity.
func Rooms(sessionID uuid.UUID, f RoomsFilter) (query.Statement, error) {
	var mode query.Where
	switch f.Mode {
	case "", RoomModeAll:
	case RoomModePinned:
		mode = query.Eq("is_pinned", query.Bool(true)).On("r")
	case RoomModeSnoozed:
		mode = query.Eq("is_snoozed", query.Bool(true)).On("r")
	default:
		return query.Statement{}, query.Invalid("mode %q", f.Mode)
	}

	where := query.Groups{
		{
			query.Eq("is_disabled", query.Bool(false)).On("r"),
			query.Eq("id", query.OptionalUUID(f.ID)).On("r"),
			query.Cond("other", query.OpJSONField, query.OptionalUUID(f.UserID)).Sub("id").On("r"),
			mode,
		},
		search("r", f.Query, "other_username", "other_name"),
	}

	return build(roomsTemplate, sessionID, where, roomsDefaultOrder, f.Sort, f.Page)
}
