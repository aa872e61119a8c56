// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package catalog

import (
	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/telar/apps/social/internal/database/query"
)

// MessagesFilter narrows a message search to one room and a content match.
type MessagesFilter struct {
	RoomID uuid.UUID     `schema:"room"`
	Query  string        `schema:"q"`
	Sort   []query.Order `schema:"-"`
	Page   query.Page    `schema:"-"`
}

const messagesTemplate = `
SELECT m.* FROM advanced_messages AS m
JOIN rooms AS rm ON rm.id = m.roomid AND (rm.senderid = $1::uuid OR rm.receiverid = $1::uuid)`

var messagesDefaultOrder = []query.Order{
	query.OrderBy("created_at", query.Desc).On("m"),
}

// MessagesSearch selects advanced messages from the viewer's rooms, newest first.
func MessagesSearch(sessionID uuid.UUID, f MessagesFilter) (query.Statement, error) {
	where := query.Groups{
		{query.Eq("roomid", query.OptionalUUID(f.RoomID)).On("m")},
		search("m", f.Query, "content"),
	}
	return build(messagesTemplate, sessionID, where, messagesDefaultOrder, f.Sort, f.Page)
}
