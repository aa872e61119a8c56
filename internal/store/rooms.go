// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package store

import (
	"context"
	"strings"

	uuid "github.com/gofrs/uuid"
	dbi "github.com/qolzam/telar/apps/social/internal/database/interfaces"
	"github.com/qolzam/telar/apps/social/internal/database/catalog"
	"github.com/qolzam/telar/apps/social/internal/database/query"
	"github.com/qolzam/telar/apps/social/internal/database/schema"
	"github.com/qolzam/telar/apps/social/models"
)

// MaxReactionLength is the size limit of a message reaction.
const MaxReactionLength = 16

// NewMessage carries a direct message. The room between sender and receiver
// is created on the first message.
type NewMessage struct {
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	ParentID   uuid.UUID
	Content    string
	Media      []string
}

// RoomDetailInput toggles a pinned, disabled or snooze marker of the actor on
// a room.
type RoomDetailInput struct {
	Actor  uuid.UUID
	RoomID uuid.UUID
	Type   models.RoomDetailType
	Add    bool
}

// MessageReactionInput sets or clears the reaction of the actor on a message.
type MessageReactionInput struct {
	Actor     uuid.UUID
	MessageID uuid.UUID
	Content   string
	Add       bool
}

// GetRooms runs the rooms catalog for viewer.
func (s *Session) GetRooms(ctx context.Context, viewer uuid.UUID, f catalog.RoomsFilter) dbi.Result[[]models.AdvancedRoom] {
	stmt, err := catalog.Rooms(viewer, f)
	return list[models.AdvancedRoom](ctx, s, "GetRooms", stmt, err)
}

// GetRoom fetches one room of viewer.
func (s *Session) GetRoom(ctx context.Context, viewer, id uuid.UUID) dbi.Result[models.AdvancedRoom] {
	if id == uuid.Nil {
		return dbi.NotFound[models.AdvancedRoom]()
	}
	stmt, err := catalog.Rooms(viewer, catalog.RoomsFilter{ID: id, Page: query.Page{Limit: 1}})
	return first(list[models.AdvancedRoom](ctx, s, "GetRoom", stmt, err))
}

// participantRoom fetches a room row only when user takes part in it.
func (s *Session) participantRoom(ctx context.Context, op string, user, id uuid.UUID) dbi.Result[models.Room] {
	stmt, err := s.compiler.Select(query.Select{
		Table: schema.TableRooms,
		Where: query.Groups{
			{query.Eq("id", query.UUID(id))},
			{query.Eq("senderid", query.UUID(user)), query.Eq("receiverid", query.UUID(user)).Or()},
		},
	})
	return get[models.Room](ctx, s, op, stmt, err)
}

// HandleRoomDetail sets or clears a marker and returns whether it is set
// afterwards.
func (s *Session) HandleRoomDetail(ctx context.Context, in RoomDetailInput) dbi.Result[bool] {
	const op = "HandleRoomDetail"
	if !in.Type.Valid() {
		return dbi.Failed[bool](query.Invalid("unknown room detail %q", in.Type))
	}

	var set bool
	err := s.withTx(ctx, op, func(ctx context.Context) error {
		if r := s.participantRoom(ctx, op, in.Actor, in.RoomID); !r.IsOK() {
			return r.Err()
		}

		key := query.Groups{{
			query.Eq("roomid", query.UUID(in.RoomID)),
			query.Eq("type", query.String(string(in.Type))),
			query.Eq("userid", query.UUID(in.Actor)),
		}}
		stmt, err := s.compiler.Select(query.Select{Table: schema.TableRoomDetails, Where: key, Lock: true})
		existing := get[models.RoomDetail](ctx, s, op, stmt, err)
		if existing.IsFailed() {
			return existing.Err()
		}

		switch {
		case in.Add && existing.IsNotFound():
			id, err := uuid.NewV4()
			if err != nil {
				return err
			}
			stmt, err := s.compiler.Insert(query.Insert{
				Table:  schema.TableRoomDetails,
				Fields: []string{"id", "roomid", "type", "userid"},
				Values: []query.Param{
					query.UUID(id),
					query.UUID(in.RoomID),
					query.String(string(in.Type)),
					query.UUID(in.Actor),
				},
				OnConflictDoNothing: true,
			})
			if r := s.exec(ctx, op, stmt, err); r.IsFailed() && !dbi.IsDuplicateKey(r.Err()) {
				return r.Err()
			}
		case !in.Add && existing.IsOK():
			stmt, err := s.compiler.Delete(query.Delete{Table: schema.TableRoomDetails, Where: key})
			if r := s.exec(ctx, op, stmt, err); r.IsFailed() {
				return r.Err()
			}
		}
		set = in.Add
		return nil
	})
	return txResult(ctx, op, set, err)
}

// roomBetween finds the room of a pair in either direction.
func (s *Session) roomBetween(ctx context.Context, op string, a, b uuid.UUID) dbi.Result[models.Room] {
	stmt, err := s.compiler.Select(query.Select{
		Table: schema.TableRooms,
		Where: query.Groups{{
			query.Eq("senderid", query.UUID(a)),
			query.Eq("receiverid", query.UUID(b)),
			query.Eq("senderid", query.UUID(b)).Or(),
			query.Eq("receiverid", query.UUID(a)),
		}},
		Limit: 1,
		Lock:  true,
	})
	return get[models.Room](ctx, s, op, stmt, err)
}

// SendMessage stores a message in one transaction: it opens the room when
// missing, re-enables it for both participants and returns the advanced
// message.
func (s *Session) SendMessage(ctx context.Context, in NewMessage) dbi.Result[models.AdvancedMessage] {
	const op = "SendMessage"
	content := strings.TrimSpace(in.Content)
	if content == "" && len(in.Media) == 0 {
		return dbi.Failed[models.AdvancedMessage](query.Invalid("message needs content or media"))
	}
	if in.SenderID == in.ReceiverID {
		return dbi.Failed[models.AdvancedMessage](query.Invalid("cannot message yourself"))
	}

	var msg models.AdvancedMessage
	err := s.withTx(ctx, op, func(ctx context.Context) error {
		room := s.roomBetween(ctx, op, in.SenderID, in.ReceiverID)
		if room.IsFailed() {
			return room.Err()
		}
		if room.IsNotFound() {
			id, err := uuid.NewV4()
			if err != nil {
				return err
			}
			stmt, err := s.compiler.Insert(query.Insert{
				Table:               schema.TableRooms,
				Fields:              []string{"id", "senderid", "receiverid"},
				Values:              []query.Param{query.UUID(id), query.UUID(in.SenderID), query.UUID(in.ReceiverID)},
				OnConflictDoNothing: true,
			})
			room = get[models.Room](ctx, s, op, stmt, err)
			if room.IsNotFound() {
				// A concurrent first message opened the room in either direction.
				room = s.roomBetween(ctx, op, in.SenderID, in.ReceiverID)
			}
			if !room.IsOK() {
				return room.Err()
			}
		}
		roomID := room.Value().ID

		stmt, err := s.compiler.Delete(query.Delete{
			Table: schema.TableRoomDetails,
			Where: query.Groups{{
				query.Eq("roomid", query.UUID(roomID)),
				query.Eq("type", query.String(string(models.RoomDisabled))),
			}},
		})
		if r := s.exec(ctx, op, stmt, err); r.IsFailed() {
			return r.Err()
		}

		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		stmt, err = s.compiler.Insert(query.Insert{
			Table:  schema.TableMessages,
			Fields: []string{"id", "roomid", "senderid", "parentid", "content", "media"},
			Values: []query.Param{
				query.UUID(id),
				query.UUID(roomID),
				query.UUID(in.SenderID),
				nullableUUID(in.ParentID),
				nullableString(content),
				query.JSON(models.Media(in.Media)),
			},
		})
		if r := get[models.Message](ctx, s, op, stmt, err); !r.IsOK() {
			return r.Err()
		}

		stmt, err = s.compiler.Update(query.Update{
			Table:  schema.TableRooms,
			Fields: []string{"updated_at"},
			Values: []query.Param{query.Time(now())},
			Where:  query.Groups{{query.Eq("id", query.UUID(roomID))}},
		})
		if r := s.exec(ctx, op, stmt, err); r.IsFailed() {
			return r.Err()
		}

		r := s.getMessage(ctx, op, id)
		msg = r.Value()
		return r.Err()
	})
	return txResult(ctx, op, msg, err)
}

func (s *Session) getMessage(ctx context.Context, op string, id uuid.UUID) dbi.Result[models.AdvancedMessage] {
	stmt, err := s.compiler.Select(query.Select{
		Table: schema.ViewAdvancedMessages,
		Where: query.Groups{{query.Eq("id", query.UUID(id))}},
	})
	return get[models.AdvancedMessage](ctx, s, op, stmt, err)
}

// GetMessages returns one page of a room of viewer, newest first.
func (s *Session) GetMessages(ctx context.Context, viewer, roomID uuid.UUID, page query.Page) dbi.Result[[]models.AdvancedMessage] {
	const op = "GetMessages"
	if r := s.participantRoom(ctx, op, viewer, roomID); !r.IsOK() {
		return dbi.Map(r, func(models.Room) []models.AdvancedMessage { return nil })
	}
	if page.Limit <= 0 {
		page.Limit = DefaultPageSize
	}
	stmt, err := s.compiler.Select(query.Select{
		Table:  schema.ViewAdvancedMessages,
		Where:  query.Groups{{query.Eq("roomid", query.UUID(roomID))}},
		Order:  []query.Order{query.OrderBy("created_at", query.Desc), query.OrderBy("id", query.Desc)},
		Limit:  ValidateLimit(page.Limit),
		Offset: page.RowOffset(),
	})
	return list[models.AdvancedMessage](ctx, s, op, stmt, err)
}

// SearchMessages runs the message search catalog over the rooms of viewer.
func (s *Session) SearchMessages(ctx context.Context, viewer uuid.UUID, f catalog.MessagesFilter) dbi.Result[[]models.AdvancedMessage] {
	stmt, err := catalog.MessagesSearch(viewer, f)
	return list[models.AdvancedMessage](ctx, s, "SearchMessages", stmt, err)
}

// DeleteMessage removes a message sent by actor.
func (s *Session) DeleteMessage(ctx context.Context, actor, id uuid.UUID) dbi.Result[bool] {
	stmt, err := s.compiler.Delete(query.Delete{
		Table: schema.TableMessages,
		Where: query.Groups{{
			query.Eq("id", query.UUID(id)),
			query.Eq("senderid", query.UUID(actor)),
		}},
	})
	return affected(s.exec(ctx, "DeleteMessage", stmt, err))
}

// HandleMessageReaction sets, replaces or clears the reaction of the actor
// and returns the refreshed message.
func (s *Session) HandleMessageReaction(ctx context.Context, in MessageReactionInput) dbi.Result[models.AdvancedMessage] {
	const op = "HandleMessageReaction"
	content := strings.TrimSpace(in.Content)
	if in.Add && (content == "" || len([]rune(content)) > MaxReactionLength) {
		return dbi.Failed[models.AdvancedMessage](query.Invalid("reaction must be 1 to %d characters", MaxReactionLength))
	}

	var msg models.AdvancedMessage
	err := s.withTx(ctx, op, func(ctx context.Context) error {
		stmt, err := s.compiler.Select(query.Select{
			Table: schema.TableMessages,
			Where: query.Groups{{query.Eq("id", query.UUID(in.MessageID))}},
		})
		m := get[models.Message](ctx, s, op, stmt, err)
		if !m.IsOK() {
			return m.Err()
		}
		if r := s.participantRoom(ctx, op, in.Actor, m.Value().RoomID); !r.IsOK() {
			return r.Err()
		}

		key := query.Groups{{
			query.Eq("messageid", query.UUID(in.MessageID)),
			query.Eq("userid", query.UUID(in.Actor)),
		}}
		stmt, err = s.compiler.Select(query.Select{Table: schema.TableMessageReactions, Where: key, Lock: true})
		existing := get[models.MessageReaction](ctx, s, op, stmt, err)
		if existing.IsFailed() {
			return existing.Err()
		}

		switch {
		case in.Add && existing.IsNotFound():
			id, err := uuid.NewV4()
			if err != nil {
				return err
			}
			stmt, err := s.compiler.Insert(query.Insert{
				Table:               schema.TableMessageReactions,
				Fields:              []string{"id", "messageid", "userid", "content"},
				Values:              []query.Param{query.UUID(id), query.UUID(in.MessageID), query.UUID(in.Actor), query.String(content)},
				OnConflictDoNothing: true,
			})
			if r := s.exec(ctx, op, stmt, err); r.IsFailed() && !dbi.IsDuplicateKey(r.Err()) {
				return r.Err()
			}
		case in.Add && existing.Value().Content != content:
			stmt, err := s.compiler.Update(query.Update{
				Table:  schema.TableMessageReactions,
				Fields: []string{"content"},
				Values: []query.Param{query.String(content)},
				Where:  key,
			})
			if r := s.exec(ctx, op, stmt, err); r.IsFailed() {
				return r.Err()
			}
		case !in.Add && existing.IsOK():
			stmt, err := s.compiler.Delete(query.Delete{Table: schema.TableMessageReactions, Where: key})
			if r := s.exec(ctx, op, stmt, err); r.IsFailed() {
				return r.Err()
			}
		}

		r := s.getMessage(ctx, op, in.MessageID)
		msg = r.Value()
		return r.Err()
	})
	return txResult(ctx, op, msg, err)
}
