// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package models

import (
	"encoding/json"
	"time"

	uuid "github.com/gofrs/uuid"
)

// RoomDetailType is a per-user room state.
type RoomDetailType string

const (
	RoomPinned   RoomDetailType = "pinned"
	RoomDisabled RoomDetailType = "disabled"
	RoomSnooze   RoomDetailType = "snooze"
)

// Valid reports whether t is a known room state.
func (t RoomDetailType) Valid() bool {
	switch t {
	case RoomPinned, RoomDisabled, RoomSnooze:
		return true
	}
	return false
}

// Room is a direct conversation between two users.
type Room struct {
	ID         uuid.UUID `json:"id" db:"id"`
	SenderID   uuid.UUID `json:"senderid" db:"senderid"`
	ReceiverID uuid.UUID `json:"receiverid" db:"receiverid"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Has reports whether user takes part in the room.
func (r Room) Has(user uuid.UUID) bool {
	return r.SenderID == user || r.ReceiverID == user
}

// RoomDetail records a per-user room state.
type RoomDetail struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	RoomID    uuid.UUID      `json:"roomid" db:"roomid"`
	Type      RoomDetailType `json:"type" db:"type"`
	UserID    uuid.UUID      `json:"userid" db:"userid"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// MessageSummary is the last message of a room.
type MessageSummary struct {
	ID        uuid.UUID `json:"id"`
	SenderID  uuid.UUID `json:"senderid"`
	Content   *string   `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Scan implements sql.Scanner interface
func (m *MessageSummary) Scan(value interface{}) error {
	return scanJSON(value, m)
}

// AdvancedRoom is a row of advanced_rooms with the viewer flags.
type AdvancedRoom struct {
	Room
	Sender        UserSummary     `json:"sender" db:"sender"`
	Receiver      UserSummary     `json:"receiver" db:"receiver"`
	LastMessage   *MessageSummary `json:"last_message" db:"last_message"`
	LastActivity  time.Time       `json:"last_activity" db:"last_activity"`
	Pinned        IDs             `json:"pinned" db:"pinned"`
	Disabled      IDs             `json:"disabled" db:"disabled"`
	Snooze        IDs             `json:"snooze" db:"snooze"`
	Other         UserSummary     `json:"other" db:"other"`
	OtherUsername string          `json:"-" db:"other_username"`
	OtherName     string          `json:"-" db:"other_name"`
	IsPinned      bool            `json:"is_pinned" db:"is_pinned"`
	IsDisabled    bool            `json:"is_disabled" db:"is_disabled"`
	IsSnoozed     bool            `json:"is_snoozed" db:"is_snoozed"`
}

// Message is the messages table row.
type Message struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	RoomID    uuid.UUID     `json:"roomid" db:"roomid"`
	SenderID  uuid.UUID     `json:"senderid" db:"senderid"`
	ParentID  uuid.NullUUID `json:"parentid" db:"parentid"`
	Content   *string       `json:"content" db:"content"`
	Media     Media         `json:"media" db:"media"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// ParentSummary is the message a reply points to.
type ParentSummary struct {
	ID       uuid.UUID `json:"id"`
	Content  *string   `json:"content"`
	SenderID uuid.UUID `json:"senderid"`
	Username string    `json:"username"`
}

// Scan implements sql.Scanner interface
func (p *ParentSummary) Scan(value interface{}) error {
	return scanJSON(value, p)
}

// ReactionSummary is one emoji reaction on a message.
type ReactionSummary struct {
	UserID  uuid.UUID `json:"user_id"`
	Content string    `json:"content"`
}

// ReactionSummaries is the jsonb reactions array of a message.
type ReactionSummaries []ReactionSummary

// Scan implements sql.Scanner interface
func (r *ReactionSummaries) Scan(value interface{}) error {
	*r = ReactionSummaries{}
	return scanJSON(value, (*[]ReactionSummary)(r))
}

// AdvancedMessage is a row of advanced_messages.
type AdvancedMessage struct {
	Message
	Sender    UserSummary       `json:"sender" db:"sender"`
	Parent    *ParentSummary    `json:"parent" db:"parent"`
	Reactions ReactionSummaries `json:"reactions" db:"reactions"`
}

// MessageReaction is the message_reactions table row.
type MessageReaction struct {
	ID        uuid.UUID `json:"id" db:"id"`
	MessageID uuid.UUID `json:"messageid" db:"messageid"`
	UserID    uuid.UUID `json:"userid" db:"userid"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// MarshalJSON implements json.Marshaler
func (r ReactionSummaries) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]ReactionSummary(r))
}
