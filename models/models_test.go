// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package models

import (
	"encoding/json"
	"testing"

	uuid "github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDs_ScanAndMarshal(t *testing.T) {
	id := uuid.Must(uuid.NewV4())

	var ids IDs
	require.NoError(t, ids.Scan([]byte(`["`+id.String()+`"]`)))
	assert.Equal(t, IDs{id}, ids)
	assert.True(t, ids.Contains(id))

	var empty IDs
	require.NoError(t, empty.Scan(nil))
	data, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	var unset IDs
	data, err = json.Marshal(unset)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	assert.Error(t, ids.Scan(42))
}

func TestAdvancedPost_JSONShape(t *testing.T) {
	var post AdvancedPost
	require.NoError(t, post.Count.Scan(`{"likes":2,"comments":0}`))
	require.NoError(t, post.User.Scan(`{"id":"`+uuid.Nil.String()+`","name":"Ann","username":"ann","image":null,"verified":true}`))

	data, err := json.Marshal(post)
	require.NoError(t, err)

	var shape map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &shape))
	assert.Nil(t, shape["parent"], "absent nested entity is null")
	assert.Equal(t, []interface{}{}, shape["likes"], "absent arrays are empty")
	assert.Equal(t, []interface{}{}, shape["images"])
	assert.Equal(t, map[string]interface{}{"likes": 2.0, "comments": 0.0}, shape["_count"])
	assert.Equal(t, "ann", shape["user"].(map[string]interface{})["username"])
}

func TestNestedSummaries_NullStaysNil(t *testing.T) {
	var msg AdvancedMessage
	assert.Nil(t, msg.Parent)

	require.NoError(t, msg.Reactions.Scan([]byte(`[{"user_id":"`+uuid.Nil.String()+`","content":"🔥"}]`)))
	assert.Len(t, msg.Reactions, 1)
	assert.Equal(t, "🔥", msg.Reactions[0].Content)

	var room AdvancedRoom
	data, err := json.Marshal(room)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"last_message":null`)
	assert.NotContains(t, string(data), "other_username")
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, ReactionBookmark.Valid())
	assert.False(t, ReactionType("love").Valid())
	assert.True(t, ListUnshow.Valid())
	assert.False(t, ListDetailType("owner").Valid())
	assert.True(t, RoomSnooze.Valid())
	assert.True(t, ViewDetailExpands.Valid())
	assert.False(t, ViewField("shares").Valid())
	assert.Equal(t, int64(3), Views{Follows: 3}.Get(ViewFollows))
}
