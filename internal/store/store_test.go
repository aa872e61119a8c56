// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	uuid "github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbi "github.com/qolzam/telar/apps/social/internal/database/interfaces"
	"github.com/qolzam/telar/apps/social/internal/database/postgres"
	"github.com/qolzam/telar/apps/social/internal/database/query"
	"github.com/qolzam/telar/apps/social/internal/database/schema"
	"github.com/qolzam/telar/apps/social/models"
)

var (
	ts    = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	alice = uuid.Must(uuid.FromString("0b7c3f4e-8a56-4c2e-9f1a-2d3e4f5a6b01"))
	bob   = uuid.Must(uuid.FromString("1c8d4a5f-9b67-4d3f-8a2b-3e4f5a6b7c02"))
)

func newSession(t *testing.T) (*Session, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(mockDB, "postgres")
	t.Cleanup(func() { _ = db.Close() })

	sess := New(postgres.NewClientFromDB(db, "public"), schema.Default()).Session()
	t.Cleanup(func() { _ = sess.Release() })
	return sess, mock
}

func sqlText(s string) string {
	return regexp.QuoteMeta(s)
}

var userColumns = []string{"id", "name", "username", "email", "password", "bio", "location", "website", "image", "background", "verified", "created_at", "updated_at"}

func userRow(id uuid.UUID, username string) *sqlmock.Rows {
	return sqlmock.NewRows(userColumns).
		AddRow(id.String(), "Alice", username, username+"@example.com", "hash", nil, nil, nil, nil, nil, false, ts, ts)
}

var advancedPostColumns = []string{
	"id", "userid", "parentid", "originalid", "text", "images", "video", "pinned", "created_at", "updated_at",
	"user", "parent", "original", "likes", "reposts", "bookmarks", "comments", "_count",
}

func addPost(rows *sqlmock.Rows, id, owner uuid.UUID, likes string) *sqlmock.Rows {
	user := fmt.Sprintf(`{"id":"%s","name":"Alice","username":"alice","image":null,"verified":false}`, owner)
	return rows.AddRow(id.String(), owner.String(), nil, nil, "hello", []byte("[]"), nil, false, ts, ts,
		[]byte(user), nil, nil, []byte(likes), []byte("[]"), []byte("[]"), []byte("[]"), []byte(`{"likes":0}`))
}

func postRow(id, owner uuid.UUID, likes string) *sqlmock.Rows {
	return addPost(sqlmock.NewRows(advancedPostColumns), id, owner, likes)
}

var viewsColumns = []string{"postid", "impressions", "engagements", "detail_expands", "profile_visits", "follows", "created_at", "updated_at"}

func TestSession_LazyAndReleaseOnce(t *testing.T) {
	sess, mock := newSession(t)

	assert.Nil(t, sess.conn)
	require.NoError(t, sess.Release())
	assert.True(t, errors.Is(sess.Release(), dbi.ErrSessionReleased))

	r := sess.GetUser(context.Background(), alice)
	require.True(t, r.IsFailed())
	assert.True(t, errors.Is(r.Err(), dbi.ErrSessionReleased))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUser_NotFound(t *testing.T) {
	sess, mock := newSession(t)
	mock.ExpectQuery(sqlText(`SELECT * FROM users WHERE ( "id" = $1 )`)).
		WithArgs(alice.String()).
		WillReturnRows(sqlmock.NewRows(userColumns))

	r := sess.GetUser(context.Background(), alice)
	assert.True(t, r.IsNotFound())
	assert.True(t, errors.Is(r.Err(), dbi.ErrNoDocuments))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_InsertThenSelect(t *testing.T) {
	sess, mock := newSession(t)
	ctx := context.Background()

	mock.ExpectQuery(sqlText(`INSERT INTO users ("id", "name", "username", "email", "password") VALUES ($1, $2, $3, $4, $5) RETURNING *`)).
		WithArgs(sqlmock.AnyArg(), "Alice", "alice", "alice@example.com", "hash").
		WillReturnRows(userRow(alice, "alice"))
	mock.ExpectQuery(sqlText(`SELECT * FROM users WHERE ( "id" = $1 )`)).
		WithArgs(alice.String()).
		WillReturnRows(userRow(alice, "alice"))

	created := sess.CreateUser(ctx, NewUser{Name: "Alice", Username: "alice", Email: "Alice@Example.com", PasswordHash: "hash"})
	require.True(t, created.IsOK(), "%v", created.Err())

	fetched := sess.GetUser(ctx, created.Value().ID)
	require.True(t, fetched.IsOK())
	assert.Equal(t, created.Value(), fetched.Value())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_DuplicateKey(t *testing.T) {
	sess, mock := newSession(t)
	mock.ExpectQuery(sqlText(`INSERT INTO users`)).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	r := sess.CreateUser(context.Background(), NewUser{Name: "Alice", Username: "alice", Email: "a@example.com", PasswordHash: "hash"})
	require.True(t, r.IsFailed())
	assert.True(t, errors.Is(r.Err(), dbi.ErrDuplicateKey))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUser_EmptyPatchOnlyTouchesTimestamp(t *testing.T) {
	sess, mock := newSession(t)
	mock.ExpectExec(sqlText(`UPDATE users SET "updated_at" = $1 WHERE ( "id" = $2 )`)).
		WithArgs(sqlmock.AnyArg(), alice.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	r := sess.UpdateUser(context.Background(), alice, UserPatch{})
	assert.True(t, r.IsNotFound())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleFollow_RejectsSelf(t *testing.T) {
	sess, mock := newSession(t)
	r := sess.HandleFollow(context.Background(), alice, alice, true)
	require.True(t, r.IsFailed())
	assert.True(t, query.IsConstructionError(r.Err()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleReaction_AddTwiceInsertsOnce(t *testing.T) {
	sess, mock := newSession(t)
	ctx := context.Background()
	post := uuid.Must(uuid.NewV4())
	likes := fmt.Sprintf(`["%s"]`, alice)
	selectReaction := sqlText(`SELECT * FROM reactions WHERE ( "type" = $1 AND "userid" = $2 AND "postid" = $3 AND "commentid" IS NULL ) LIMIT 1 FOR UPDATE`)
	selectPost := sqlText(`SELECT * FROM advanced_posts WHERE ( "id" = $1 )`)

	mock.ExpectBegin()
	mock.ExpectQuery(selectReaction).WithArgs("like", alice.String(), post.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "userid", "postid", "commentid", "created_at"}))
	mock.ExpectExec(sqlText(`INSERT INTO reactions ("id", "type", "userid", "postid", "commentid") VALUES ($1, $2, $3, $4, $5) ON CONFLICT DO NOTHING RETURNING *`)).
		WithArgs(sqlmock.AnyArg(), "like", alice.String(), post.String(), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(selectPost).WithArgs(post.String()).WillReturnRows(postRow(post, bob, likes))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(selectReaction).WithArgs("like", alice.String(), post.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "userid", "postid", "commentid", "created_at"}).
			AddRow(uuid.Must(uuid.NewV4()).String(), "like", alice.String(), post.String(), nil, ts))
	mock.ExpectQuery(selectPost).WithArgs(post.String()).WillReturnRows(postRow(post, bob, likes))
	mock.ExpectCommit()

	in := ReactionInput{Actor: alice, PostID: post, Type: models.ReactionLike, Add: true}
	for i := 0; i < 2; i++ {
		r := sess.HandleReaction(ctx, in)
		require.True(t, r.IsOK(), "call %d: %v", i, r.Err())
		assert.True(t, r.Value().Likes.Contains(alice))
		assert.Equal(t, bob, r.Value().User.ID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleReaction_InvalidType(t *testing.T) {
	sess, mock := newSession(t)
	r := sess.HandleReaction(context.Background(), ReactionInput{Actor: alice, PostID: bob, Type: "love", Add: true})
	require.True(t, r.IsFailed())
	assert.True(t, errors.Is(r.Err(), query.ErrInvalidFilter))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementViews(t *testing.T) {
	sess, mock := newSession(t)
	ctx := context.Background()
	post := uuid.Must(uuid.NewV4())
	lock := sqlText(`SELECT * FROM views WHERE ( "postid" = $1 ) FOR UPDATE`)
	reload := sqlText(`SELECT * FROM views WHERE ( "postid" = $1 )`)

	t.Run("first view inserts one", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lock).WithArgs(post.String()).WillReturnRows(sqlmock.NewRows(viewsColumns))
		mock.ExpectExec(sqlText(`INSERT INTO views ("postid", "impressions", "engagements", "detail_expands", "profile_visits", "follows") VALUES ($1, $2, $3, $4, $5, $6)`)).
			WithArgs(post.String(), int64(0), int64(0), int64(1), int64(0), int64(0)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(reload).WithArgs(post.String()).
			WillReturnRows(sqlmock.NewRows(viewsColumns).AddRow(post.String(), 0, 0, 1, 0, 0, ts, ts))
		mock.ExpectCommit()

		r := sess.IncrementViews(ctx, post, models.ViewDetailExpands)
		require.True(t, r.IsOK(), "%v", r.Err())
		assert.Equal(t, int64(1), r.Value().DetailExpands)
	})

	t.Run("next view increments", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lock).WithArgs(post.String()).
			WillReturnRows(sqlmock.NewRows(viewsColumns).AddRow(post.String(), 0, 0, 1, 0, 0, ts, ts))
		mock.ExpectExec(sqlText(`UPDATE views SET "detail_expands" = $1, "updated_at" = $2 WHERE ( "postid" = $3 )`)).
			WithArgs(int64(2), sqlmock.AnyArg(), post.String()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(reload).WithArgs(post.String()).
			WillReturnRows(sqlmock.NewRows(viewsColumns).AddRow(post.String(), 0, 0, 2, 0, 0, ts, ts))
		mock.ExpectCommit()

		r := sess.IncrementViews(ctx, post, models.ViewDetailExpands)
		require.True(t, r.IsOK(), "%v", r.Err())
		assert.Equal(t, int64(2), r.Value().Get(models.ViewDetailExpands))
	})

	t.Run("unknown field", func(t *testing.T) {
		r := sess.IncrementViews(ctx, post, "shares")
		require.True(t, r.IsFailed())
		assert.True(t, errors.Is(r.Err(), query.ErrUnknownField))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePost_NestedWritesShareOneTransaction(t *testing.T) {
	sess, mock := newSession(t)
	post := uuid.Must(uuid.NewV4())

	mock.ExpectBegin()
	mock.ExpectQuery(sqlText(`INSERT INTO posts ("id", "userid", "parentid", "originalid", "text", "images", "video") VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING *`)).
		WithArgs(sqlmock.AnyArg(), alice.String(), nil, nil, "hello #GoLang", "[]", nil).
		WillReturnRows(sqlmock.NewRows(advancedPostColumns[:10]).
			AddRow(post.String(), alice.String(), nil, nil, "hello #GoLang", []byte("[]"), nil, false, ts, ts))
	mock.ExpectQuery(sqlText(`SELECT * FROM views WHERE ( "postid" = $1 ) FOR UPDATE`)).
		WillReturnRows(sqlmock.NewRows(viewsColumns))
	mock.ExpectExec(sqlText(`INSERT INTO views`)).
		WithArgs(sqlmock.AnyArg(), int64(0), int64(0), int64(0), int64(0), int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(sqlText(`SELECT * FROM views WHERE ( "postid" = $1 )`)).
		WillReturnRows(sqlmock.NewRows(viewsColumns).AddRow(post.String(), 0, 0, 0, 0, 0, ts, ts))
	mock.ExpectQuery(sqlText(`SELECT * FROM hashtags WHERE ( "type" = $1 AND "title" = $2 ) FOR UPDATE`)).
		WithArgs("tag", "golang").
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "title", "count", "weight", "created_at", "updated_at"}))
	mock.ExpectQuery(sqlText(`INSERT INTO hashtags ("id", "type", "title", "count", "weight")`)).
		WithArgs(sqlmock.AnyArg(), "tag", "golang", int64(1), float64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "title", "count", "weight", "created_at", "updated_at"}).
			AddRow(uuid.Must(uuid.NewV4()).String(), "tag", "golang", 1, 1.0, ts, ts))
	mock.ExpectQuery(sqlText(`SELECT * FROM advanced_posts WHERE ( "id" = $1 )`)).
		WillReturnRows(postRow(post, alice, "[]"))
	mock.ExpectCommit()

	r := sess.CreatePost(context.Background(), NewPost{UserID: alice, Text: " hello #GoLang "})
	require.True(t, r.IsOK(), "%v", r.Err())
	assert.Equal(t, post, r.Value().ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePost_Validation(t *testing.T) {
	sess, mock := newSession(t)
	long := make([]rune, MaxPostLength+1)
	for i := range long {
		long[i] = 'a'
	}

	for _, in := range []NewPost{{UserID: alice}, {UserID: alice, Text: string(long)}} {
		r := sess.CreatePost(context.Background(), in)
		require.True(t, r.IsFailed())
		assert.True(t, query.IsConstructionError(r.Err()))
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPostList_CursorWalk(t *testing.T) {
	sess, mock := newSession(t)
	ctx := context.Background()

	ids := make([]uuid.UUID, 25)
	for i := range ids {
		ids[i] = uuid.Must(uuid.NewV4())
	}
	for i := 0; i < 3; i++ {
		rows := sqlmock.NewRows(advancedPostColumns)
		for _, id := range ids {
			addPost(rows, id, alice, "[]")
		}
		mock.ExpectQuery(sqlText(`SELECT * FROM advanced_posts ORDER BY "created_at" DESC, "id" DESC`)).WillReturnRows(rows)
	}

	var cursor Cursor
	var sizes []int
	for page := 0; page < 3; page++ {
		r := sess.GetPostList(ctx, alice, PostFilter{}, cursor, 10)
		require.True(t, r.IsOK(), "%v", r.Err())
		sizes = append(sizes, len(r.Value().Data))
		if page < 2 {
			require.True(t, r.Value().HasNext)
			next, err := ParseCursor(r.Value().NextCursor)
			require.NoError(t, err)
			assert.Equal(t, ids[(page+1)*10-1], next)
			cursor = next
		} else {
			assert.False(t, r.Value().HasNext)
			assert.Empty(t, r.Value().NextCursor)
		}
	}
	assert.Equal(t, []int{10, 10, 5}, sizes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPostList_FollowingFeed(t *testing.T) {
	sess, mock := newSession(t)

	mock.ExpectQuery(sqlText(`SELECT * FROM follows WHERE ( "followerid" = $1 )`)).
		WithArgs(alice.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "followerid", "followingid", "created_at"}).
			AddRow(uuid.Must(uuid.NewV4()).String(), alice.String(), bob.String(), ts))
	mock.ExpectQuery(sqlText(`SELECT * FROM advanced_posts WHERE ( "parentid" IS NULL AND "userid" IN ($1, $2) ) AND ( "images" <> $3 OR "video" IS NOT NULL ) ORDER BY`)).
		WithArgs(alice.String(), bob.String(), "[]").
		WillReturnRows(sqlmock.NewRows(advancedPostColumns))

	r := sess.GetPostList(context.Background(), alice, PostFilter{Following: true, TopLevel: true, MediaOnly: true}, uuid.Nil, 0)
	require.True(t, r.IsOK(), "%v", r.Err())
	assert.Empty(t, r.Value().Data)
	assert.Equal(t, DefaultPageSize, r.Value().Limit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var (
	roomColumns    = []string{"id", "senderid", "receiverid", "created_at", "updated_at"}
	messageColumns = []string{"id", "roomid", "senderid", "parentid", "content", "media", "created_at", "updated_at"}
)

func TestSendMessage_CreatesRoomInOneTransaction(t *testing.T) {
	sess, mock := newSession(t)
	room := uuid.Must(uuid.NewV4())
	msg := uuid.Must(uuid.NewV4())

	mock.ExpectBegin()
	mock.ExpectQuery(sqlText(`SELECT * FROM rooms WHERE ( "senderid" = $1 AND "receiverid" = $2 OR "senderid" = $3 AND "receiverid" = $4 ) LIMIT 1 FOR UPDATE`)).
		WithArgs(alice.String(), bob.String(), bob.String(), alice.String()).
		WillReturnRows(sqlmock.NewRows(roomColumns))
	mock.ExpectQuery(sqlText(`INSERT INTO rooms ("id", "senderid", "receiverid") VALUES ($1, $2, $3) ON CONFLICT DO NOTHING RETURNING *`)).
		WithArgs(sqlmock.AnyArg(), alice.String(), bob.String()).
		WillReturnRows(sqlmock.NewRows(roomColumns).AddRow(room.String(), alice.String(), bob.String(), ts, ts))
	mock.ExpectExec(sqlText(`DELETE FROM room_details WHERE ( "roomid" = $1 AND "type" = $2 )`)).
		WithArgs(room.String(), "disabled").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(sqlText(`INSERT INTO messages ("id", "roomid", "senderid", "parentid", "content", "media")`)).
		WithArgs(sqlmock.AnyArg(), room.String(), alice.String(), nil, "hi", `["a.png"]`).
		WillReturnRows(sqlmock.NewRows(messageColumns).
			AddRow(msg.String(), room.String(), alice.String(), nil, "hi", []byte(`["a.png"]`), ts, ts))
	mock.ExpectExec(sqlText(`UPDATE rooms SET "updated_at" = $1 WHERE ( "id" = $2 )`)).
		WithArgs(sqlmock.AnyArg(), room.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(sqlText(`SELECT * FROM advanced_messages WHERE ( "id" = $1 )`)).
		WillReturnRows(sqlmock.NewRows(append(messageColumns, "sender", "parent", "reactions")).
			AddRow(msg.String(), room.String(), alice.String(), nil, "hi", []byte(`["a.png"]`), ts, ts,
				[]byte(fmt.Sprintf(`{"id":"%s","name":"Alice","username":"alice"}`, alice)), nil, []byte("[]")))
	mock.ExpectCommit()

	r := sess.SendMessage(context.Background(), NewMessage{SenderID: alice, ReceiverID: bob, Content: "hi", Media: []string{"a.png"}})
	require.True(t, r.IsOK(), "%v", r.Err())
	assert.Equal(t, models.Media{"a.png"}, r.Value().Media)
	assert.Equal(t, "alice", r.Value().Sender.Username)
	assert.NotNil(t, r.Value().Reactions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendMessage_JoinsRoomOpenedConcurrently(t *testing.T) {
	sess, mock := newSession(t)
	room := uuid.Must(uuid.NewV4())
	msg := uuid.Must(uuid.NewV4())
	selectRoom := sqlText(`SELECT * FROM rooms WHERE ( "senderid" = $1 AND "receiverid" = $2 OR "senderid" = $3 AND "receiverid" = $4 ) LIMIT 1 FOR UPDATE`)

	mock.ExpectBegin()
	mock.ExpectQuery(selectRoom).
		WithArgs(alice.String(), bob.String(), bob.String(), alice.String()).
		WillReturnRows(sqlmock.NewRows(roomColumns))
	// bob opened the reversed room first; the pair index turns the insert into a no-op.
	mock.ExpectQuery(sqlText(`INSERT INTO rooms ("id", "senderid", "receiverid") VALUES ($1, $2, $3) ON CONFLICT DO NOTHING RETURNING *`)).
		WithArgs(sqlmock.AnyArg(), alice.String(), bob.String()).
		WillReturnRows(sqlmock.NewRows(roomColumns))
	mock.ExpectQuery(selectRoom).
		WithArgs(alice.String(), bob.String(), bob.String(), alice.String()).
		WillReturnRows(sqlmock.NewRows(roomColumns).AddRow(room.String(), bob.String(), alice.String(), ts, ts))
	mock.ExpectExec(sqlText(`DELETE FROM room_details`)).
		WithArgs(room.String(), "disabled").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(sqlText(`INSERT INTO messages`)).
		WithArgs(sqlmock.AnyArg(), room.String(), alice.String(), nil, "hi", `[]`).
		WillReturnRows(sqlmock.NewRows(messageColumns).
			AddRow(msg.String(), room.String(), alice.String(), nil, "hi", []byte(`[]`), ts, ts))
	mock.ExpectExec(sqlText(`UPDATE rooms SET "updated_at" = $1 WHERE ( "id" = $2 )`)).
		WithArgs(sqlmock.AnyArg(), room.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(sqlText(`SELECT * FROM advanced_messages WHERE ( "id" = $1 )`)).
		WillReturnRows(sqlmock.NewRows(append(messageColumns, "sender", "parent", "reactions")).
			AddRow(msg.String(), room.String(), alice.String(), nil, "hi", []byte(`[]`), ts, ts,
				[]byte(fmt.Sprintf(`{"id":"%s","name":"Alice","username":"alice"}`, alice)), nil, []byte("[]")))
	mock.ExpectCommit()

	r := sess.SendMessage(context.Background(), NewMessage{SenderID: alice, ReceiverID: bob, Content: "hi"})
	require.True(t, r.IsOK(), "%v", r.Err())
	assert.Equal(t, room, r.Value().RoomID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendMessage_RollsBackOnFailure(t *testing.T) {
	sess, mock := newSession(t)
	room := uuid.Must(uuid.NewV4())

	mock.ExpectBegin()
	mock.ExpectQuery(sqlText(`SELECT * FROM rooms`)).
		WillReturnRows(sqlmock.NewRows(roomColumns).AddRow(room.String(), bob.String(), alice.String(), ts, ts))
	mock.ExpectExec(sqlText(`DELETE FROM room_details`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(sqlText(`INSERT INTO messages`)).
		WillReturnError(&pq.Error{Code: "23503", Message: "insert violates foreign key constraint"})
	mock.ExpectRollback()

	r := sess.SendMessage(context.Background(), NewMessage{SenderID: alice, ReceiverID: bob, Content: "hi", ParentID: uuid.Must(uuid.NewV4())})
	require.True(t, r.IsFailed())
	assert.True(t, errors.Is(r.Err(), dbi.ErrForeignKey))
	assert.Nil(t, sess.tx)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RecordsOutcomes(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(mockDB, "postgres")
	t.Cleanup(func() { _ = db.Close() })
	st := New(postgres.NewClientFromDB(db, "public"), schema.Default())
	sess := st.Session()
	t.Cleanup(func() { _ = sess.Release() })
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, sess.withTx(ctx, "ok", func(context.Context) error { return nil }))

	mock.ExpectBegin()
	mock.ExpectRollback()
	require.Error(t, sess.withTx(ctx, "bad", func(context.Context) error { return dbi.ErrForbidden }))

	stats := st.TxStats()
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.Committed)
	assert.Equal(t, int64(1), stats.RolledBack)
	assert.Zero(t, stats.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleRoomDetail_NotParticipant(t *testing.T) {
	sess, mock := newSession(t)
	room := uuid.Must(uuid.NewV4())

	mock.ExpectBegin()
	mock.ExpectQuery(sqlText(`SELECT * FROM rooms WHERE ( "id" = $1 ) AND ( "senderid" = $2 OR "receiverid" = $3 )`)).
		WithArgs(room.String(), alice.String(), alice.String()).
		WillReturnRows(sqlmock.NewRows(roomColumns))
	mock.ExpectRollback()

	r := sess.HandleRoomDetail(context.Background(), RoomDetailInput{Actor: alice, RoomID: room, Type: models.RoomPinned, Add: true})
	assert.True(t, r.IsNotFound())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleListDetail_MemberRequiresOwner(t *testing.T) {
	sess, mock := newSession(t)
	list := uuid.Must(uuid.NewV4())

	mock.ExpectBegin()
	mock.ExpectQuery(sqlText(`SELECT * FROM lists WHERE ( "id" = $1 )`)).
		WithArgs(list.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "userid", "name", "description", "banner", "make", "created_at", "updated_at"}).
			AddRow(list.String(), bob.String(), "Gophers", nil, nil, "public", ts, ts))
	mock.ExpectRollback()

	r := sess.HandleListDetail(context.Background(), ListDetailInput{Actor: alice, ListID: list, Type: models.ListMember, UserID: alice, Add: true})
	require.True(t, r.IsFailed())
	assert.True(t, errors.Is(r.Err(), dbi.ErrForbidden))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExtractHashtags(t *testing.T) {
	assert.Equal(t, []string{"go", "café_2"}, ExtractHashtags("#Go is fun #go #Café_2 # nothing"))
	assert.Nil(t, ExtractHashtags("no tags"))

	// Length is counted in characters like the varchar column.
	cyrillic := strings.Repeat("я", 60)
	assert.Equal(t, []string{cyrillic}, ExtractHashtags("hello #"+cyrillic))
	assert.Nil(t, ExtractHashtags("#"+strings.Repeat("я", maxHashtagLength+1)))
	assert.Len(t, ExtractHashtags("#"+strings.Repeat("ж", maxHashtagLength)), 1)
}

var reactionColumns = []string{"id", "messageid", "userid", "content", "created_at"}

// expectReactionLookup queues the reads HandleMessageReaction runs before it
// decides on a write. existing is the content of the stored reaction, if any.
func expectReactionLookup(mock sqlmock.Sqlmock, room, msg uuid.UUID, existing string) {
	mock.ExpectBegin()
	mock.ExpectQuery(sqlText(`SELECT * FROM messages WHERE ( "id" = $1 )`)).
		WithArgs(msg.String()).
		WillReturnRows(sqlmock.NewRows(messageColumns).
			AddRow(msg.String(), room.String(), bob.String(), nil, "hi", []byte(`[]`), ts, ts))
	mock.ExpectQuery(sqlText(`SELECT * FROM rooms WHERE ( "id" = $1 ) AND ( "senderid" = $2 OR "receiverid" = $3 )`)).
		WithArgs(room.String(), alice.String(), alice.String()).
		WillReturnRows(sqlmock.NewRows(roomColumns).AddRow(room.String(), bob.String(), alice.String(), ts, ts))
	rows := sqlmock.NewRows(reactionColumns)
	if existing != "" {
		rows.AddRow(uuid.Must(uuid.NewV4()).String(), msg.String(), alice.String(), existing, ts)
	}
	mock.ExpectQuery(sqlText(`SELECT * FROM message_reactions WHERE ( "messageid" = $1 AND "userid" = $2 ) FOR UPDATE`)).
		WithArgs(msg.String(), alice.String()).
		WillReturnRows(rows)
}

func expectMessageReload(mock sqlmock.Sqlmock, room, msg uuid.UUID, reactions string) {
	mock.ExpectQuery(sqlText(`SELECT * FROM advanced_messages WHERE ( "id" = $1 )`)).
		WithArgs(msg.String()).
		WillReturnRows(sqlmock.NewRows(append(append([]string{}, messageColumns...), "sender", "parent", "reactions")).
			AddRow(msg.String(), room.String(), bob.String(), nil, "hi", []byte(`[]`), ts, ts,
				[]byte(fmt.Sprintf(`{"id":"%s","name":"Bob","username":"bob"}`, bob)), nil, []byte(reactions)))
	mock.ExpectCommit()
}

func TestHandleMessageReaction_Toggle(t *testing.T) {
	sess, mock := newSession(t)
	ctx := context.Background()
	room := uuid.Must(uuid.NewV4())
	msg := uuid.Must(uuid.NewV4())
	thumbs := fmt.Sprintf(`[{"user_id":"%s","content":"👍"}]`, alice)
	party := fmt.Sprintf(`[{"user_id":"%s","content":"🎉"}]`, alice)
	react := func(content string, add bool) dbi.Result[models.AdvancedMessage] {
		return sess.HandleMessageReaction(ctx, MessageReactionInput{Actor: alice, MessageID: msg, Content: content, Add: add})
	}

	t.Run("add twice inserts once", func(t *testing.T) {
		expectReactionLookup(mock, room, msg, "")
		mock.ExpectExec(sqlText(`INSERT INTO message_reactions ("id", "messageid", "userid", "content") VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING RETURNING *`)).
			WithArgs(sqlmock.AnyArg(), msg.String(), alice.String(), "👍").
			WillReturnResult(sqlmock.NewResult(0, 1))
		expectMessageReload(mock, room, msg, thumbs)

		expectReactionLookup(mock, room, msg, "👍")
		expectMessageReload(mock, room, msg, thumbs)

		for i := 0; i < 2; i++ {
			r := react(" 👍 ", true)
			require.True(t, r.IsOK(), "call %d: %v", i, r.Err())
			require.Len(t, r.Value().Reactions, 1)
		}
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("different content replaces", func(t *testing.T) {
		expectReactionLookup(mock, room, msg, "👍")
		mock.ExpectExec(sqlText(`UPDATE message_reactions SET "content" = $1 WHERE ( "messageid" = $2 AND "userid" = $3 )`)).
			WithArgs("🎉", msg.String(), alice.String()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		expectMessageReload(mock, room, msg, party)

		r := react("🎉", true)
		require.True(t, r.IsOK(), "%v", r.Err())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("remove deletes only when present", func(t *testing.T) {
		expectReactionLookup(mock, room, msg, "🎉")
		mock.ExpectExec(sqlText(`DELETE FROM message_reactions WHERE ( "messageid" = $1 AND "userid" = $2 )`)).
			WithArgs(msg.String(), alice.String()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		expectMessageReload(mock, room, msg, "[]")

		expectReactionLookup(mock, room, msg, "")
		expectMessageReload(mock, room, msg, "[]")

		for i := 0; i < 2; i++ {
			r := react("", false)
			require.True(t, r.IsOK(), "call %d: %v", i, r.Err())
			assert.Empty(t, r.Value().Reactions)
		}
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

var (
	listColumns         = []string{"id", "userid", "name", "description", "banner", "make", "created_at", "updated_at"}
	listDetailColumns   = []string{"id", "listid", "type", "userid", "postid", "created_at"}
	advancedListColumns = append(append([]string{}, listColumns...),
		"user", "members", "followers", "unshow", "posts", "_count", "mine", "following", "hidden")
)

// expectListDetailLookup queues the list read and the locked detail read for
// alice acting on a public list of bob.
func expectListDetailLookup(mock sqlmock.Sqlmock, list uuid.UUID, kind models.ListDetailType, present bool) {
	mock.ExpectBegin()
	mock.ExpectQuery(sqlText(`SELECT * FROM lists WHERE ( "id" = $1 )`)).
		WithArgs(list.String()).
		WillReturnRows(sqlmock.NewRows(listColumns).
			AddRow(list.String(), bob.String(), "Gophers", nil, nil, "public", ts, ts))
	rows := sqlmock.NewRows(listDetailColumns)
	if present {
		rows.AddRow(uuid.Must(uuid.NewV4()).String(), list.String(), string(kind), alice.String(), nil, ts)
	}
	mock.ExpectQuery(sqlText(`SELECT * FROM list_details WHERE ( "listid" = $1 AND "type" = $2 AND "userid" = $3 AND "postid" IS NULL ) LIMIT 1 FOR UPDATE`)).
		WithArgs(list.String(), string(kind), alice.String()).
		WillReturnRows(rows)
}

func expectListReload(mock sqlmock.Sqlmock, list uuid.UUID, followers string, following, hidden bool) {
	user := fmt.Sprintf(`{"id":"%s","name":"Bob","username":"bob","image":null,"verified":false}`, bob)
	mock.ExpectQuery(sqlText(`FROM advanced_lists AS al`)).
		WillReturnRows(sqlmock.NewRows(advancedListColumns).
			AddRow(list.String(), bob.String(), "Gophers", nil, nil, "public", ts, ts,
				[]byte(user), []byte("[]"), []byte(followers), []byte("[]"), []byte("[]"),
				[]byte(`{"members":0}`), false, following, hidden))
	mock.ExpectCommit()
}

func TestHandleListDetail_FollowerToggle(t *testing.T) {
	sess, mock := newSession(t)
	ctx := context.Background()
	list := uuid.Must(uuid.NewV4())
	followers := fmt.Sprintf(`["%s"]`, alice)

	// Actor stands in for the user of follower details; UserID is ignored.
	in := ListDetailInput{Actor: alice, ListID: list, Type: models.ListFollower, UserID: bob, Add: true}

	expectListDetailLookup(mock, list, models.ListFollower, false)
	mock.ExpectExec(sqlText(`INSERT INTO list_details ("id", "listid", "type", "userid", "postid") VALUES ($1, $2, $3, $4, $5) ON CONFLICT DO NOTHING RETURNING *`)).
		WithArgs(sqlmock.AnyArg(), list.String(), "follower", alice.String(), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectListReload(mock, list, followers, true, false)

	expectListDetailLookup(mock, list, models.ListFollower, true)
	expectListReload(mock, list, followers, true, false)

	for i := 0; i < 2; i++ {
		r := sess.HandleListDetail(ctx, in)
		require.True(t, r.IsOK(), "call %d: %v", i, r.Err())
		assert.True(t, r.Value().Following)
		assert.True(t, r.Value().Followers.Contains(alice))
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleListDetail_UnshowRemove(t *testing.T) {
	sess, mock := newSession(t)
	ctx := context.Background()
	list := uuid.Must(uuid.NewV4())
	in := ListDetailInput{Actor: alice, ListID: list, Type: models.ListUnshow, Add: false}

	expectListDetailLookup(mock, list, models.ListUnshow, true)
	mock.ExpectExec(sqlText(`DELETE FROM list_details WHERE ( "listid" = $1 AND "type" = $2 AND "userid" = $3 AND "postid" IS NULL )`)).
		WithArgs(list.String(), "unshow", alice.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectListReload(mock, list, "[]", false, false)

	// Removing a marker that is already gone writes nothing.
	expectListDetailLookup(mock, list, models.ListUnshow, false)
	expectListReload(mock, list, "[]", false, false)

	for i := 0; i < 2; i++ {
		r := sess.HandleListDetail(ctx, in)
		require.True(t, r.IsOK(), "call %d: %v", i, r.Err())
		assert.False(t, r.Value().Hidden)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMessages_PageBeyondRange(t *testing.T) {
	sess, mock := newSession(t)
	room := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(sqlText(`SELECT * FROM rooms WHERE ( "id" = $1 )`)).
		WillReturnRows(sqlmock.NewRows(roomColumns).AddRow(room.String(), alice.String(), bob.String(), ts, ts))
	mock.ExpectQuery(sqlText(fmt.Sprintf("OFFSET %d", math.MaxInt))).
		WillReturnRows(sqlmock.NewRows(messageColumns))

	r := sess.GetMessages(context.Background(), alice, room, query.Page{Limit: 100, Offset: 92233720368547759})
	require.True(t, r.IsOK(), "%v", r.Err())
	assert.Empty(t, r.Value())
	assert.NoError(t, mock.ExpectationsWereMet())
}
