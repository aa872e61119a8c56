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
	"github.com/qolzam/telar/apps/social/internal/database/query"
	"github.com/qolzam/telar/apps/social/internal/database/schema"
	"github.com/qolzam/telar/apps/social/models"
)

// MaxPostLength is the character limit of a post body.
const MaxPostLength = 280

// NewPost carries the columns of a post on creation. Nil ids mean no parent
// or no original.
type NewPost struct {
	UserID     uuid.UUID
	ParentID   uuid.UUID
	OriginalID uuid.UUID
	Text       string
	Images     []string
	Video      string
}

// PostPatch lists the post fields to change; nil fields are kept.
type PostPatch struct {
	Text   *string
	Images *[]string
	Pinned *bool
}

// PostFilter narrows GetPostList. Zero fields are ignored.
type PostFilter struct {
	UserID   uuid.UUID
	ParentID uuid.UUID
	// TopLevel keeps posts without a parent.
	TopLevel bool
	// Following restricts to the viewer and the accounts they follow.
	Following bool
	LikedBy   uuid.UUID
	Query     string
	MediaOnly bool
}

func nullableUUID(id uuid.UUID) query.Param {
	if id == uuid.Nil {
		return query.Null()
	}
	return query.UUID(id)
}

func nullableString(s string) query.Param {
	if s == "" {
		return query.Null()
	}
	return query.String(s)
}

// GetPost fetches the advanced view of a post.
func (s *Session) GetPost(ctx context.Context, id uuid.UUID) dbi.Result[models.AdvancedPost] {
	stmt, err := s.compiler.Select(query.Select{
		Table: schema.ViewAdvancedPosts,
		Where: query.Groups{{query.Eq("id", query.UUID(id))}},
	})
	return get[models.AdvancedPost](ctx, s, "GetPost", stmt, err)
}

// followingIDs returns viewer and every account viewer follows.
func (s *Session) followingIDs(ctx context.Context, viewer uuid.UUID) dbi.Result[[]uuid.UUID] {
	stmt, err := s.compiler.Select(query.Select{
		Table: schema.TableFollows,
		Where: query.Groups{{query.Eq("followerid", query.UUID(viewer))}},
	})
	return dbi.Map(list[models.Follow](ctx, s, "followingIDs", stmt, err), func(rows []models.Follow) []uuid.UUID {
		ids := make([]uuid.UUID, 0, len(rows)+1)
		ids = append(ids, viewer)
		for _, f := range rows {
			ids = append(ids, f.FollowingID)
		}
		return ids
	})
}

// GetPostList returns the page after cursor of the posts matching f, newest
// first.
func (s *Session) GetPostList(ctx context.Context, viewer uuid.UUID, f PostFilter, cursor Cursor, size int) dbi.Result[dbi.CursorPaginationResult[models.AdvancedPost]] {
	filters := query.Group{
		query.Eq("userid", query.OptionalUUID(f.UserID)),
		query.Eq("parentid", query.OptionalUUID(f.ParentID)),
		query.Cond("likes", query.OpContains, query.Contains(f.LikedBy)),
		query.Cond("text", query.OpILike, query.Pattern(f.Query)),
	}
	if f.TopLevel && f.ParentID == uuid.Nil {
		filters = append(filters, query.IsNull("parentid"))
	}
	if f.Following {
		ids := s.followingIDs(ctx, viewer)
		if !ids.IsOK() {
			return dbi.Failed[dbi.CursorPaginationResult[models.AdvancedPost]](ids.Err())
		}
		filters = append(filters, query.Cond("userid", query.OpIn, query.UUIDs(ids.Value()...)))
	}
	where := query.Groups{filters}
	if f.MediaOnly {
		where = append(where, query.Group{
			query.Cond("images", query.OpNe, query.JSON([]string{})),
			query.IsNotNull("video").Or(),
		})
	}

	stmt, err := s.compiler.Select(query.Select{
		Table: schema.ViewAdvancedPosts,
		Where: where,
		Order: []query.Order{query.OrderBy("created_at", query.Desc), query.OrderBy("id", query.Desc)},
	})
	rows := list[models.AdvancedPost](ctx, s, "GetPostList", stmt, err)
	return cursorPage(rows, func(p models.AdvancedPost) uuid.UUID { return p.ID }, cursor, size)
}

// CreatePost inserts a post together with its zeroed views row and the
// hashtags found in its text, then returns the advanced post.
func (s *Session) CreatePost(ctx context.Context, in NewPost) dbi.Result[models.AdvancedPost] {
	const op = "CreatePost"
	text := strings.TrimSpace(in.Text)
	if text == "" && len(in.Images) == 0 && in.Video == "" {
		return dbi.Failed[models.AdvancedPost](query.Invalid("post needs text or media"))
	}
	if len([]rune(text)) > MaxPostLength {
		return dbi.Failed[models.AdvancedPost](query.Invalid("post text exceeds %d characters", MaxPostLength))
	}
	id, err := uuid.NewV4()
	if err != nil {
		return dbi.Failed[models.AdvancedPost](err)
	}

	var post models.AdvancedPost
	err = s.withTx(ctx, op, func(ctx context.Context) error {
		stmt, err := s.compiler.Insert(query.Insert{
			Table:  schema.TablePosts,
			Fields: []string{"id", "userid", "parentid", "originalid", "text", "images", "video"},
			Values: []query.Param{
				query.UUID(id),
				query.UUID(in.UserID),
				nullableUUID(in.ParentID),
				nullableUUID(in.OriginalID),
				nullableString(text),
				query.JSON(models.Media(in.Images)),
				nullableString(in.Video),
			},
		})
		if r := get[models.Post](ctx, s, op, stmt, err); !r.IsOK() {
			return r.Err()
		}

		if r := s.bumpViews(ctx, id, "", false); !r.IsOK() {
			return r.Err()
		}

		if tags := ExtractHashtags(text); len(tags) > 0 {
			if r := s.RecordHashtags(ctx, models.HashtagTag, tags); r.IsFailed() {
				return r.Err()
			}
		}

		r := s.GetPost(ctx, id)
		post = r.Value()
		return r.Err()
	})
	return txResult(ctx, op, post, err)
}

// UpdatePost changes a post owned by actor. Posts of other users are reported
// as not found.
func (s *Session) UpdatePost(ctx context.Context, actor, id uuid.UUID, patch PostPatch) dbi.Result[models.AdvancedPost] {
	var fields []string
	var values []query.Param
	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		if len([]rune(text)) > MaxPostLength {
			return dbi.Failed[models.AdvancedPost](query.Invalid("post text exceeds %d characters", MaxPostLength))
		}
		fields = append(fields, "text")
		values = append(values, nullableString(text))
	}
	if patch.Images != nil {
		fields = append(fields, "images")
		values = append(values, query.JSON(models.Media(*patch.Images)))
	}
	if patch.Pinned != nil {
		fields = append(fields, "pinned")
		values = append(values, query.Bool(*patch.Pinned))
	}
	if len(fields) > 0 {
		fields = append(fields, "updated_at")
		values = append(values, query.Time(now()))
	}

	stmt, err := s.compiler.Update(query.Update{
		Table:  schema.TablePosts,
		Fields: fields,
		Values: values,
		Where: query.Groups{{
			query.Eq("id", query.UUID(id)),
			query.Eq("userid", query.UUID(actor)),
		}},
	})
	if r := affected(s.exec(ctx, "UpdatePost", stmt, err)); !r.IsOK() {
		return dbi.Map(r, func(bool) models.AdvancedPost { return models.AdvancedPost{} })
	}
	return s.GetPost(ctx, id)
}

// DeletePost removes a post owned by actor. Replies keep existing with their
// parent cleared.
func (s *Session) DeletePost(ctx context.Context, actor, id uuid.UUID) dbi.Result[bool] {
	stmt, err := s.compiler.Delete(query.Delete{
		Table: schema.TablePosts,
		Where: query.Groups{{
			query.Eq("id", query.UUID(id)),
			query.Eq("userid", query.UUID(actor)),
		}},
	})
	return affected(s.exec(ctx, "DeletePost", stmt, err))
}
