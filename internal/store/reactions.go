// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package store

import (
	"context"
	"fmt"

	uuid "github.com/gofrs/uuid"
	dbi "github.com/qolzam/telar/apps/social/internal/database/interfaces"
	"github.com/qolzam/telar/apps/social/internal/database/query"
	"github.com/qolzam/telar/apps/social/internal/database/schema"
	"github.com/qolzam/telar/apps/social/models"
)

// ReactionInput identifies one like, repost or bookmark. A Nil CommentID
// reacts to the post itself.
type ReactionInput struct {
	Actor     uuid.UUID
	PostID    uuid.UUID
	CommentID uuid.UUID
	Type      models.ReactionType
	Add       bool
}

func (in ReactionInput) key() query.Groups {
	comment := query.Eq("commentid", query.UUID(in.CommentID))
	if in.CommentID == uuid.Nil {
		comment = query.IsNull("commentid")
	}
	return query.Groups{{
		query.Eq("type", query.String(string(in.Type))),
		query.Eq("userid", query.UUID(in.Actor)),
		query.Eq("postid", query.UUID(in.PostID)),
		comment,
	}}
}

// HandleReaction adds or removes a reaction and returns the refreshed post.
// Adding an existing reaction or removing a missing one changes nothing.
func (s *Session) HandleReaction(ctx context.Context, in ReactionInput) dbi.Result[models.AdvancedPost] {
	const op = "HandleReaction"
	if !in.Type.Valid() {
		return dbi.Failed[models.AdvancedPost](query.Invalid("unknown reaction type %q", in.Type))
	}

	var post models.AdvancedPost
	err := s.withTx(ctx, op, func(ctx context.Context) error {
		stmt, err := s.compiler.Select(query.Select{Table: schema.TableReactions, Where: in.key(), Limit: 1, Lock: true})
		existing := get[models.Reaction](ctx, s, op, stmt, err)
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
				Table:  schema.TableReactions,
				Fields: []string{"id", "type", "userid", "postid", "commentid"},
				Values: []query.Param{
					query.UUID(id),
					query.String(string(in.Type)),
					query.UUID(in.Actor),
					query.UUID(in.PostID),
					nullableUUID(in.CommentID),
				},
				OnConflictDoNothing: true,
			})
			if r := s.exec(ctx, op, stmt, err); r.IsFailed() && !dbi.IsDuplicateKey(r.Err()) {
				return r.Err()
			}
		case !in.Add && existing.IsOK():
			stmt, err := s.compiler.Delete(query.Delete{Table: schema.TableReactions, Where: in.key()})
			if r := s.exec(ctx, op, stmt, err); r.IsFailed() {
				return r.Err()
			}
		}

		r := s.GetPost(ctx, in.PostID)
		post = r.Value()
		return r.Err()
	})
	return txResult(ctx, op, post, err)
}

// GetReactionList lists the reactions of one type on a post, newest first.
func (s *Session) GetReactionList(ctx context.Context, postID uuid.UUID, kind models.ReactionType) dbi.Result[[]models.Reaction] {
	if !kind.Valid() {
		return dbi.Failed[[]models.Reaction](query.Invalid("unknown reaction type %q", kind))
	}
	stmt, err := s.compiler.Select(query.Select{
		Table: schema.TableReactions,
		Where: query.Groups{{
			query.Eq("postid", query.UUID(postID)),
			query.Eq("type", query.String(string(kind))),
		}},
		Order: []query.Order{query.OrderBy("created_at", query.Desc)},
	})
	return list[models.Reaction](ctx, s, "GetReactionList", stmt, err)
}

// GetViews returns the counters of a post.
func (s *Session) GetViews(ctx context.Context, postID uuid.UUID) dbi.Result[models.Views] {
	stmt, err := s.compiler.Select(query.Select{
		Table: schema.TableViews,
		Where: query.Groups{{query.Eq("postid", query.UUID(postID))}},
	})
	return get[models.Views](ctx, s, "GetViews", stmt, err)
}

// IncrementViews adds one to a counter of a post, creating the row on the
// first view.
func (s *Session) IncrementViews(ctx context.Context, postID uuid.UUID, field models.ViewField) dbi.Result[models.Views] {
	if !field.Valid() {
		return dbi.Failed[models.Views](fmt.Errorf("%w: %s", query.ErrUnknownField, field))
	}
	return s.bumpViews(ctx, postID, field, true)
}

// bumpViews locks the views row of postID and increments field. Without
// increment it only makes sure the row exists, with every counter at zero.
func (s *Session) bumpViews(ctx context.Context, postID uuid.UUID, field models.ViewField, increment bool) dbi.Result[models.Views] {
	const op = "IncrementViews"
	var views models.Views
	err := s.withTx(ctx, op, func(ctx context.Context) error {
		key := query.Groups{{query.Eq("postid", query.UUID(postID))}}
		stmt, err := s.compiler.Select(query.Select{Table: schema.TableViews, Where: key, Lock: true})
		current := get[models.Views](ctx, s, op, stmt, err)

		switch {
		case current.IsFailed():
			return current.Err()
		case current.IsOK() && !increment:
			views = current.Value()
			return nil
		case current.IsOK():
			stmt, err = s.compiler.Update(query.Update{
				Table:  schema.TableViews,
				Fields: []string{string(field), "updated_at"},
				Values: []query.Param{query.Int(current.Value().Get(field) + 1), query.Time(now())},
				Where:  key,
			})
			if r := s.exec(ctx, op, stmt, err); r.IsFailed() {
				return r.Err()
			}
		default:
			fields := []string{"postid"}
			values := []query.Param{query.UUID(postID)}
			for _, f := range models.ViewFields {
				fields = append(fields, string(f))
				initial := int64(0)
				if increment && f == field {
					initial = 1
				}
				values = append(values, query.Int(initial))
			}
			stmt, err = s.compiler.Insert(query.Insert{Table: schema.TableViews, Fields: fields, Values: values})
			if r := s.exec(ctx, op, stmt, err); r.IsFailed() {
				return r.Err()
			}
		}

		stmt, err = s.compiler.Select(query.Select{Table: schema.TableViews, Where: key})
		r := get[models.Views](ctx, s, op, stmt, err)
		views = r.Value()
		return r.Err()
	})
	return txResult(ctx, op, views, err)
}
