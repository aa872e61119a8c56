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

// NewUser carries the columns of a user at sign up. Password must already be hashed.
type NewUser struct {
	Name         string
	Username     string
	Email        string
	PasswordHash string
}

// UserPatch lists the profile fields to change; nil fields are kept.
type UserPatch struct {
	Name       *string
	Bio        *string
	Location   *string
	Website    *string
	Image      *string
	Background *string
}

func (p UserPatch) fields() ([]string, []query.Param) {
	var fields []string
	var values []query.Param
	add := func(name string, v *string) {
		if v != nil {
			fields = append(fields, name)
			values = append(values, query.String(*v))
		}
	}
	add("name", p.Name)
	add("bio", p.Bio)
	add("location", p.Location)
	add("website", p.Website)
	add("image", p.Image)
	add("background", p.Background)
	return fields, values
}

// GetUser fetches a user row by id.
func (s *Session) GetUser(ctx context.Context, id uuid.UUID) dbi.Result[models.User] {
	stmt, err := s.compiler.Select(query.Select{
		Table: schema.TableUsers,
		Where: query.Groups{{query.Eq("id", query.UUID(id))}},
	})
	return get[models.User](ctx, s, "GetUser", stmt, err)
}

// GetUserByName fetches a user row by username. A leading @ is ignored.
func (s *Session) GetUserByName(ctx context.Context, username string) dbi.Result[models.User] {
	stmt, err := s.compiler.Select(query.Select{
		Table: schema.TableUsers,
		Where: query.Groups{{query.Eq("username", query.String(strings.TrimPrefix(username, "@")))}},
		Limit: 1,
	})
	return get[models.User](ctx, s, "GetUserByName", stmt, err)
}

// GetAdvancedUser fetches the public profile of id as seen by viewer.
func (s *Session) GetAdvancedUser(ctx context.Context, viewer, id uuid.UUID) dbi.Result[models.AdvancedUser] {
	stmt, err := catalog.UserWithFollows(viewer, id)
	return get[models.AdvancedUser](ctx, s, "GetAdvancedUser", stmt, err)
}

// GetUserList searches users and returns the page after cursor.
func (s *Session) GetUserList(ctx context.Context, viewer uuid.UUID, f catalog.UsersFilter, cursor Cursor, size int) dbi.Result[dbi.CursorPaginationResult[models.AdvancedUser]] {
	stmt, err := catalog.Users(viewer, f)
	rows := list[models.AdvancedUser](ctx, s, "GetUserList", stmt, err)
	return cursorPage(rows, func(u models.AdvancedUser) uuid.UUID { return u.ID }, cursor, size)
}

// CreateUser inserts a user and returns the stored row.
func (s *Session) CreateUser(ctx context.Context, in NewUser) dbi.Result[models.User] {
	id, err := uuid.NewV4()
	if err != nil {
		return dbi.Failed[models.User](err)
	}
	stmt, err := s.compiler.Insert(query.Insert{
		Table:  schema.TableUsers,
		Fields: []string{"id", "name", "username", "email", "password"},
		Values: []query.Param{
			query.UUID(id),
			query.String(in.Name),
			query.String(in.Username),
			query.String(strings.ToLower(in.Email)),
			query.String(in.PasswordHash),
		},
	})
	return get[models.User](ctx, s, "CreateUser", stmt, err)
}

// UpdateUser applies patch to the user and returns the updated row.
func (s *Session) UpdateUser(ctx context.Context, id uuid.UUID, patch UserPatch) dbi.Result[models.User] {
	fields, values := patch.fields()
	fields = append(fields, "updated_at")
	values = append(values, query.Time(now()))

	stmt, err := s.compiler.Update(query.Update{
		Table:  schema.TableUsers,
		Fields: fields,
		Values: values,
		Where:  query.Groups{{query.Eq("id", query.UUID(id))}},
	})
	if r := affected(s.exec(ctx, "UpdateUser", stmt, err)); !r.IsOK() {
		return dbi.Map(r, func(bool) models.User { return models.User{} })
	}
	return s.GetUser(ctx, id)
}

// DeleteUser removes a user and, through cascades, everything they own.
func (s *Session) DeleteUser(ctx context.Context, id uuid.UUID) dbi.Result[bool] {
	stmt, err := s.compiler.Delete(query.Delete{
		Table: schema.TableUsers,
		Where: query.Groups{{query.Eq("id", query.UUID(id))}},
	})
	return affected(s.exec(ctx, "DeleteUser", stmt, err))
}

func followEdge(actor, target uuid.UUID) query.Groups {
	return query.Groups{{
		query.Eq("followerid", query.UUID(actor)),
		query.Eq("followingid", query.UUID(target)),
	}}
}

// HandleFollow makes actor follow (add) or unfollow target and returns the
// refreshed target profile. Repeating a call is a no-op.
func (s *Session) HandleFollow(ctx context.Context, actor, target uuid.UUID, add bool) dbi.Result[models.AdvancedUser] {
	const op = "HandleFollow"
	if actor == target {
		return dbi.Failed[models.AdvancedUser](query.Invalid("users cannot follow themselves"))
	}

	var user models.AdvancedUser
	err := s.withTx(ctx, op, func(ctx context.Context) error {
		stmt, err := s.compiler.Select(query.Select{Table: schema.TableFollows, Where: followEdge(actor, target), Lock: true})
		existing := get[models.Follow](ctx, s, op, stmt, err)
		if existing.IsFailed() {
			return existing.Err()
		}

		switch {
		case add && existing.IsNotFound():
			id, err := uuid.NewV4()
			if err != nil {
				return err
			}
			stmt, err := s.compiler.Insert(query.Insert{
				Table:               schema.TableFollows,
				Fields:              []string{"id", "followerid", "followingid"},
				Values:              []query.Param{query.UUID(id), query.UUID(actor), query.UUID(target)},
				OnConflictDoNothing: true,
			})
			if r := s.exec(ctx, op, stmt, err); r.IsFailed() {
				return r.Err()
			}
		case !add && existing.IsOK():
			stmt, err := s.compiler.Delete(query.Delete{Table: schema.TableFollows, Where: followEdge(actor, target)})
			if r := s.exec(ctx, op, stmt, err); r.IsFailed() {
				return r.Err()
			}
		}

		r := s.GetAdvancedUser(ctx, actor, target)
		user = r.Value()
		return r.Err()
	})
	return txResult(ctx, op, user, err)
}
