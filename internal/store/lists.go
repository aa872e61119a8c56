// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package store

import (
	"context"
	"fmt"
	"strings"

	uuid "github.com/gofrs/uuid"
	dbi "github.com/qolzam/telar/apps/social/internal/database/interfaces"
	"github.com/qolzam/telar/apps/social/internal/database/catalog"
	"github.com/qolzam/telar/apps/social/internal/database/query"
	"github.com/qolzam/telar/apps/social/internal/database/schema"
	"github.com/qolzam/telar/apps/social/models"
)

// MaxListNameLength is the character limit of a list name.
const MaxListNameLength = 25

// NewList carries the columns of a list on creation. An empty Make is public.
type NewList struct {
	UserID      uuid.UUID
	Name        string
	Description string
	Banner      string
	Make        models.ListMake
}

// ListPatch lists the list fields to change; nil fields are kept.
type ListPatch struct {
	Name        *string
	Description *string
	Banner      *string
	Make        *models.ListMake
}

// ListDetailInput toggles one membership-like row of a list. Members and
// posts are managed by the owner; follower and unshow apply to the actor.
type ListDetailInput struct {
	Actor  uuid.UUID
	ListID uuid.UUID
	Type   models.ListDetailType
	UserID uuid.UUID
	PostID uuid.UUID
	Add    bool
}

func validMake(m models.ListMake) bool {
	return m == models.ListPublic || m == models.ListPrivate
}

func checkListName(name string) error {
	if name == "" {
		return query.Invalid("list name is required")
	}
	if len([]rune(name)) > MaxListNameLength {
		return query.Invalid("list name exceeds %d characters", MaxListNameLength)
	}
	return nil
}

// GetLists runs the lists catalog for viewer.
func (s *Session) GetLists(ctx context.Context, viewer uuid.UUID, f catalog.ListsFilter) dbi.Result[[]models.AdvancedList] {
	stmt, err := catalog.Lists(viewer, f)
	return list[models.AdvancedList](ctx, s, "GetLists", stmt, err)
}

// GetList fetches one list visible to viewer. Private lists of other users
// are not found.
func (s *Session) GetList(ctx context.Context, viewer, id uuid.UUID) dbi.Result[models.AdvancedList] {
	if id == uuid.Nil {
		return dbi.NotFound[models.AdvancedList]()
	}
	stmt, err := catalog.Lists(viewer, catalog.ListsFilter{ID: id, Page: query.Page{Limit: 1}})
	return first(list[models.AdvancedList](ctx, s, "GetList", stmt, err))
}

// CreateList inserts a list and returns it as seen by its owner.
func (s *Session) CreateList(ctx context.Context, in NewList) dbi.Result[models.AdvancedList] {
	name := strings.TrimSpace(in.Name)
	if err := checkListName(name); err != nil {
		return dbi.Failed[models.AdvancedList](err)
	}
	if in.Make == "" {
		in.Make = models.ListPublic
	}
	if !validMake(in.Make) {
		return dbi.Failed[models.AdvancedList](query.Invalid("make %q", in.Make))
	}
	id, err := uuid.NewV4()
	if err != nil {
		return dbi.Failed[models.AdvancedList](err)
	}

	stmt, err := s.compiler.Insert(query.Insert{
		Table:  schema.TableLists,
		Fields: []string{"id", "userid", "name", "description", "banner", "make"},
		Values: []query.Param{
			query.UUID(id),
			query.UUID(in.UserID),
			query.String(name),
			nullableString(in.Description),
			nullableString(in.Banner),
			query.String(string(in.Make)),
		},
	})
	if r := get[models.List](ctx, s, "CreateList", stmt, err); !r.IsOK() {
		return dbi.Failed[models.AdvancedList](r.Err())
	}
	return s.GetList(ctx, in.UserID, id)
}

// UpdateList changes a list owned by actor.
func (s *Session) UpdateList(ctx context.Context, actor, id uuid.UUID, patch ListPatch) dbi.Result[models.AdvancedList] {
	var fields []string
	var values []query.Param
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := checkListName(name); err != nil {
			return dbi.Failed[models.AdvancedList](err)
		}
		fields = append(fields, "name")
		values = append(values, query.String(name))
	}
	if patch.Description != nil {
		fields = append(fields, "description")
		values = append(values, nullableString(*patch.Description))
	}
	if patch.Banner != nil {
		fields = append(fields, "banner")
		values = append(values, nullableString(*patch.Banner))
	}
	if patch.Make != nil {
		if !validMake(*patch.Make) {
			return dbi.Failed[models.AdvancedList](query.Invalid("make %q", *patch.Make))
		}
		fields = append(fields, "make")
		values = append(values, query.String(string(*patch.Make)))
	}
	if len(fields) > 0 {
		fields = append(fields, "updated_at")
		values = append(values, query.Time(now()))
	}

	stmt, err := s.compiler.Update(query.Update{
		Table:  schema.TableLists,
		Fields: fields,
		Values: values,
		Where: query.Groups{{
			query.Eq("id", query.UUID(id)),
			query.Eq("userid", query.UUID(actor)),
		}},
	})
	if r := affected(s.exec(ctx, "UpdateList", stmt, err)); !r.IsOK() {
		return dbi.Map(r, func(bool) models.AdvancedList { return models.AdvancedList{} })
	}
	return s.GetList(ctx, actor, id)
}

// DeleteList removes a list owned by actor.
func (s *Session) DeleteList(ctx context.Context, actor, id uuid.UUID) dbi.Result[bool] {
	stmt, err := s.compiler.Delete(query.Delete{
		Table: schema.TableLists,
		Where: query.Groups{{
			query.Eq("id", query.UUID(id)),
			query.Eq("userid", query.UUID(actor)),
		}},
	})
	return affected(s.exec(ctx, "DeleteList", stmt, err))
}

// resolve fills the subject of the detail and checks actor may change it.
func (in ListDetailInput) resolve(l models.List) (ListDetailInput, error) {
	owner := l.UserID == in.Actor
	if l.Make == models.ListPrivate && !owner {
		return in, dbi.ErrForbidden
	}
	switch in.Type {
	case models.ListMember:
		if !owner {
			return in, dbi.ErrForbidden
		}
		if in.UserID == uuid.Nil {
			return in, query.Invalid("member requires a user")
		}
		in.PostID = uuid.Nil
	case models.ListPost:
		if !owner {
			return in, dbi.ErrForbidden
		}
		if in.PostID == uuid.Nil {
			return in, query.Invalid("post requires a post")
		}
		in.UserID = uuid.Nil
	case models.ListFollower, models.ListUnshow:
		in.UserID = in.Actor
		in.PostID = uuid.Nil
	default:
		return in, query.Invalid("unknown list detail %q", in.Type)
	}
	return in, nil
}

func (in ListDetailInput) key() query.Groups {
	user := query.Eq("userid", query.UUID(in.UserID))
	if in.UserID == uuid.Nil {
		user = query.IsNull("userid")
	}
	post := query.Eq("postid", query.UUID(in.PostID))
	if in.PostID == uuid.Nil {
		post = query.IsNull("postid")
	}
	return query.Groups{{
		query.Eq("listid", query.UUID(in.ListID)),
		query.Eq("type", query.String(string(in.Type))),
		user,
		post,
	}}
}

// HandleListDetail adds or removes a member, follower, unshow marker or post
// and returns the refreshed list.
func (s *Session) HandleListDetail(ctx context.Context, in ListDetailInput) dbi.Result[models.AdvancedList] {
	const op = "HandleListDetail"
	if !in.Type.Valid() {
		return dbi.Failed[models.AdvancedList](query.Invalid("unknown list detail %q", in.Type))
	}

	var out models.AdvancedList
	err := s.withTx(ctx, op, func(ctx context.Context) error {
		stmt, err := s.compiler.Select(query.Select{
			Table: schema.TableLists,
			Where: query.Groups{{query.Eq("id", query.UUID(in.ListID))}},
		})
		l := get[models.List](ctx, s, op, stmt, err)
		if !l.IsOK() {
			return l.Err()
		}
		detail, err := in.resolve(l.Value())
		if err != nil {
			return fmt.Errorf("store.%s: %w", op, err)
		}

		stmt, err = s.compiler.Select(query.Select{Table: schema.TableListDetails, Where: detail.key(), Limit: 1, Lock: true})
		existing := get[models.ListDetail](ctx, s, op, stmt, err)
		if existing.IsFailed() {
			return existing.Err()
		}

		switch {
		case detail.Add && existing.IsNotFound():
			id, err := uuid.NewV4()
			if err != nil {
				return err
			}
			stmt, err := s.compiler.Insert(query.Insert{
				Table:  schema.TableListDetails,
				Fields: []string{"id", "listid", "type", "userid", "postid"},
				Values: []query.Param{
					query.UUID(id),
					query.UUID(detail.ListID),
					query.String(string(detail.Type)),
					nullableUUID(detail.UserID),
					nullableUUID(detail.PostID),
				},
				OnConflictDoNothing: true,
			})
			if r := s.exec(ctx, op, stmt, err); r.IsFailed() && !dbi.IsDuplicateKey(r.Err()) {
				return r.Err()
			}
		case !detail.Add && existing.IsOK():
			stmt, err := s.compiler.Delete(query.Delete{Table: schema.TableListDetails, Where: detail.key()})
			if r := s.exec(ctx, op, stmt, err); r.IsFailed() {
				return r.Err()
			}
		}

		r := s.GetList(ctx, in.Actor, in.ListID)
		out = r.Value()
		return r.Err()
	})
	return txResult(ctx, op, out, err)
}
