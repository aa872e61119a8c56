// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package store

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	uuid "github.com/gofrs/uuid"
	dbi "github.com/qolzam/telar/apps/social/internal/database/interfaces"
	"github.com/qolzam/telar/apps/social/internal/database/query"
	"github.com/qolzam/telar/apps/social/internal/database/schema"
	"github.com/qolzam/telar/apps/social/models"
)

var hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// maxHashtagLength matches the varchar length of hashtags.title.
const maxHashtagLength = 100

// ExtractHashtags returns the distinct lower-cased tags of text in order of
// appearance, without the leading #.
func ExtractHashtags(text string) []string {
	seen := map[string]bool{}
	var tags []string
	for _, m := range hashtagPattern.FindAllStringSubmatch(text, -1) {
		tag := strings.ToLower(m[1])
		if utf8.RuneCountInString(tag) > maxHashtagLength || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

// hashtagWeight scales the use count of a hashtag by how strongly its type
// signals a topic.
func hashtagWeight(kind models.HashtagType, count int64) float64 {
	if kind == models.HashtagWord {
		return float64(count) * 0.5
	}
	return float64(count)
}

// RecordHashtags counts one more use of each title, creating the missing
// hashtags.
func (s *Session) RecordHashtags(ctx context.Context, kind models.HashtagType, titles []string) dbi.Result[[]models.Hashtag] {
	const op = "RecordHashtags"
	if kind != models.HashtagTag && kind != models.HashtagWord {
		return dbi.Failed[[]models.Hashtag](query.Invalid("unknown hashtag type %q", kind))
	}

	out := []models.Hashtag{}
	err := s.withTx(ctx, op, func(ctx context.Context) error {
		for _, title := range titles {
			title = strings.ToLower(strings.TrimSpace(title))
			if title == "" {
				continue
			}
			key := query.Groups{{
				query.Eq("type", query.String(string(kind))),
				query.Eq("title", query.String(title)),
			}}
			stmt, err := s.compiler.Select(query.Select{Table: schema.TableHashtags, Where: key, Lock: true})
			current := get[models.Hashtag](ctx, s, op, stmt, err)

			var saved dbi.Result[models.Hashtag]
			switch {
			case current.IsFailed():
				return current.Err()
			case current.IsOK():
				count := current.Value().Count + 1
				stmt, err = s.compiler.Update(query.Update{
					Table:  schema.TableHashtags,
					Fields: []string{"count", "weight", "updated_at"},
					Values: []query.Param{query.Int(count), query.Float(hashtagWeight(kind, count)), query.Time(now())},
					Where:  key,
				})
				if r := s.exec(ctx, op, stmt, err); r.IsFailed() {
					return r.Err()
				}
				stmt, err = s.compiler.Select(query.Select{Table: schema.TableHashtags, Where: key})
				saved = get[models.Hashtag](ctx, s, op, stmt, err)
			default:
				id, err := uuid.NewV4()
				if err != nil {
					return err
				}
				stmt, err = s.compiler.Insert(query.Insert{
					Table:  schema.TableHashtags,
					Fields: []string{"id", "type", "title", "count", "weight"},
					Values: []query.Param{
						query.UUID(id),
						query.String(string(kind)),
						query.String(title),
						query.Int(1),
						query.Float(hashtagWeight(kind, 1)),
					},
				})
				saved = get[models.Hashtag](ctx, s, op, stmt, err)
			}
			if !saved.IsOK() {
				return saved.Err()
			}
			out = append(out, saved.Value())
		}
		return nil
	})
	return txResult(ctx, op, out, err)
}

// GetTrends returns the heaviest hashtags.
func (s *Session) GetTrends(ctx context.Context, limit int) dbi.Result[[]models.Hashtag] {
	stmt, err := s.compiler.Select(query.Select{
		Table: schema.TableHashtags,
		Order: []query.Order{query.OrderBy("weight", query.Desc), query.OrderBy("count", query.Desc)},
		Limit: ValidateLimit(limit),
	})
	return list[models.Hashtag](ctx, s, "GetTrends", stmt, err)
}

// SearchHashtags returns the hashtags whose title contains q, most used first.
func (s *Session) SearchHashtags(ctx context.Context, q string, limit int) dbi.Result[[]models.Hashtag] {
	stmt, err := s.compiler.Select(query.Select{
		Table: schema.TableHashtags,
		Where: query.Groups{{query.Cond("title", query.OpILike, query.Pattern(strings.TrimPrefix(q, "#")))}},
		Order: []query.Order{query.OrderBy("count", query.Desc), query.OrderBy("title", query.Asc)},
		Limit: ValidateLimit(limit),
	})
	return list[models.Hashtag](ctx, s, "SearchHashtags", stmt, err)
}
