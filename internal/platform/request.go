// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package platform

import (
	"net/url"
	"reflect"

	"github.com/gofiber/fiber/v2"
	uuid "github.com/gofrs/uuid"
	"github.com/gorilla/schema"
	"github.com/qolzam/telar/apps/social/internal/types"
)

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	decoder.RegisterConverter(uuid.UUID{}, func(value string) reflect.Value {
		id, err := uuid.FromString(value)
		if err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(id)
	})
	return decoder
}

// DecodeQuery fills dst from the query string using its schema tags.
func DecodeQuery(c *fiber.Ctx, dst interface{}) error {
	values := url.Values{}
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		values.Add(string(key), string(value))
	})
	return queryDecoder.Decode(dst, values)
}

// CurrentUser returns the authenticated user stored by the JWT middleware.
func CurrentUser(c *fiber.Ctx) (types.UserContext, bool) {
	user, ok := c.Locals(types.UserCtxName).(types.UserContext)
	return user, ok && user.UserID != uuid.Nil
}

// ParamUUID parses a path parameter already checked by RequireUUID.
func ParamUUID(c *fiber.Ctx, name string) uuid.UUID {
	return uuid.FromStringOrNil(c.Params(name))
}
