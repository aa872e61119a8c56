package types

import "github.com/gofrs/uuid"

// HTTP Header Constants
const (
	HeaderUID           = "uid"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
)

// Authentication Constants
const (
	BearerPrefix = "Bearer "

	// AccessTokenCookie carries the JWT for browser clients.
	AccessTokenCookie = "access_token"
)

// UserCtxName is the fiber Locals key holding the authenticated UserContext.
const UserCtxName = "user"

// Common Values
const (
	UserRole  = "user"
	AdminRole = "admin"
)

// UserContext is the identity carried by a verified access token.
type UserContext struct {
	UserID      uuid.UUID `json:"uid"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Avatar      string    `json:"avatar"`
	SystemRole  string    `json:"role"`
	SocialName  string    `json:"socialName"`
	Banner      string    `json:"banner"`
	TagLine     string    `json:"tagLine"`
	CreatedDate int64     `json:"createdDate"`
}

// IsAdmin reports whether the user carries the admin system role.
func (u UserContext) IsAdmin() bool {
	return u.SystemRole == AdminRole
}
