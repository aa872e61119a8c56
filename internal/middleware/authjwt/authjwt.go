package authjwt

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/qolzam/telar/apps/social/internal/cache"
	"github.com/qolzam/telar/apps/social/internal/pkg/log"
	platformconfig "github.com/qolzam/telar/apps/social/internal/platform/config"
	"github.com/qolzam/telar/apps/social/internal/types"
)

// Config defines the config for the JWT middleware.
type Config struct {
	// The EC public key for validating ES256 tokens.
	PublicKey string
	// The claim key where the UserContext is stored.
	ClaimKey string
	// The context key to store the UserContext.
	UserCtxName string
	// Optional cache service for session allowlisting
	CacheService *cache.GenericCacheService
}

var (
	errExpired        = errors.New("token has expired")
	errClaimFormat    = errors.New("invalid token claim format")
	errMissingSession = errors.New("missing session ID")
	errMissingUser    = errors.New("missing user ID")
	errSessionCheck   = errors.New("session validation failed")
	errRevoked        = errors.New("session has been invalidated")
)

type verifier struct {
	key      *ecdsa.PublicKey
	claimKey string
	sessions *cache.GenericCacheService
}

func newVerifier(publicKey, claimKey string, sessions *cache.GenericCacheService) (*verifier, error) {
	ecPublicKey, err := jwt.ParseECPublicKeyFromPEM([]byte(publicKey))
	if err != nil {
		return nil, fmt.Errorf("failed to parse EC public key: %w", err)
	}
	// Only an enabled cache takes part in the allowlist check.
	if !sessions.IsEnabled() {
		sessions = nil
	}
	return &verifier{key: ecPublicKey, claimKey: claimKey, sessions: sessions}, nil
}

func (v *verifier) verify(ctx context.Context, tokenString string) (types.UserContext, error) {
	var userCtx types.UserContext

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Enforce the expected signing algorithm.
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.key, nil
	})
	if errors.Is(err, jwt.ErrTokenExpired) {
		return userCtx, errExpired
	}
	if err != nil {
		return userCtx, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return userCtx, errors.New("invalid token")
	}
	if exp, ok := claims["exp"].(float64); ok && int64(exp) < time.Now().Unix() {
		return userCtx, errExpired
	}

	claimData, ok := claims[v.claimKey].(map[string]interface{})
	if !ok {
		return userCtx, errClaimFormat
	}

	if v.sessions != nil {
		jtiStr, _ := claims["jti"].(string)
		if jtiStr == "" {
			return userCtx, errMissingSession
		}
		uidStr, _ := claimData[types.HeaderUID].(string)
		if uidStr == "" {
			return userCtx, errMissingUser
		}
		key := v.sessions.GenerateHashKey("sessions", map[string]interface{}{"uid": uidStr})
		isMember, err := v.sessions.SetIsMember(ctx, key, jtiStr)
		if err != nil {
			// Fail closed.
			log.WarnWithContext(ctx, "Redis session check failed for user %s: %v", uidStr, err)
			return userCtx, fmt.Errorf("%w: %v", errSessionCheck, err)
		}
		if !isMember {
			return userCtx, errRevoked
		}
	}

	userCtx, err = mapToUserContext(claimData)
	if err != nil {
		return userCtx, fmt.Errorf("invalid user context in token: %w", err)
	}
	return userCtx, nil
}

// New creates a new middleware handler.
func New(cfg Config) fiber.Handler {
	// Parse the key once on startup.
	v, err := newVerifier(cfg.PublicKey, cfg.ClaimKey, cfg.CacheService)
	if err != nil {
		panic(err.Error())
	}
	ctxName := cfg.UserCtxName
	if ctxName == "" {
		ctxName = types.UserCtxName
	}

	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return unauthorized(c, "Missing or invalid JWT", "")
		}

		userCtx, err := v.verify(c.UserContext(), tokenString)
		switch {
		case err == nil:
			c.Locals(ctxName, userCtx)
			return c.Next()
		case errors.Is(err, errExpired):
			return unauthorized(c, "Token has expired", "")
		case errors.Is(err, errSessionCheck):
			return unauthorized(c, "Session validation failed. Please log in again.", "")
		case errors.Is(err, errRevoked):
			return unauthorized(c, "Session has been invalidated.", "")
		default:
			return unauthorized(c, "Invalid token", err.Error())
		}
	}
}

// bearerToken reads the Authorization header and falls back to the
// access_token cookie used by browsers.
func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get(types.HeaderAuthorization)
	if strings.HasPrefix(authHeader, types.BearerPrefix) {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 {
			return parts[1]
		}
	}
	return c.Cookies(types.AccessTokenCookie)
}

func unauthorized(c *fiber.Ctx, message, details string) error {
	body := fiber.Map{
		"code":    "UNAUTHORIZED",
		"message": message,
	}
	if details != "" {
		body["details"] = details
	}
	return c.Status(fiber.StatusUnauthorized).JSON(body)
}

// mapToUserContext converts claim data to UserContext
func mapToUserContext(claimData map[string]interface{}) (types.UserContext, error) {
	var userCtx types.UserContext

	userIDStr, ok := claimData[types.HeaderUID].(string)
	if !ok {
		return userCtx, errors.New("missing or invalid uid in claim")
	}
	userID, err := uuid.FromString(userIDStr)
	if err != nil {
		return userCtx, fmt.Errorf("invalid user ID: %v", err)
	}
	userCtx.UserID = userID

	userCtx.Username, _ = claimData["username"].(string)
	userCtx.DisplayName, _ = claimData["displayName"].(string)
	userCtx.Avatar, _ = claimData["avatar"].(string)
	userCtx.SystemRole, _ = claimData["role"].(string)
	userCtx.SocialName, _ = claimData["socialName"].(string)
	userCtx.Banner, _ = claimData["banner"].(string)
	userCtx.TagLine, _ = claimData["tagLine"].(string)
	if createdDate, ok := claimData["createdDate"].(float64); ok {
		userCtx.CreatedDate = int64(createdDate)
	}

	return userCtx, nil
}

// ValidateToken validates a JWT token and returns the UserContext if valid.
// It does not write to the response.
func ValidateToken(ctx context.Context, tokenString string, publicKey string, claimKey string, sessionCache *cache.GenericCacheService) (types.UserContext, error) {
	v, err := newVerifier(publicKey, claimKey, sessionCache)
	if err != nil {
		return types.UserContext{}, err
	}
	return v.verify(ctx, tokenString)
}

// FromConfig builds the middleware from the process configuration. The
// session allowlist is consulted only when CACHE_SESSIONS is on.
func FromConfig(cfg *platformconfig.Config, sessions *cache.GenericCacheService) fiber.Handler {
	if !cfg.Cache.Sessions {
		sessions = nil
	}
	return New(Config{
		PublicKey:    cfg.JWT.PublicKey,
		ClaimKey:     cfg.JWT.ClaimKey,
		UserCtxName:  types.UserCtxName,
		CacheService: sessions,
	})
}
