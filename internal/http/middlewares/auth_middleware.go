package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/verdantlab/planthub/internal/auth"
	"github.com/verdantlab/planthub/internal/cache"
	"github.com/verdantlab/planthub/internal/domain/user"
)

// Keep these interfaces small so tests can fake them easily.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

type UserGetter interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type AuthMiddleware struct {
	jwt    TokenVerifier
	users  UserGetter
	cached *cache.Cache[user.User]
	log    *slog.Logger
}

// NewAuthMiddleware builds the guard. users may be nil, which disables
// the strict existence check and trusts the verified claims alone.
func NewAuthMiddleware(jwt TokenVerifier, users UserGetter, log *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwt:    jwt,
		users:  users,
		cached: cache.New[user.User](30 * time.Second),
		log:    log,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "missing_token", "Missing or invalid Authorization header")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortUnauthorized(c, "missing_token", "Missing or invalid access token")
			return
		}

		userID, err := m.jwt.Verify(raw)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				abortUnauthorized(c, "expired_token", "Access token has expired")
				return
			}

			abortUnauthorized(c, "invalid_token", "Invalid access token")
			return
		}

		email := ""

		// strict mode: the user behind a valid token must still exist
		if m.users != nil {
			u, ok := m.cached.Get(userID)

			if !ok {
				u, err = m.users.GetByID(c.Request.Context(), userID)

				if err != nil {
					if errors.Is(err, user.ErrNotFound) {
						abortUnauthorized(c, "invalid_token", "Invalid access token")
						return
					}

					// an unreachable store must not read as a revoked token
					if m.log != nil {
						m.log.ErrorContext(c.Request.Context(), "auth user lookup failed", "err", err)
					}

					abortInternal(c)
					return
				}

				m.cached.Set(userID, u)
			}

			email = u.Email
		}

		SetIdentity(c, userID, email)

		c.Next()
	}
}

func abortInternal(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"code":    "internal_error",
			"message": "Could not verify identity",
		},
	})
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// SetIdentity stashes the verified identity on the context. Exposed so
// tests can authorize a request without minting a token.
func SetIdentity(c *gin.Context, userID, email string) {
	c.Set(ctxUserIDKey, userID)
	c.Set(ctxEmailKey, email)
}

// Helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

func EmailFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxEmailKey)
	if !ok {
		return "", false
	}
	email, ok := v.(string)
	return email, ok
}
