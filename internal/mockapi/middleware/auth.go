// Package middleware carries the gin middleware of the mock API.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"taskapp/internal/mockapi/helper"
)

const userIDKey = "x-user-id"

// TokenVerifier checks a bearer token and resolves the owning user.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// RequireAuth rejects requests that do not carry a live bearer token and
// records the authenticated user id on the request context.
func RequireAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer := c.GetHeader("Authorization")

		if bearer == "" {
			helper.SendUnauthorized(c, "missing bearer token")
			c.Abort()
			return
		}

		if !strings.HasPrefix(bearer, "Bearer ") {
			helper.SendUnauthorized(c, "invalid authorization format")
			c.Abort()
			return
		}

		userID, err := verifier.Verify(bearer[len("Bearer "):])
		if err != nil {
			helper.SendUnauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// CurrentUser returns the authenticated user id set by RequireAuth, or
// false on anonymous requests.
func CurrentUser(c *gin.Context) (int64, bool) {
	value, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := value.(int64)
	return userID, ok
}
