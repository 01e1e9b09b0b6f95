package util

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/saltybytes-chef/internal/logger"
	"go.uber.org/zap"
)

// UserIDKey is the gin context key holding the authenticated user's ID.
const UserIDKey = "user_id"

var (
	errNoUserID        = errors.New("no user ID information")
	errUserIDWrongType = errors.New("user ID information is of the wrong type")
)

// SetUserID records the authenticated user on the gin context and tags the
// request-scoped logger with it, so chat and publish logs name the user.
func SetUserID(c *gin.Context, userID uint) {
	c.Set(UserIDKey, userID)
	ctx := c.Request.Context()
	l := logger.FromContext(ctx).With(zap.Uint(UserIDKey, userID))
	c.Request = c.Request.WithContext(logger.IntoContext(ctx, l))
}

// GetUserIDFromContext gets the user ID from the context.
func GetUserIDFromContext(c *gin.Context) (uint, error) {
	val, ok := c.Get(UserIDKey)
	if !ok {
		return 0, errNoUserID
	}
	userID, ok := val.(uint)
	if !ok {
		return 0, errUserIDWrongType
	}
	return userID, nil
}

// RequireUserID returns the authenticated user's ID. When there is none it
// writes a 401 and aborts; the caller should return.
func RequireUserID(c *gin.Context) (uint, bool) {
	userID, err := GetUserIDFromContext(c)
	if err != nil || userID == 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return 0, false
	}
	return userID, true
}
