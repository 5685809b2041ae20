package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tickevo.app/backend/common/logger"
	"tickevo.app/backend/internal/service"
)

type contextKey string

const userIDContextKey contextKey = "user_id"

// RequireAuth resolves the raw token in the Authorization header to a user.
// The header carries the token itself, without a "Bearer" scheme.
func RequireAuth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		userID, err := authService.Authenticate(ctx, c.GetHeader("Authorization"))
		if err != nil {
			switch {
			case errors.Is(err, service.ErrMissingToken):
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "no token provided"})
			case errors.Is(err, service.ErrInvalidToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to authenticate"})
			}
			return
		}

		ctx = context.WithValue(ctx, userIDContextKey, userID)
		ctx = logger.WithLogFields(ctx, logger.LogFields{UserID: &userID})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetUserID returns the authenticated user, or false outside RequireAuth.
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	return userID, ok
}

// WithUserID is what RequireAuth attaches; handlers under test use it directly.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
