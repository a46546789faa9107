package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminChecker decides whether an authenticated user is an administrator.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID, email string) (bool, error)
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin(checker AdminChecker, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		userID := UserID(c)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
			return
		}
		ok, err := checker.IsAdmin(c.Request.Context(), userID, UserEmail(c))
		if err != nil {
			logger.Error("Admin check failed", zap.String("userID", userID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Admin access required"})
			return
		}
		c.Next()
	}
}
