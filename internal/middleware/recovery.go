package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryMiddleware turns panics into a generic 500. The stack trace is logged only when
// development is true.
func RecoveryMiddleware(logger *zap.Logger, development bool) gin.HandlerFunc {
	if logger == nil {
		panic("RecoveryMiddleware requires a non-nil zap.Logger instance")
	}
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				fields := []zap.Field{
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				}
				if development {
					fields = append(fields, zap.String("stacktrace", string(debug.Stack())))
				}
				logger.Error("Panic recovered", fields...)

				if !c.Writer.Written() {
					c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
