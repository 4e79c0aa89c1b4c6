package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/trademind/internal/models"
)

// UnexpectedErrorMessage is the toast shown when a request fails for an unknown reason.
const UnexpectedErrorMessage = "An unexpected error occurred. Please try again."

// RecoveryMiddleware recovers from panics in handlers, logs them with a stack trace
// and answers with a generic 500.
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		panic("RecoveryMiddleware requires a non-nil zap.Logger instance")
	}
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered",
					zap.Any("error", err),
					zap.String("stacktrace", string(debug.Stack())),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)

				if !c.Writer.Written() {
					c.JSON(http.StatusInternalServerError, ErrorResponse{
						Error:        "Internal Server Error",
						Notification: models.NewNotification(models.NotificationError, UnexpectedErrorMessage),
					})
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
