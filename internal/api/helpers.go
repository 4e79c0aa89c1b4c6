package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/trademind/internal/core"
	"github.com/example/trademind/internal/identity"
	"github.com/example/trademind/internal/middleware"
	"github.com/example/trademind/internal/models"
	"github.com/example/trademind/internal/session"
	"github.com/example/trademind/internal/validation"
)

// statusForCode maps a result code to an HTTP status.
func statusForCode(code string) int {
	switch code {
	case identity.CodeUserNotFound, identity.CodeWrongPassword, identity.CodeInvalidCredential, identity.CodeTokenExpired:
		return http.StatusUnauthorized
	case identity.CodeEmailAlreadyInUse:
		return http.StatusConflict
	case identity.CodeWeakPassword, identity.CodeInvalidEmail:
		return http.StatusBadRequest
	case identity.CodeUserDisabled, core.CodePermissionDenied:
		return http.StatusForbidden
	case identity.CodeTooManyRequests:
		return http.StatusTooManyRequests
	case identity.CodeNetworkFailed:
		return http.StatusBadGateway
	case core.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func notify(t models.NotificationType, message string) *models.Notification {
	return models.NewNotification(t, message)
}

// respondFailure writes a failed result. Server-side failures get the generic toast.
func respondFailure[T any](c *gin.Context, res core.Result[T]) {
	status := statusForCode(res.Code)
	toast := res.Error
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		toast = middleware.UnexpectedErrorMessage
	}
	c.JSON(status, ErrorResponse{
		Error:        res.Error,
		Code:         res.Code,
		Notification: notify(models.NotificationError, toast),
	})
}

// bindJSON binds and validates the request body. On failure it writes the response and returns false:
// validation errors become 422 with per-field messages, malformed bodies 400.
func bindJSON(c *gin.Context, logger *zap.Logger, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}
	if fields, first, ok := validation.FieldMessages(err); ok {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:        first,
			Fields:       fields,
			Notification: notify(models.NotificationError, first),
		})
		return false
	}

	message := "Invalid request body"
	if errors.Is(err, io.EOF) {
		message = "Request body is required"
	}
	logger.Debug("Malformed request body", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:        message,
		Details:      err.Error(),
		Notification: notify(models.NotificationError, middleware.UnexpectedErrorMessage),
	})
	return false
}

// currentIdentity returns the identity set by the auth middleware, answering 401 when it is missing.
func currentIdentity(c *gin.Context) (*models.Identity, bool) {
	user, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:        "Authentication error: user not found in context",
			Notification: notify(models.NotificationError, "Please sign in to continue."),
		})
		return nil, false
	}
	return user, true
}

// renewCookieSession renews a cookie session whose ID token was rejected. Requests that authenticate
// with a bearer token are never renewed.
func renewCookieSession(c *gin.Context, cookies *session.CookieCodec, refresher session.Refresher, logger *zap.Logger) (*models.Identity, bool) {
	if c.GetHeader("Authorization") != "" || cookies == nil {
		return nil, false
	}
	user, err := cookies.Renew(c, refresher)
	if err != nil {
		if !errors.Is(err, session.ErrNotRenewable) {
			logger.Info("Cookie session renewal failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		}
		return nil, false
	}
	return user, true
}
