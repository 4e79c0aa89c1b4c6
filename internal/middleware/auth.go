package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/trademind/internal/models"
	"github.com/example/trademind/internal/session"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID          = "userID"
	ContextUserEmail       = "userEmail"
	ContextUserDisplayName = "userDisplayName"
	ContextUserPhotoURL    = "userPhotoURL"
	ContextIdentity        = "identity"
)

// ErrorResponse mirrors the API error body. It is declared here to avoid an import cycle with internal/api.
type ErrorResponse struct {
	Error        string               `json:"error"`
	Details      string               `json:"details,omitempty"`
	Notification *models.Notification `json:"notification,omitempty"`
}

// TokenVerifier resolves an ID token to the identity it was issued for.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, idToken string) (*models.Identity, error)
}

// AuthMiddleware authenticates API requests with a provider ID token.
type AuthMiddleware struct {
	verifier  TokenVerifier
	cookies   *session.CookieCodec
	refresher session.Refresher
	logger    *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware. cookies may be nil to accept bearer tokens only.
// With a refresher, a cookie session whose ID token was rejected is renewed from its refresh token.
func NewAuthMiddleware(verifier TokenVerifier, cookies *session.CookieCodec, refresher session.Refresher, logger *zap.Logger) *AuthMiddleware {
	if verifier == nil {
		panic("AuthMiddleware requires a token verifier")
	}
	return &AuthMiddleware{verifier: verifier, cookies: cookies, refresher: refresher, logger: logger}
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Error:        message,
		Notification: models.NewNotification(models.NotificationError, message),
	})
}

// bearerToken returns the token of an "Authorization: Bearer" header.
// ok is false when the header is present but malformed.
func bearerToken(c *gin.Context) (token string, ok bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", true
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// VerifyToken reads the ID token from the Authorization header, falling back to the session cookie,
// and stores the verified identity in the gin context.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		idToken, ok := bearerToken(c)
		if !ok {
			unauthorized(c, "Authorization header format must be 'Bearer {token}'")
			return
		}
		fromCookie := false
		if idToken == "" && m.cookies != nil {
			if tokens, found := m.cookies.Read(c); found {
				idToken = tokens.IDToken
				fromCookie = true
			}
		}
		if idToken == "" {
			unauthorized(c, "Please sign in to continue.")
			return
		}

		user, err := m.verifier.VerifyToken(c.Request.Context(), idToken)
		if err != nil && fromCookie && m.refresher != nil {
			renewed, renewErr := m.cookies.Renew(c, m.refresher)
			switch {
			case renewErr == nil:
				m.logger.Debug("Renewed expired cookie session", zap.String("uid", renewed.UID))
				user, err = renewed, nil
			case !errors.Is(renewErr, session.ErrNotRenewable):
				m.logger.Info("Cookie session renewal failed", zap.Error(renewErr))
			}
		}
		if err != nil {
			m.logger.Info("Rejected ID token", zap.String("path", c.Request.URL.Path), zap.Error(err))
			unauthorized(c, "Your session has expired. Please sign in again.")
			return
		}

		c.Set(ContextUserID, user.UID)
		c.Set(ContextUserEmail, user.Email)
		if user.DisplayName != "" {
			c.Set(ContextUserDisplayName, user.DisplayName)
		}
		if user.PhotoURL != "" {
			c.Set(ContextUserPhotoURL, user.PhotoURL)
		}
		c.Set(ContextIdentity, user)
		c.Next()
	}
}

// IdentityFrom returns the identity stored by VerifyToken.
func IdentityFrom(c *gin.Context) (*models.Identity, bool) {
	raw, exists := c.Get(ContextIdentity)
	if !exists {
		return nil, false
	}
	user, ok := raw.(*models.Identity)
	return user, ok && user != nil
}
