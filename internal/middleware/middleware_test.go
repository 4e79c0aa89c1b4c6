package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/example/trademind/internal/config"
	"github.com/example/trademind/internal/core"
	"github.com/example/trademind/internal/crypto"
	"github.com/example/trademind/internal/models"
	"github.com/example/trademind/internal/session"
)

type stubVerifier map[string]*models.Identity

func (s stubVerifier) VerifyToken(_ context.Context, idToken string) (*models.Identity, error) {
	if user, ok := s[idToken]; ok {
		return user, nil
	}
	return nil, errors.New("invalid token")
}

type stubRefresher map[string]*models.Identity

func (s stubRefresher) RefreshSession(_ context.Context, refreshToken string) core.Result[*models.Identity] {
	if user, ok := s[refreshToken]; ok {
		return core.Result[*models.Identity]{Success: true, Data: user}
	}
	return core.Result[*models.Identity]{Error: "Your session has expired. Please sign in again."}
}

func newCodec(t *testing.T) *session.CookieCodec {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	sealer, err := crypto.NewSealer(key)
	require.NoError(t, err)
	return session.NewCookieCodec(sealer, false)
}

func protectedRouter(t *testing.T, codec *session.CookieCodec) *gin.Engine {
	t.Helper()
	return protectedRouterWithRefresher(t, codec, nil)
}

func protectedRouterWithRefresher(t *testing.T, codec *session.CookieCodec, refresher session.Refresher) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	verifier := stubVerifier{"good": {UID: "u1", Email: "ada@example.com", DisplayName: "Ada"}}

	router := gin.New()
	router.GET("/me", NewAuthMiddleware(verifier, codec, refresher, zap.NewNop()).VerifyToken(), func(c *gin.Context) {
		user, ok := IdentityFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"uid": c.GetString(ContextUserID), "email": user.Email, "name": c.GetString(ContextUserDisplayName)})
	})
	return router
}

func TestVerifyToken_Bearer(t *testing.T) {
	router := protectedRouter(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":"u1","email":"ada@example.com","name":"Ada"}`, w.Body.String())
}

func TestVerifyToken_SessionCookie(t *testing.T) {
	codec := newCodec(t)
	router := protectedRouter(t, codec)

	value, err := codec.Encode(session.Tokens{IDToken: "good"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: value})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestVerifyToken_RenewsExpiredCookieSession(t *testing.T) {
	codec := newCodec(t)
	refresher := stubRefresher{"refresh-1": {UID: "u1", Email: "ada@example.com", DisplayName: "Ada", IDToken: "fresh", RefreshToken: "refresh-2"}}
	router := protectedRouterWithRefresher(t, codec, refresher)

	value, err := codec.Encode(session.Tokens{IDToken: "expired", RefreshToken: "refresh-1", Remember: true})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: value})
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"uid":"u1","email":"ada@example.com","name":"Ada"}`, w.Body.String())

	var renewed *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			renewed = c
		}
	}
	require.NotNil(t, renewed)
	assert.Equal(t, int(session.RememberMeMaxAge.Seconds()), renewed.MaxAge)
	tokens, err := codec.Decode(renewed.Value)
	require.NoError(t, err)
	assert.Equal(t, session.Tokens{IDToken: "fresh", RefreshToken: "refresh-2", Remember: true}, tokens)
}

func TestVerifyToken_RejectsUnrenewableCookieSession(t *testing.T) {
	codec := newCodec(t)
	router := protectedRouterWithRefresher(t, codec, stubRefresher{})

	value, err := codec.Encode(session.Tokens{IDToken: "expired", RefreshToken: "revoked"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: value})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyToken_DoesNotRenewBearerTokens(t *testing.T) {
	codec := newCodec(t)
	refresher := stubRefresher{"refresh-1": {UID: "u1", IDToken: "fresh"}}
	router := protectedRouterWithRefresher(t, codec, refresher)

	value, err := codec.Encode(session.Tokens{IDToken: "good", RefreshToken: "refresh-1"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer expired")
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: value})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestVerifyToken_Rejections(t *testing.T) {
	router := protectedRouter(t, newCodec(t))

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing", header: ""},
		{name: "malformed", header: "Token good"},
		{name: "invalid", header: "Bearer bad"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
			require.NotNil(t, body.Notification)
			assert.Equal(t, models.NotificationError, body.Notification.Type)
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.ErrorLevel)

	router := gin.New()
	router.Use(RecoveryMiddleware(zap.New(core)))
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Notification)
	assert.Equal(t, UnexpectedErrorMessage, body.Notification.Message)
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	router := gin.New()
	router.Use(RequestLogger(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok?x=1", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bad", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, "x=1", entries[0].ContextMap()["query"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
}

func TestCORSMiddleware_AllowsConfiguredOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORSMiddleware(&config.Config{Port: "3000", ClientURL: "http://a.test, http://b.test"}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://b.test")
	router.ServeHTTP(w, req)
	assert.Equal(t, "http://b.test", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.test")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
