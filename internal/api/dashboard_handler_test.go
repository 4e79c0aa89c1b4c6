package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/trademind/internal/session"
)

func TestDashboard_UnauthenticatedRedirectsBeforeContent(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{"/index.html", "/dashboard"} {
		w := s.do(t, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login.html", w.Header().Get("Location"))
		assert.NotContains(t, w.Body.String(), "Dashboard")
	}
}

func TestDashboard_RendersProfile(t *testing.T) {
	s := newTestServer(t)
	cookie := s.signUp(t)

	w := s.do(t, http.MethodGet, "/index.html", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `title="Ada Lovelace">A</span>`)
	assert.Contains(t, body, "$25,000.00")
	assert.Contains(t, body, "0.0%")
	assert.Contains(t, body, "$175.43")
}

func TestDashboard_RendersWithoutProfile(t *testing.T) {
	s := newTestServer(t)

	// A credential without a profile document, as left behind by a failed profile write.
	user, err := s.provider.SignUp(context.Background(), "eve@example.com", "Password1")
	require.NoError(t, err)
	value, err := s.cookies.Encode(session.Tokens{IDToken: user.IDToken})
	require.NoError(t, err)

	w := s.do(t, http.MethodGet, "/index.html", nil, &http.Cookie{Name: session.CookieName, Value: value})
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "User not found")
	assert.Contains(t, body, `title="eve@example.com">E</span>`)
	assert.NotContains(t, body, `class="balance"`)
}

func TestDashboard_RenewsRememberedSession(t *testing.T) {
	s := newTestServer(t)
	expired := s.expiredSession(t, s.signUp(t), true)

	w := s.do(t, http.MethodGet, "/index.html", nil, expired)
	require.Equal(t, http.StatusOK, w.Code, w.Header().Get("Location"))
	assert.Contains(t, w.Body.String(), `title="Ada Lovelace">A</span>`)

	renewed := sessionCookie(t, w)
	assert.Equal(t, int(session.RememberMeMaxAge.Seconds()), renewed.MaxAge)
	tokens, err := s.cookies.Decode(renewed.Value)
	require.NoError(t, err)
	assert.True(t, tokens.Remember)
	assert.NotEqual(t, "expired", tokens.IDToken)

	w = s.do(t, http.MethodGet, "/api/v1/users/me", nil, renewed)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDashboard_RedirectsWhenRefreshTokenIsSpent(t *testing.T) {
	s := newTestServer(t)
	expired := s.expiredSession(t, s.signUp(t), true)

	w := s.do(t, http.MethodGet, "/index.html", nil, expired)
	require.Equal(t, http.StatusOK, w.Code)

	// The refresh token rotated on the first renewal.
	w = s.do(t, http.MethodGet, "/index.html", nil, expired)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login.html", w.Header().Get("Location"))
}

func TestUsersMe_RenewsExpiredCookieSession(t *testing.T) {
	s := newTestServer(t)
	expired := s.expiredSession(t, s.signUp(t), false)

	w := s.do(t, http.MethodGet, "/api/v1/users/me", nil, expired)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	renewed := sessionCookie(t, w)
	assert.Zero(t, renewed.MaxAge)

	w = s.do(t, http.MethodGet, "/api/v1/users/me", nil, renewed)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTicks_StreamsBoard(t *testing.T) {
	s := newTestServer(t)
	cookie := s.signUp(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ticks?symbols=AAPL", nil).WithContext(ctx)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	body := w.Body.String()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.GreaterOrEqual(t, strings.Count(body, "event:tick"), 2)
	assert.Contains(t, body, `"id":"price:AAPL"`)
	assert.Contains(t, body, `"id":"balance:portfolio"`)
	assert.NotContains(t, body, "price:TSLA")
}

func TestHealthAndPing(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"UP","message":"TradeMind server is healthy."}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/ping", nil)
	assert.Equal(t, "pong", w.Body.String())
}

func TestClientConfig(t *testing.T) {
	tests := []struct {
		name string
		deps Dependencies
		want string
	}{
		{name: "default", deps: Dependencies{}, want: `{"googleSignIn":"disabled"}`},
		{name: "email", deps: Dependencies{GoogleSignIn: GoogleSignInEmail}, want: `{"googleSignIn":"email"}`},
		{
			name: "identity services",
			deps: Dependencies{GoogleSignIn: GoogleSignInIdentityServices, GoogleClientID: "client-1.apps.googleusercontent.com"},
			want: `{"googleSignIn":"gis","googleClientId":"client-1.apps.googleusercontent.com"}`,
		},
		{name: "identity services without client", deps: Dependencies{GoogleSignIn: GoogleSignInIdentityServices}, want: `{"googleSignIn":"disabled"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/api/v1/config", clientConfig(tt.deps))

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/config", nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}

func TestClientConfig_Route(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/v1/config", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"googleSignIn":"disabled"}`, w.Body.String())
}
