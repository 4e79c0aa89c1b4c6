package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/trademind/internal/models"
	"github.com/example/trademind/internal/validation"
)

func TestSignUp_CreatesProfileAndRedirects(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/auth/signup", adaSignUp)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[AuthResponse](t, w)
	assert.Equal(t, DashboardPath, resp.RedirectTo)
	assert.EqualValues(t, 1500, resp.RedirectDelayMs)
	require.NotNil(t, resp.Notification)
	assert.Equal(t, "Account created successfully! Redirecting...", resp.Notification.Message)
	assert.Equal(t, models.NotificationSuccess, resp.Notification.Type)
	assert.Equal(t, models.NotificationDismissAfterMs, resp.Notification.DismissAfterMs)
	assert.NotEmpty(t, resp.IDToken)

	cookie := sessionCookie(t, w)
	assert.Zero(t, cookie.MaxAge)

	w = s.do(t, http.MethodGet, "/api/v1/users/me", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	profile := decode[models.Profile](t, w)
	assert.Equal(t, "Ada Lovelace", profile.DisplayName)
	assert.Equal(t, "ada@example.com", profile.Email)
	assert.Equal(t, models.DefaultBalance, profile.Portfolio.Balance)
	assert.Equal(t, models.DefaultRiskLevel, profile.Preferences.RiskLevel)
	assert.True(t, profile.Preferences.Notifications)
}

func TestSignUp_ValidationErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name  string
		patch map[string]interface{}
		field string
		msg   string
	}{
		{name: "email", patch: map[string]interface{}{"email": "not-an-email"}, field: "email", msg: validation.MsgEmail},
		{name: "short password", patch: map[string]interface{}{"password": "Short1", "confirmPassword": "Short1"}, field: "password", msg: validation.MsgSignUpPassword},
		{name: "mismatch", patch: map[string]interface{}{"confirmPassword": "Different1"}, field: "confirmPassword", msg: validation.MsgPasswordsDiffer},
		{name: "name", patch: map[string]interface{}{"name": " A "}, field: "name", msg: validation.MsgName},
		{name: "terms", patch: map[string]interface{}{"agreeTerms": false}, field: "agreeTerms", msg: validation.MsgAgreeTerms},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := map[string]interface{}{}
			for k, v := range adaSignUp {
				body[k] = v
			}
			for k, v := range tt.patch {
				body[k] = v
			}

			w := s.do(t, http.MethodPost, "/api/v1/auth/signup", body)
			require.Equal(t, http.StatusUnprocessableEntity, w.Code)
			resp := decode[ErrorResponse](t, w)
			assert.Equal(t, tt.msg, resp.Fields[tt.field])
			require.NotNil(t, resp.Notification)
			assert.Equal(t, models.NotificationError, resp.Notification.Type)
		})
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t)

	w := s.do(t, http.MethodPost, "/api/v1/auth/signup", adaSignUp)
	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decode[ErrorResponse](t, w)
	assert.Equal(t, "An account with this email already exists.", resp.Notification.Message)
}

func TestSignIn(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t)

	w := s.do(t, http.MethodPost, "/api/v1/auth/signin", map[string]interface{}{
		"email": "ada@example.com", "password": "Engine1843", "rememberMe": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[AuthResponse](t, w)
	assert.Equal(t, "Sign in successful! Redirecting...", resp.Notification.Message)
	assert.Equal(t, DashboardPath, resp.RedirectTo)
	assert.Positive(t, sessionCookie(t, w).MaxAge)
}

func TestSignIn_Failures(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t)

	w := s.do(t, http.MethodPost, "/api/v1/auth/signin", map[string]interface{}{"email": "ada@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Incorrect password. Please try again.", decode[ErrorResponse](t, w).Error)

	w = s.do(t, http.MethodPost, "/api/v1/auth/signin", map[string]interface{}{"email": "nobody@example.com", "password": "whatever"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No account found with this email address.", decode[ErrorResponse](t, w).Error)

	w = s.do(t, http.MethodPost, "/api/v1/auth/signin", map[string]interface{}{"email": "ada@example.com", "password": "12345"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, validation.MsgSignInPassword, decode[ErrorResponse](t, w).Fields["password"])
}

func TestSignIn_MalformedBody(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/v1/auth/signin", "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGoogleSignIn(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/auth/google", map[string]interface{}{"idToken": "grace@example.com"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Google sign in successful! Redirecting...", decode[AuthResponse](t, w).Notification.Message)

	w = s.do(t, http.MethodGet, "/api/v1/users/me", nil, sessionCookie(t, w))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "grace", decode[models.Profile](t, w).DisplayName)
}

func TestResetPassword_DoesNotDiscloseAccounts(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t)

	for _, email := range []string{"ada@example.com", "nobody@example.com"} {
		w := s.do(t, http.MethodPost, "/api/v1/auth/reset-password", map[string]interface{}{"email": email})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Password reset link sent to your email!", decode[SuccessResponse](t, w).Notification.Message)
	}
	assert.Equal(t, []string{"ada@example.com"}, s.provider.PasswordResets())
}

func TestRefresh_UsesSessionCookie(t *testing.T) {
	s := newTestServer(t)
	cookie := s.signUp(t)

	w := s.do(t, http.MethodPost, "/api/v1/auth/refresh", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	refreshed := sessionCookie(t, w)

	w = s.do(t, http.MethodGet, "/api/v1/users/me", nil, refreshed)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRefresh_WithoutToken(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/v1/auth/refresh", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignOut_RevokesSession(t *testing.T) {
	s := newTestServer(t)
	cookie := s.signUp(t)

	w := s.do(t, http.MethodPost, "/api/v1/auth/signout", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[AuthResponse](t, w)
	assert.Equal(t, "/login.html", resp.RedirectTo)
	assert.Equal(t, "Logged out successfully!", resp.Notification.Message)
	assert.Less(t, sessionCookie(t, w).MaxAge, 0)

	w = s.do(t, http.MethodGet, "/api/v1/users/me", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPasswordStrength(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/validate/password", map[string]interface{}{"password": "Engine1843"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[PasswordStrengthResponse](t, w)
	assert.Equal(t, 100, resp.Score)
	assert.Equal(t, "Strong password", resp.Label)
	assert.True(t, resp.Valid)

	w = s.do(t, http.MethodPost, "/api/v1/validate/password", map[string]interface{}{"password": "abc"})
	resp = decode[PasswordStrengthResponse](t, w)
	assert.Equal(t, 25, resp.Score)
	assert.Equal(t, "Weak password", resp.Label)
	assert.False(t, resp.Valid)
	assert.Contains(t, resp.Missing, "At least 8 characters")
}

func TestAuthState_UnauthenticatedStreamEnds(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/auth/state", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "event:auth")
	assert.Contains(t, w.Body.String(), `{"user":null}`)
}

func TestAuthState_RenewsExpiredCookieSession(t *testing.T) {
	s := newTestServer(t)
	expired := s.expiredSession(t, s.signUp(t), true)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/state", nil).WithContext(ctx)
	req.AddCookie(expired)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"ada@example.com"`)
	assert.NotContains(t, w.Body.String(), `{"user":null}`)
	sessionCookie(t, w)
}
