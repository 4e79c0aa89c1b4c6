package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/trademind/internal/core"
	"github.com/example/trademind/internal/models"
	"github.com/example/trademind/internal/session"
	"github.com/example/trademind/internal/validation"
)

// DashboardPath is where the browser goes after a successful sign-in.
const DashboardPath = "/index.html"

const googleSignInFailed = "Google sign in failed. Please try again."

// AuthHandler serves the credential endpoints.
type AuthHandler struct {
	auth          core.AuthService
	cookies       *session.CookieCodec
	redirectDelay time.Duration
	logger        *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth core.AuthService, cookies *session.CookieCodec, redirectDelay time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, cookies: cookies, redirectDelay: redirectDelay, logger: logger}
}

// startSession sets the session cookie and answers with the redirect instructions.
func (h *AuthHandler) startSession(c *gin.Context, status int, user *models.Identity, remember bool, message string) {
	tokens := session.Tokens{IDToken: user.IDToken, RefreshToken: user.RefreshToken, Remember: remember}
	if err := h.cookies.Write(c, tokens); err != nil {
		h.logger.Error("Failed to write session cookie", zap.String("uid", user.UID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:        "Failed to start session",
			Notification: notify(models.NotificationError, "An unexpected error occurred. Please try again."),
		})
		return
	}

	resp := AuthResponse{
		User:            user,
		IDToken:         user.IDToken,
		RefreshToken:    user.RefreshToken,
		RedirectTo:      DashboardPath,
		RedirectDelayMs: h.redirectDelay.Milliseconds(),
		Notification:    notify(models.NotificationSuccess, message),
	}
	if !user.ExpiresAt.IsZero() {
		expiresAt := user.ExpiresAt
		resp.ExpiresAt = &expiresAt
	}
	c.JSON(status, resp)
}

// SignUp handles POST /api/v1/auth/signup.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	name := strings.TrimSpace(req.Name)
	res := h.auth.CreateUser(c.Request.Context(), strings.TrimSpace(req.Email), req.Password, name,
		models.ProfileExtras{DisplayName: name, Newsletter: req.Newsletter})
	if !res.Success {
		respondFailure(c, res)
		return
	}
	h.startSession(c, http.StatusCreated, res.Data, false, "Account created successfully! Redirecting...")
}

// SignIn handles POST /api/v1/auth/signin.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	res := h.auth.SignInUser(c.Request.Context(), strings.TrimSpace(req.Email), req.Password)
	if !res.Success {
		respondFailure(c, res)
		return
	}
	h.startSession(c, http.StatusOK, res.Data, req.RememberMe, "Sign in successful! Redirecting...")
}

// GoogleSignIn handles POST /api/v1/auth/google with the ID token of the Google popup flow.
func (h *AuthHandler) GoogleSignIn(c *gin.Context) {
	var req models.GoogleSignInRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	res := h.auth.SignInWithGoogle(c.Request.Context(), req.IDToken)
	if !res.Success {
		if res.Error == core.DefaultErrorMessage {
			res.Error = googleSignInFailed
		}
		respondFailure(c, res)
		return
	}
	h.startSession(c, http.StatusOK, res.Data, req.RememberMe, "Google sign in successful! Redirecting...")
}

// ResetPassword handles POST /api/v1/auth/reset-password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	res := h.auth.ResetPassword(c.Request.Context(), strings.TrimSpace(req.Email))
	if !res.Success {
		respondFailure(c, res)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Message:      "Password reset email sent",
		Notification: notify(models.NotificationSuccess, "Password reset link sent to your email!"),
	})
}

// Refresh handles POST /api/v1/auth/refresh. The refresh token comes from the body or the session cookie.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, h.logger, &req) {
		return
	}

	tokens, hasCookie := h.cookies.Read(c)
	refreshToken := req.RefreshToken
	if refreshToken == "" && hasCookie {
		refreshToken = tokens.RefreshToken
	}
	if refreshToken == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:        "Refresh token is required",
			Notification: notify(models.NotificationError, "Please sign in to continue."),
		})
		return
	}

	res := h.auth.RefreshSession(c.Request.Context(), refreshToken)
	if !res.Success {
		h.cookies.Clear(c)
		respondFailure(c, res)
		return
	}
	h.startSession(c, http.StatusOK, res.Data, tokens.Remember, "Session refreshed")
}

// SignOut handles POST /api/v1/auth/signout.
func (h *AuthHandler) SignOut(c *gin.Context) {
	user, ok := currentIdentity(c)
	if !ok {
		return
	}

	res := h.auth.SignOutUser(c.Request.Context(), user.UID)
	if !res.Success {
		res.Error = "Error logging out. Please try again."
		respondFailure(c, res)
		return
	}
	h.cookies.Clear(c)
	c.JSON(http.StatusOK, AuthResponse{
		RedirectTo:      session.LoginPath,
		RedirectDelayMs: h.redirectDelay.Milliseconds(),
		Notification:    notify(models.NotificationInfo, "Logged out successfully!"),
	})
}

// PasswordStrength handles POST /api/v1/validate/password.
func (h *AuthHandler) PasswordStrength(c *gin.Context) {
	var req models.PasswordStrengthRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	c.JSON(http.StatusOK, PasswordStrengthResponse{
		Strength: validation.PasswordStrength(req.Password),
		Valid:    validation.ValidateSignUpPassword(req.Password),
	})
}

// AuthState handles GET /api/v1/auth/state: a server-sent event stream of auth-state transitions.
// The first event carries the current identity, null when the request is not authenticated.
// The stream ends after a null event. An expired cookie session is renewed before the first event.
func (h *AuthHandler) AuthState(c *gin.Context) {
	idToken, _ := bearerOrCookieToken(c, h.cookies)
	ctx := c.Request.Context()

	events := make(chan *models.Identity, 8)
	listen := func(token string) core.Unsubscribe {
		return h.auth.OnAuthStateChange(ctx, token, func(user *models.Identity) {
			select {
			case events <- user:
			default:
				h.logger.Warn("Dropping auth-state event for slow subscriber")
			}
		})
	}
	unsubscribe := listen(idToken)
	defer func() { unsubscribe() }()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	first := true
	for {
		select {
		case <-ctx.Done():
			return
		case user := <-events:
			if first && user == nil && idToken != "" {
				if renewed, ok := renewCookieSession(c, h.cookies, h.auth, h.logger); ok {
					unsubscribe()
					unsubscribe = listen(renewed.IDToken)
					first = false
					continue
				}
			}
			first = false
			c.SSEvent("auth", authStateEvent{User: user})
			c.Writer.Flush()
			if user == nil {
				return
			}
		}
	}
}

// bearerOrCookieToken returns the ID token of the request from the Authorization header or the session cookie.
func bearerOrCookieToken(c *gin.Context, cookies *session.CookieCodec) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.Split(header, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "" {
			return parts[1], true
		}
		return "", false
	}
	if tokens, ok := cookies.Read(c); ok && tokens.IDToken != "" {
		return tokens.IDToken, true
	}
	return "", false
}
