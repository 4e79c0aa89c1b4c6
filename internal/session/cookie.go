package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/trademind/internal/core"
	"github.com/example/trademind/internal/crypto"
	"github.com/example/trademind/internal/models"
)

// CookieName is the session cookie. Hosting providers forward only this cookie name to the backend.
const CookieName = "__session"

// RememberMeMaxAge is the lifetime of a persistent session cookie.
const RememberMeMaxAge = 30 * 24 * time.Hour

// Tokens are the provider tokens kept in the session cookie.
type Tokens struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	Remember     bool   `json:"remember,omitempty"`
}

// ErrNotRenewable is returned by Renew when the request has no session cookie with a refresh token.
var ErrNotRenewable = errors.New("session has no refresh token")

// Refresher exchanges a refresh token for a new token pair.
type Refresher interface {
	RefreshSession(ctx context.Context, refreshToken string) core.Result[*models.Identity]
}

// CookieCodec seals Tokens into the session cookie.
type CookieCodec struct {
	sealer *crypto.Sealer
	secure bool
}

func NewCookieCodec(sealer *crypto.Sealer, secure bool) *CookieCodec {
	return &CookieCodec{sealer: sealer, secure: secure}
}

func (c *CookieCodec) Encode(tokens Tokens) (string, error) {
	raw, err := json.Marshal(tokens)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}
	return c.sealer.Seal(raw)
}

func (c *CookieCodec) Decode(value string) (Tokens, error) {
	raw, err := c.sealer.Open(value)
	if err != nil {
		return Tokens{}, fmt.Errorf("failed to open session: %w", err)
	}
	var tokens Tokens
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return Tokens{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return tokens, nil
}

// Write stores tokens in the response. Without Remember the cookie ends with the browser session.
func (c *CookieCodec) Write(ctx *gin.Context, tokens Tokens) error {
	value, err := c.Encode(tokens)
	if err != nil {
		return err
	}
	maxAge := 0
	if tokens.Remember {
		maxAge = int(RememberMeMaxAge.Seconds())
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(CookieName, value, maxAge, "/", "", c.secure, true)
	return nil
}

// Read returns the tokens of the request, if it carries a valid session cookie.
func (c *CookieCodec) Read(ctx *gin.Context) (Tokens, bool) {
	value, err := ctx.Cookie(CookieName)
	if err != nil || value == "" {
		return Tokens{}, false
	}
	tokens, err := c.Decode(value)
	if err != nil {
		return Tokens{}, false
	}
	return tokens, true
}

// Clear expires the session cookie.
func (c *CookieCodec) Clear(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(CookieName, "", -1, "/", "", c.secure, true)
}

// Renew exchanges the refresh token of the session cookie for a new token pair and rewrites the
// cookie with it, keeping the Remember flag. The cookie is left untouched when the refresh fails.
func (c *CookieCodec) Renew(ctx *gin.Context, refresher Refresher) (*models.Identity, error) {
	tokens, ok := c.Read(ctx)
	if !ok || tokens.RefreshToken == "" || refresher == nil {
		return nil, ErrNotRenewable
	}

	res := refresher.RefreshSession(ctx.Request.Context(), tokens.RefreshToken)
	if !res.Success {
		return nil, fmt.Errorf("session refresh rejected: %s", res.Error)
	}
	user := res.Data
	renewed := Tokens{IDToken: user.IDToken, RefreshToken: user.RefreshToken, Remember: tokens.Remember}
	if renewed.RefreshToken == "" {
		renewed.RefreshToken = tokens.RefreshToken
	}
	if err := c.Write(ctx, renewed); err != nil {
		return nil, err
	}
	return user, nil
}
