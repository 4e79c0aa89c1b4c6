package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/trademind/internal/crypto"
)

func newCodec(t *testing.T) *CookieCodec {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	sealer, err := crypto.NewSealer(key)
	require.NoError(t, err)
	return NewCookieCodec(sealer, false)
}

func writeCookie(t *testing.T, codec *CookieCodec, tokens Tokens) *http.Cookie {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	require.NoError(t, codec.Write(ctx, tokens))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestCookie_SessionScopedByDefault(t *testing.T) {
	codec := newCodec(t)
	cookie := writeCookie(t, codec, Tokens{IDToken: "id", RefreshToken: "refresh"})

	assert.Equal(t, CookieName, cookie.Name)
	assert.Zero(t, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.NotContains(t, cookie.Value, "refresh")
}

func TestCookie_RememberMeIsPersistent(t *testing.T) {
	codec := newCodec(t)
	cookie := writeCookie(t, codec, Tokens{IDToken: "id", Remember: true})
	assert.Equal(t, int(RememberMeMaxAge.Seconds()), cookie.MaxAge)
}

func TestCookie_ReadRoundTrip(t *testing.T) {
	codec := newCodec(t)
	cookie := writeCookie(t, codec, Tokens{IDToken: "id", RefreshToken: "refresh", Remember: true})

	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	ctx.Request.AddCookie(cookie)

	tokens, ok := codec.Read(ctx)
	require.True(t, ok)
	assert.Equal(t, Tokens{IDToken: "id", RefreshToken: "refresh", Remember: true}, tokens)
}

func TestCookie_ReadRejectsForgedValue(t *testing.T) {
	codec := newCodec(t)

	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	ctx.Request.AddCookie(&http.Cookie{Name: CookieName, Value: "forged"})

	_, ok := codec.Read(ctx)
	assert.False(t, ok)
}

func TestCookie_Clear(t *testing.T) {
	codec := newCodec(t)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	codec.Clear(ctx)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)
}
