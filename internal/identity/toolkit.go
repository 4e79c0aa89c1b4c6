package identity

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/example/trademind/internal/models"
)

const (
	identityToolkitURL = "https://identitytoolkit.googleapis.com/v1"
	secureTokenURL     = "https://securetoken.googleapis.com/v1"
)

// ToolkitClient is a client for the Identity Toolkit and Secure Token REST APIs.
// These cover the end-user flows (password sign-in, IdP sign-in, refresh) the Admin SDK does not offer.
type ToolkitClient struct {
	toolkit *resty.Client
	secure  *resty.Client
	apiKey  string
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewToolkitClient creates a rate limited REST client. rateLimit is in requests per second.
func NewToolkitClient(apiKey string, rateLimit float64, logger *zap.Logger) *ToolkitClient {
	return newToolkitClient(identityToolkitURL, secureTokenURL, apiKey, rateLimit, logger)
}

func newToolkitClient(toolkitURL, secureURL, apiKey string, rateLimit float64, logger *zap.Logger) *ToolkitClient {
	burst := int(rateLimit)
	if burst < 1 {
		burst = 1
	}
	return &ToolkitClient{
		toolkit: resty.New().SetBaseURL(toolkitURL),
		secure:  resty.New().SetBaseURL(secureURL),
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Limit(rateLimit), burst),
		logger:  logger,
	}
}

type toolkitErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// AuthResponse is the common payload of signUp, signInWithPassword and signInWithIdp.
type AuthResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoUrl"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	IsNewUser    bool   `json:"isNewUser"`
}

// Identity converts the payload, resolving expiresIn against the current time.
func (r *AuthResponse) Identity() *models.Identity {
	return &models.Identity{
		UID:          r.LocalID,
		Email:        r.Email,
		DisplayName:  r.DisplayName,
		PhotoURL:     r.PhotoURL,
		IDToken:      r.IDToken,
		RefreshToken: r.RefreshToken,
		ExpiresAt:    expiry(r.ExpiresIn),
	}
}

type refreshResponse struct {
	ExpiresIn    string `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
	UserID       string `json:"user_id"`
}

func expiry(expiresIn string) time.Time {
	seconds, err := strconv.Atoi(expiresIn)
	if err != nil {
		seconds = 3600
	}
	return time.Now().Add(time.Duration(seconds) * time.Second)
}

// doRequest waits for the limiter, posts the request and maps API errors to provider codes.
// No retries: failures are surfaced to the caller once.
func (c *ToolkitClient) doRequest(ctx context.Context, req *resty.Request, path string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return newError(CodeNetworkFailed, fmt.Errorf("rate limiter wait failed: %w", err))
	}

	var apiErr toolkitErrorResponse
	c.logger.Debug("Executing identity request", zap.String("path", path))
	resp, err := req.SetContext(ctx).SetQueryParam("key", c.apiKey).SetError(&apiErr).Post(path)
	if err != nil {
		c.logger.Error("Identity request failed", zap.String("path", path), zap.Error(err))
		return newError(CodeNetworkFailed, err)
	}
	if resp.IsError() {
		c.logger.Warn("Identity request rejected",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode()),
			zap.String("message", apiErr.Error.Message),
		)
		return newError(codeFromRESTMessage(apiErr.Error.Message),
			fmt.Errorf("%s failed with status %d: %s", path, resp.StatusCode(), apiErr.Error.Message))
	}
	return nil
}

// SignUp calls accounts:signUp.
func (c *ToolkitClient) SignUp(ctx context.Context, email, password string) (*AuthResponse, error) {
	var result AuthResponse
	req := c.toolkit.R().
		SetBody(map[string]interface{}{"email": email, "password": password, "returnSecureToken": true}).
		SetResult(&result)
	if err := c.doRequest(ctx, req, "/accounts:signUp"); err != nil {
		return nil, err
	}
	return &result, nil
}

// SignInWithPassword calls accounts:signInWithPassword.
func (c *ToolkitClient) SignInWithPassword(ctx context.Context, email, password string) (*AuthResponse, error) {
	var result AuthResponse
	req := c.toolkit.R().
		SetBody(map[string]interface{}{"email": email, "password": password, "returnSecureToken": true}).
		SetResult(&result)
	if err := c.doRequest(ctx, req, "/accounts:signInWithPassword"); err != nil {
		return nil, err
	}
	return &result, nil
}

// SignInWithIdp exchanges a Google ID token through accounts:signInWithIdp.
func (c *ToolkitClient) SignInWithIdp(ctx context.Context, googleIDToken, requestURI string) (*AuthResponse, error) {
	var result AuthResponse
	req := c.toolkit.R().
		SetBody(map[string]interface{}{
			"postBody":            "id_token=" + googleIDToken + "&providerId=google.com",
			"requestUri":          requestURI,
			"returnIdpCredential": true,
			"returnSecureToken":   true,
		}).
		SetResult(&result)
	if err := c.doRequest(ctx, req, "/accounts:signInWithIdp"); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendPasswordResetEmail asks the provider to deliver its own reset mail through accounts:sendOobCode.
func (c *ToolkitClient) SendPasswordResetEmail(ctx context.Context, email string) error {
	req := c.toolkit.R().
		SetBody(map[string]interface{}{"requestType": "PASSWORD_RESET", "email": email})
	return c.doRequest(ctx, req, "/accounts:sendOobCode")
}

// Refresh exchanges a refresh token for a new ID token.
func (c *ToolkitClient) Refresh(ctx context.Context, refreshToken string) (*models.Identity, error) {
	var result refreshResponse
	req := c.secure.R().
		SetFormData(map[string]string{"grant_type": "refresh_token", "refresh_token": refreshToken}).
		SetResult(&result)
	if err := c.doRequest(ctx, req, "/token"); err != nil {
		return nil, err
	}
	return &models.Identity{
		UID:          result.UserID,
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
		ExpiresAt:    expiry(result.ExpiresIn),
	}, nil
}
