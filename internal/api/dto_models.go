package api

import (
	"time"

	"github.com/example/trademind/internal/models"
	"github.com/example/trademind/internal/validation"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error        string               `json:"error"`
	Details      string               `json:"details,omitempty"`
	Code         string               `json:"code,omitempty"`
	Fields       map[string]string    `json:"fields,omitempty"` // inline messages keyed by form field
	Notification *models.Notification `json:"notification,omitempty"`
}

// SuccessResponse is the body of successful calls that return data.
type SuccessResponse struct {
	Message      string               `json:"message,omitempty"`
	Data         interface{}          `json:"data,omitempty"`
	Notification *models.Notification `json:"notification,omitempty"`
}

// AuthResponse is returned by the sign-up, sign-in and refresh endpoints.
type AuthResponse struct {
	User            *models.Identity     `json:"user"`
	IDToken         string               `json:"idToken,omitempty"`
	RefreshToken    string               `json:"refreshToken,omitempty"`
	ExpiresAt       *time.Time           `json:"expiresAt,omitempty"`
	RedirectTo      string               `json:"redirectTo,omitempty"`
	RedirectDelayMs int64                `json:"redirectDelayMs,omitempty"`
	Notification    *models.Notification `json:"notification,omitempty"`
}

// CreatedResponse reports the id of a new record.
type CreatedResponse struct {
	ID           string               `json:"id"`
	Notification *models.Notification `json:"notification,omitempty"`
}

// PasswordStrengthResponse feeds the live strength meter.
type PasswordStrengthResponse struct {
	validation.Strength
	Valid bool `json:"valid"`
}

// authStateEvent is one message of the auth-state stream. User is null when signed out.
type authStateEvent struct {
	User *models.Identity `json:"user"`
}

// Google sign-in modes reported to the login page.
const (
	GoogleSignInDisabled = "disabled"
	// GoogleSignInIdentityServices uses the Google Identity Services button and its ID token credential.
	GoogleSignInIdentityServices = "gis"
	// GoogleSignInEmail asks for an account email, which the in-memory provider accepts as a credential.
	GoogleSignInEmail = "email"
)

// ClientConfigResponse is the public configuration the login page starts from.
type ClientConfigResponse struct {
	GoogleSignIn   string `json:"googleSignIn"`
	GoogleClientID string `json:"googleClientId,omitempty"`
}
