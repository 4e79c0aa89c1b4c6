package core

import (
	"context"

	"github.com/example/trademind/internal/models"
)

// AuthService is the credential gateway: every identity provider call goes through it.
type AuthService interface {
	// CreateUser registers a credential, sets its display name and creates the profile.
	// A failure after the credential exists deletes the credential again.
	CreateUser(ctx context.Context, email, password, displayName string, extra models.ProfileExtras) Result[*models.Identity]
	SignInUser(ctx context.Context, email, password string) Result[*models.Identity]
	SignInWithGoogle(ctx context.Context, googleIDToken string) Result[*models.Identity]
	SignOutUser(ctx context.Context, uid string) Result[struct{}]
	// ResetPassword reports success for unknown addresses so account existence is never disclosed.
	ResetPassword(ctx context.Context, email string) Result[struct{}]
	RefreshSession(ctx context.Context, refreshToken string) Result[*models.Identity]
	// OnAuthStateChange calls callback with the identity behind idToken (nil when the token is missing
	// or invalid), then again on every later transition of that user until the subscription is cancelled.
	OnAuthStateChange(ctx context.Context, idToken string, callback func(*models.Identity)) Unsubscribe
}

// ProfileService is the profile store adapter over the user profile and record collections.
type ProfileService interface {
	GetUserData(ctx context.Context, uid string) Result[*models.Profile]
	// CreateUserDocument creates the default profile if none exists. Data reports whether it was created.
	CreateUserDocument(ctx context.Context, identity *models.Identity, extra models.ProfileExtras) Result[bool]
	UpdateUserDocument(ctx context.Context, uid string, patch map[string]interface{}) Result[struct{}]
	// RecordLogin bumps lastLoginAt, creating the profile when it is missing.
	RecordLogin(ctx context.Context, identity *models.Identity) Result[struct{}]

	AddTradingSignal(ctx context.Context, uid string, signal *models.TradingSignal) Result[string]
	AddTradeHistory(ctx context.Context, uid string, trade *models.TradeHistoryEntry) Result[string]
	AddPriceAlert(ctx context.Context, uid string, alert *models.PriceAlert) Result[string]
	GetUserSignals(ctx context.Context, uid string, filter models.SignalFilter) Result[[]models.TradingSignal]
	GetUserTradeHistory(ctx context.Context, uid string) Result[[]models.TradeHistoryEntry]
	// GetUserAlerts returns only active alerts.
	GetUserAlerts(ctx context.Context, uid string) Result[[]models.PriceAlert]
	DeactivateAlert(ctx context.Context, uid, alertID string) Result[struct{}]
}
