package models

import "strings"

// SignUpRequest represents the request body for creating an account.
type SignUpRequest struct {
	Name            string `json:"name" binding:"required,tm_name"`
	Email           string `json:"email" binding:"required,tm_email"`
	Password        string `json:"password" binding:"required,tm_signup_password"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
	AgreeTerms      bool   `json:"agreeTerms" binding:"tm_true"`
	Newsletter      bool   `json:"newsletter"`
}

// SignInRequest represents the request body for email/password sign-in.
type SignInRequest struct {
	Email      string `json:"email" binding:"required,tm_email"`
	Password   string `json:"password" binding:"required,tm_signin_password"`
	RememberMe bool   `json:"rememberMe"`
}

// GoogleSignInRequest carries the Google OAuth ID token obtained by the popup flow.
type GoogleSignInRequest struct {
	IDToken    string `json:"idToken" binding:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// ResetPasswordRequest represents the request body for a password reset.
type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required,tm_email"`
}

// RefreshRequest carries a refresh token. API clients send it in the body, browsers rely on the session cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// PasswordStrengthRequest is used by the live strength meter.
type PasswordStrengthRequest struct {
	Password string `json:"password"`
}

// UpdateProfileRequest represents the mutable fields of a profile.
// Pointers distinguish "not provided" from zero values.
type UpdateProfileRequest struct {
	DisplayName   *string `json:"displayName,omitempty" binding:"omitempty,tm_name"`
	RiskLevel     *string `json:"riskLevel,omitempty" binding:"omitempty,oneof=low medium high"`
	Notifications *bool   `json:"notifications,omitempty"`
	Newsletter    *bool   `json:"newsletter,omitempty"`
}

// CreateSignalRequest represents the request body for recording a trading signal.
type CreateSignalRequest struct {
	Symbol      string  `json:"symbol" binding:"required"`
	Action      string  `json:"action" binding:"required,oneof=BUY SELL"`
	Confidence  string  `json:"confidence" binding:"omitempty,oneof=high medium low"`
	EntryPrice  float64 `json:"entryPrice" binding:"gte=0"`
	TargetPrice float64 `json:"targetPrice" binding:"gte=0"`
	StopLoss    float64 `json:"stopLoss" binding:"gte=0"`
	Comment     string  `json:"comment"`
}

// SignalQuery is the query string of GET /api/v1/signals.
type SignalQuery struct {
	Action     string `form:"action" binding:"omitempty,oneof=BUY SELL buy sell"`
	Confidence string `form:"confidence" binding:"omitempty,oneof=high medium low"`
}

// Filter converts the query into a SignalFilter.
func (q SignalQuery) Filter() SignalFilter {
	return SignalFilter{Action: strings.ToUpper(q.Action), Confidence: q.Confidence}
}

// CreateTradeRequest represents the request body for recording an executed trade.
type CreateTradeRequest struct {
	Symbol   string  `json:"symbol" binding:"required"`
	Side     string  `json:"side" binding:"required,oneof=BUY SELL"`
	Quantity float64 `json:"quantity" binding:"gt=0"`
	Price    float64 `json:"price" binding:"gte=0"`
	PnL      float64 `json:"pnl"`
	Status   string  `json:"status"`
}

// CreateAlertRequest represents the request body for a new price alert.
type CreateAlertRequest struct {
	Symbol    string `json:"symbol" binding:"required"`
	AlertType string `json:"alertType" binding:"required,oneof=price signal"`
	Condition string `json:"condition" binding:"required"`
}

// Fields converts the provided values into a profile patch keyed by document field path.
func (r UpdateProfileRequest) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if r.DisplayName != nil {
		fields["displayName"] = strings.TrimSpace(*r.DisplayName)
	}
	if r.RiskLevel != nil {
		fields["preferences.riskLevel"] = *r.RiskLevel
	}
	if r.Notifications != nil {
		fields["preferences.notifications"] = *r.Notifications
	}
	if r.Newsletter != nil {
		fields["preferences.newsletter"] = *r.Newsletter
	}
	return fields
}
