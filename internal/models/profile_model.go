package models

import "time"

// Default values written into every new profile.
const (
	DefaultBalance   = 25000.00
	DefaultRiskLevel = "medium"
)

// Profile is the per-user document stored in the "users" collection, keyed by the identity UID.
type Profile struct {
	ID          string      `json:"id" firestore:"-"`
	DisplayName string      `json:"displayName" firestore:"displayName"`
	Email       string      `json:"email" firestore:"email"`
	PhotoURL    *string     `json:"photoURL" firestore:"photoURL"`
	CreatedAt   time.Time   `json:"createdAt" firestore:"createdAt"`
	LastLoginAt time.Time   `json:"lastLoginAt" firestore:"lastLoginAt"`
	UpdatedAt   *time.Time  `json:"updatedAt,omitempty" firestore:"updatedAt,omitempty"`
	Portfolio   Portfolio   `json:"portfolio" firestore:"portfolio"`
	Preferences Preferences `json:"preferences" firestore:"preferences"`
}

// Portfolio holds the simulated trading statistics of a profile.
type Portfolio struct {
	Balance     float64 `json:"balance" firestore:"balance"`
	TotalPnL    float64 `json:"totalPnL" firestore:"totalPnL"`
	WinRate     float64 `json:"winRate" firestore:"winRate"`
	TotalTrades int64   `json:"totalTrades" firestore:"totalTrades"`
}

// Preferences holds user-controlled settings.
type Preferences struct {
	RiskLevel     string `json:"riskLevel" firestore:"riskLevel"`
	Notifications bool   `json:"notifications" firestore:"notifications"`
	Newsletter    bool   `json:"newsletter" firestore:"newsletter"`
}

// ProfileExtras are the optional fields supplied by a sign-up form and merged into a new profile.
type ProfileExtras struct {
	DisplayName string
	PhotoURL    string
	Newsletter  bool
}
