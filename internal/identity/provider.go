// Package identity wraps the identity provider behind a small capability interface.
package identity

import (
	"context"

	"github.com/example/trademind/internal/models"
)

// Provider is the set of identity operations the application needs.
// Failures are returned as *Error so callers can branch on the code.
type Provider interface {
	// SignUp registers an email/password credential and returns the signed-in identity.
	SignUp(ctx context.Context, email, password string) (*models.Identity, error)
	UpdateDisplayName(ctx context.Context, uid, displayName string) error
	// DeleteAccount removes a credential. It is used to roll back a half-finished registration.
	DeleteAccount(ctx context.Context, uid string) error
	SignIn(ctx context.Context, email, password string) (*models.Identity, error)
	// SignInWithIdP exchanges a Google ID token. The boolean reports whether the account was just created.
	SignInWithIdP(ctx context.Context, googleIDToken string) (*models.Identity, bool, error)
	// SignOut revokes every refresh token of uid.
	SignOut(ctx context.Context, uid string) error
	SendPasswordReset(ctx context.Context, email string) error
	VerifyToken(ctx context.Context, idToken string) (*models.Identity, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.Identity, error)
}

// Mailer delivers password reset links when the application sends its own reset mail.
type Mailer interface {
	SendEmail(recipient, subject, body string) error
}
