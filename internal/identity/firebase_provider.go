package identity

import (
	"context"
	"fmt"
	"time"

	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"

	"github.com/example/trademind/internal/models"
)

// AdminClient is the subset of *auth.Client used by FirebaseProvider.
type AdminClient interface {
	UpdateUser(ctx context.Context, uid string, user *auth.UserToUpdate) (*auth.UserRecord, error)
	DeleteUser(ctx context.Context, uid string) error
	RevokeRefreshTokens(ctx context.Context, uid string) error
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
	PasswordResetLink(ctx context.Context, email string) (string, error)
}

var _ AdminClient = (*auth.Client)(nil)

// FirebaseProvider implements Provider with the Firebase Admin SDK and the Identity Toolkit REST API.
type FirebaseProvider struct {
	admin      AdminClient
	toolkit    *ToolkitClient
	mailer     Mailer
	requestURI string
	logger     *zap.Logger
}

var _ Provider = (*FirebaseProvider)(nil)

// NewFirebaseProvider creates a FirebaseProvider. When mailer is nil, password reset mail is delivered by
// the provider itself; otherwise a reset link is generated and sent through mailer.
// requestURI is the continue URI reported to signInWithIdp.
func NewFirebaseProvider(admin AdminClient, toolkit *ToolkitClient, mailer Mailer, requestURI string, logger *zap.Logger) *FirebaseProvider {
	if admin == nil {
		logger.Fatal("Firebase Auth client is not initialized for FirebaseProvider.")
	}
	if requestURI == "" {
		requestURI = "http://localhost"
	}
	return &FirebaseProvider{
		admin:      admin,
		toolkit:    toolkit,
		mailer:     mailer,
		requestURI: requestURI,
		logger:     logger,
	}
}

func adminError(err error) error {
	return newError(codeFromAdminError(err), err)
}

func (p *FirebaseProvider) SignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	resp, err := p.toolkit.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return resp.Identity(), nil
}

func (p *FirebaseProvider) UpdateDisplayName(ctx context.Context, uid, displayName string) error {
	if _, err := p.admin.UpdateUser(ctx, uid, (&auth.UserToUpdate{}).DisplayName(displayName)); err != nil {
		p.logger.Error("Failed to update display name", zap.String("uid", uid), zap.Error(err))
		return adminError(err)
	}
	return nil
}

func (p *FirebaseProvider) DeleteAccount(ctx context.Context, uid string) error {
	if err := p.admin.DeleteUser(ctx, uid); err != nil {
		p.logger.Error("Failed to delete account", zap.String("uid", uid), zap.Error(err))
		return adminError(err)
	}
	return nil
}

func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	resp, err := p.toolkit.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return resp.Identity(), nil
}

func (p *FirebaseProvider) SignInWithIdP(ctx context.Context, googleIDToken string) (*models.Identity, bool, error) {
	resp, err := p.toolkit.SignInWithIdp(ctx, googleIDToken, p.requestURI)
	if err != nil {
		return nil, false, err
	}
	return resp.Identity(), resp.IsNewUser, nil
}

func (p *FirebaseProvider) SignOut(ctx context.Context, uid string) error {
	if err := p.admin.RevokeRefreshTokens(ctx, uid); err != nil {
		p.logger.Error("Failed to revoke refresh tokens", zap.String("uid", uid), zap.Error(err))
		return adminError(err)
	}
	return nil
}

func (p *FirebaseProvider) SendPasswordReset(ctx context.Context, email string) error {
	if p.mailer == nil {
		return p.toolkit.SendPasswordResetEmail(ctx, email)
	}

	link, err := p.admin.PasswordResetLink(ctx, email)
	if err != nil {
		return adminError(err)
	}
	body := fmt.Sprintf("<html><body><p>We received a request to reset your TradeMind password.</p>"+
		"<p><a href=\"%s\">Reset your password</a></p>"+
		"<p>If you did not ask for this, you can ignore this email.</p></body></html>", link)
	if err := p.mailer.SendEmail(email, "Reset your TradeMind password", body); err != nil {
		p.logger.Error("Failed to send password reset email", zap.Error(err))
		return newError(CodeNetworkFailed, err)
	}
	return nil
}

// VerifyToken verifies an ID token, rejecting tokens issued before the last sign-out.
func (p *FirebaseProvider) VerifyToken(ctx context.Context, idToken string) (*models.Identity, error) {
	token, err := p.admin.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, adminError(err)
	}

	identity := &models.Identity{
		UID:       token.UID,
		IDToken:   idToken,
		ExpiresAt: time.Unix(token.Expires, 0),
	}
	if email, ok := token.Claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		identity.DisplayName = name
	}
	if picture, ok := token.Claims["picture"].(string); ok {
		identity.PhotoURL = picture
	}
	return identity, nil
}

// RefreshToken exchanges a refresh token and resolves the identity claims of the new ID token.
func (p *FirebaseProvider) RefreshToken(ctx context.Context, refreshToken string) (*models.Identity, error) {
	refreshed, err := p.toolkit.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	identity, err := p.VerifyToken(ctx, refreshed.IDToken)
	if err != nil {
		return nil, err
	}
	identity.RefreshToken = refreshed.RefreshToken
	identity.ExpiresAt = refreshed.ExpiresAt
	return identity, nil
}
