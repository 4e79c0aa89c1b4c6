package core

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/trademind/internal/identity"
	"github.com/example/trademind/internal/models"
)

// authService implements the AuthService interface.
type authService struct {
	provider identity.Provider
	profiles ProfileService
	hub      *StateHub
	events   EventPublisher
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService instance. events may be nil.
func NewAuthService(provider identity.Provider, profiles ProfileService, hub *StateHub, events EventPublisher, logger *zap.Logger) AuthService {
	return &authService{
		provider: provider,
		profiles: profiles,
		hub:      hub,
		events:   events,
		logger:   logger,
	}
}

// providerFailure converts a provider error into a failed result carrying the mapped message.
func providerFailure[T any](err error) Result[T] {
	code := identity.CodeOf(err)
	if code == "" {
		code = identity.CodeInternal
	}
	return fail[T](code, MessageFor(code))
}

func (s *authService) CreateUser(ctx context.Context, email, password, displayName string, extra models.ProfileExtras) Result[*models.Identity] {
	user, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		s.logger.Warn("Error creating user", zap.String("code", identity.CodeOf(err)), zap.Error(err))
		return providerFailure[*models.Identity](err)
	}

	if displayName != "" {
		if err := s.provider.UpdateDisplayName(ctx, user.UID, displayName); err != nil {
			s.logger.Error("Error setting display name", zap.String("uid", user.UID), zap.Error(err))
			s.rollback(ctx, user.UID)
			return providerFailure[*models.Identity](err)
		}
		user.DisplayName = displayName
	}

	if extra.DisplayName == "" {
		extra.DisplayName = displayName
	}
	if created := s.profiles.CreateUserDocument(ctx, user, extra); !created.Success {
		s.logger.Error("Error creating user profile", zap.String("uid", user.UID), zap.String("error", created.Error))
		s.rollback(ctx, user.UID)
		return fail[*models.Identity](identity.CodeInternal, DefaultErrorMessage)
	}

	s.logger.Info("User created", zap.String("uid", user.UID))
	s.hub.Publish(user.UID, user)
	publish(ctx, s.events, s.logger, EventUserSignedUp, user.UID, nil)
	return ok(user)
}

// rollback deletes a credential whose registration could not be completed.
func (s *authService) rollback(ctx context.Context, uid string) {
	if err := s.provider.DeleteAccount(ctx, uid); err != nil {
		s.logger.Error("Failed to roll back credential, account is orphaned", zap.String("uid", uid), zap.Error(err))
		return
	}
	s.logger.Info("Rolled back credential", zap.String("uid", uid))
}

func (s *authService) SignInUser(ctx context.Context, email, password string) Result[*models.Identity] {
	user, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		s.logger.Warn("Error signing in", zap.String("code", identity.CodeOf(err)), zap.Error(err))
		return providerFailure[*models.Identity](err)
	}

	if recorded := s.profiles.RecordLogin(ctx, user); !recorded.Success {
		s.logger.Warn("Failed to update last login", zap.String("uid", user.UID), zap.String("error", recorded.Error))
	}

	s.logger.Info("User signed in", zap.String("uid", user.UID))
	s.hub.Publish(user.UID, user)
	publish(ctx, s.events, s.logger, EventUserSignedIn, user.UID, map[string]string{"method": "password"})
	return ok(user)
}

func (s *authService) SignInWithGoogle(ctx context.Context, googleIDToken string) Result[*models.Identity] {
	user, isNew, err := s.provider.SignInWithIdP(ctx, googleIDToken)
	if err != nil {
		s.logger.Warn("Error with Google sign in", zap.String("code", identity.CodeOf(err)), zap.Error(err))
		return providerFailure[*models.Identity](err)
	}

	created := s.profiles.CreateUserDocument(ctx, user, models.ProfileExtras{})
	switch {
	case !created.Success:
		s.logger.Error("Error creating user profile", zap.String("uid", user.UID), zap.String("error", created.Error))
	case !created.Data:
		if recorded := s.profiles.RecordLogin(ctx, user); !recorded.Success {
			s.logger.Warn("Failed to update last login", zap.String("uid", user.UID), zap.String("error", recorded.Error))
		}
	}

	s.logger.Info("User signed in with Google", zap.String("uid", user.UID), zap.Bool("newUser", isNew))
	s.hub.Publish(user.UID, user)
	publish(ctx, s.events, s.logger, EventUserSignedIn, user.UID, map[string]string{"method": "google"})
	return ok(user)
}

func (s *authService) SignOutUser(ctx context.Context, uid string) Result[struct{}] {
	if err := s.provider.SignOut(ctx, uid); err != nil {
		s.logger.Warn("Error signing out", zap.String("uid", uid), zap.Error(err))
		return providerFailure[struct{}](err)
	}

	s.logger.Info("User signed out", zap.String("uid", uid))
	s.hub.Publish(uid, nil)
	publish(ctx, s.events, s.logger, EventUserSignedOut, uid, nil)
	return ok(struct{}{})
}

func (s *authService) ResetPassword(ctx context.Context, email string) Result[struct{}] {
	err := s.provider.SendPasswordReset(ctx, email)
	if err != nil && identity.CodeOf(err) != identity.CodeUserNotFound {
		s.logger.Warn("Error sending password reset", zap.String("code", identity.CodeOf(err)), zap.Error(err))
		return providerFailure[struct{}](err)
	}
	if err != nil {
		s.logger.Info("Password reset requested for unknown address")
	}
	return ok(struct{}{})
}

func (s *authService) RefreshSession(ctx context.Context, refreshToken string) Result[*models.Identity] {
	user, err := s.provider.RefreshToken(ctx, refreshToken)
	if err != nil {
		s.logger.Info("Error refreshing session", zap.String("code", identity.CodeOf(err)), zap.Error(err))
		return providerFailure[*models.Identity](err)
	}

	s.hub.Publish(user.UID, user)
	publish(ctx, s.events, s.logger, EventTokenRefreshed, user.UID, nil)
	return ok(user)
}

func (s *authService) OnAuthStateChange(ctx context.Context, idToken string, callback func(*models.Identity)) Unsubscribe {
	var current *models.Identity
	if idToken != "" {
		user, err := s.provider.VerifyToken(ctx, idToken)
		if err != nil {
			s.logger.Debug("Rejected ID token", zap.String("code", identity.CodeOf(err)), zap.Error(err))
		} else {
			current = user
		}
	}

	if current == nil {
		callback(nil)
		return func() {}
	}
	return s.hub.Subscribe(current.UID, current, callback)
}
