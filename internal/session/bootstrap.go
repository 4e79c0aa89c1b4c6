package session

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/example/trademind/internal/core"
	"github.com/example/trademind/internal/models"
)

// LoginPath is where unauthenticated dashboard requests are sent.
const LoginPath = "/login.html"

// State is the authentication state of a dashboard view.
type State string

const (
	Unauthenticated State = "unauthenticated"
	Authenticated   State = "authenticated"
)

// AuthObserver is the part of the credential gateway the bootstrap needs.
type AuthObserver interface {
	OnAuthStateChange(ctx context.Context, idToken string, callback func(*models.Identity)) core.Unsubscribe
}

// ProfileReader is the part of the profile store the bootstrap needs.
type ProfileReader interface {
	GetUserData(ctx context.Context, uid string) core.Result[*models.Profile]
}

// Session is what an authenticated dashboard renders from. Profile is nil when ProfileError is set.
type Session struct {
	Identity     *models.Identity
	Profile      *models.Profile
	ProfileError string
}

// Outcome is the result of one bootstrap run.
type Outcome struct {
	State      State
	RedirectTo string
	Session    *Session
}

// Bootstrap resolves the auth state of a dashboard request and loads the matching profile.
type Bootstrap struct {
	auth     AuthObserver
	profiles ProfileReader
	logger   *zap.Logger
}

func NewBootstrap(auth AuthObserver, profiles ProfileReader, logger *zap.Logger) *Bootstrap {
	return &Bootstrap{auth: auth, profiles: profiles, logger: logger}
}

// Run waits for the first auth-state callback for idToken and builds the outcome from it.
// Only ctx can abort the wait, in which case ctx.Err() is returned.
func (b *Bootstrap) Run(ctx context.Context, idToken string) (Outcome, error) {
	first := make(chan *models.Identity, 1)
	unsubscribe := b.auth.OnAuthStateChange(ctx, idToken, func(identity *models.Identity) {
		select {
		case first <- identity:
		default:
		}
	})
	defer unsubscribe()

	var identity *models.Identity
	select {
	case identity = <-first:
	case <-ctx.Done():
		return Outcome{State: Unauthenticated}, ctx.Err()
	}

	if identity == nil {
		return Outcome{State: Unauthenticated, RedirectTo: LoginPath}, nil
	}

	sess := &Session{Identity: identity}
	res := b.profiles.GetUserData(ctx, identity.UID)
	if res.Success {
		sess.Profile = res.Data
	} else {
		b.logger.Warn("Dashboard rendered without profile",
			zap.String("uid", identity.UID), zap.String("error", res.Error))
		sess.ProfileError = res.Error
	}
	return Outcome{State: Authenticated, Session: sess}, nil
}

// Initial returns the upper-cased first letter of the display name for the header avatar.
func (s *Session) Initial() string {
	for _, r := range s.DisplayName() {
		return strings.ToUpper(string(r))
	}
	return "?"
}

// DisplayName prefers the profile name and falls back to the identity.
func (s *Session) DisplayName() string {
	if s.Profile != nil && s.Profile.DisplayName != "" {
		return s.Profile.DisplayName
	}
	if s.Identity.DisplayName != "" {
		return s.Identity.DisplayName
	}
	return s.Identity.Email
}
