package identity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/trademind/internal/models"
)

const memoryTokenTTL = time.Hour

type memoryAccount struct {
	uid          string
	email        string
	passwordHash []byte
	displayName  string
	photoURL     string
}

type memorySession struct {
	uid       string
	expiresAt time.Time
}

// MemoryProvider is an in-process Provider for local development and tests.
// Google credentials are accepted as plain email addresses.
type MemoryProvider struct {
	mu            sync.Mutex
	accounts      map[string]*memoryAccount // by uid
	byEmail       map[string]string         // email -> uid
	idTokens      map[string]memorySession
	refreshTokens map[string]string // refresh token -> uid
	resets        []string
	bcryptCost    int
	now           func() time.Time
}

var _ Provider = (*MemoryProvider)(nil)

// NewMemoryProvider creates an empty MemoryProvider. bcryptCost values below bcrypt.MinCost use the default cost.
func NewMemoryProvider(bcryptCost int) *MemoryProvider {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &MemoryProvider{
		accounts:      make(map[string]*memoryAccount),
		byEmail:       make(map[string]string),
		idTokens:      make(map[string]memorySession),
		refreshTokens: make(map[string]string),
		bcryptCost:    bcryptCost,
		now:           time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\n")
}

// issue creates a token pair for acc. The caller holds the lock.
func (p *MemoryProvider) issue(acc *memoryAccount) *models.Identity {
	idToken := uuid.NewString()
	refreshToken := uuid.NewString()
	expiresAt := p.now().Add(memoryTokenTTL)
	p.idTokens[idToken] = memorySession{uid: acc.uid, expiresAt: expiresAt}
	p.refreshTokens[refreshToken] = acc.uid

	identity := acc.identity()
	identity.IDToken = idToken
	identity.RefreshToken = refreshToken
	identity.ExpiresAt = expiresAt
	return identity
}

func (a *memoryAccount) identity() *models.Identity {
	return &models.Identity{UID: a.uid, Email: a.email, DisplayName: a.displayName, PhotoURL: a.photoURL}
}

func (p *MemoryProvider) SignUp(_ context.Context, email, password string) (*models.Identity, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return nil, newError(CodeInvalidEmail, nil)
	}
	if len(password) < 6 {
		return nil, newError(CodeWeakPassword, errors.New("password should be at least 6 characters"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.bcryptCost)
	if err != nil {
		return nil, newError(CodeInternal, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.byEmail[email]; exists {
		return nil, newError(CodeEmailAlreadyInUse, nil)
	}
	acc := &memoryAccount{uid: uuid.NewString(), email: email, passwordHash: hash}
	p.accounts[acc.uid] = acc
	p.byEmail[email] = acc.uid
	return p.issue(acc), nil
}

func (p *MemoryProvider) UpdateDisplayName(_ context.Context, uid, displayName string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	acc, ok := p.accounts[uid]
	if !ok {
		return newError(CodeUserNotFound, nil)
	}
	acc.displayName = displayName
	return nil
}

func (p *MemoryProvider) DeleteAccount(_ context.Context, uid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	acc, ok := p.accounts[uid]
	if !ok {
		return newError(CodeUserNotFound, nil)
	}
	delete(p.accounts, uid)
	delete(p.byEmail, acc.email)
	p.revoke(uid)
	return nil
}

func (p *MemoryProvider) SignIn(_ context.Context, email, password string) (*models.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	uid, ok := p.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, newError(CodeUserNotFound, nil)
	}
	acc := p.accounts[uid]
	if acc.passwordHash == nil || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)) != nil {
		return nil, newError(CodeWrongPassword, nil)
	}
	return p.issue(acc), nil
}

func (p *MemoryProvider) SignInWithIdP(_ context.Context, googleIDToken string) (*models.Identity, bool, error) {
	email := normalizeEmail(googleIDToken)
	if !validEmail(email) {
		return nil, false, newError(CodeInvalidCredential, errors.New("unrecognized Google credential"))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if uid, ok := p.byEmail[email]; ok {
		return p.issue(p.accounts[uid]), false, nil
	}
	acc := &memoryAccount{
		uid:         uuid.NewString(),
		email:       email,
		displayName: strings.SplitN(email, "@", 2)[0],
	}
	p.accounts[acc.uid] = acc
	p.byEmail[email] = acc.uid
	return p.issue(acc), true, nil
}

// revoke drops every token of uid. The caller holds the lock.
func (p *MemoryProvider) revoke(uid string) {
	for token, session := range p.idTokens {
		if session.uid == uid {
			delete(p.idTokens, token)
		}
	}
	for token, owner := range p.refreshTokens {
		if owner == uid {
			delete(p.refreshTokens, token)
		}
	}
}

func (p *MemoryProvider) SignOut(_ context.Context, uid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.accounts[uid]; !ok {
		return newError(CodeUserNotFound, nil)
	}
	p.revoke(uid)
	return nil
}

func (p *MemoryProvider) SendPasswordReset(_ context.Context, email string) error {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return newError(CodeInvalidEmail, nil)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.byEmail[email]; !ok {
		return newError(CodeUserNotFound, nil)
	}
	p.resets = append(p.resets, email)
	return nil
}

// PasswordResets lists the addresses a reset was sent to, oldest first.
func (p *MemoryProvider) PasswordResets() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.resets...)
}

func (p *MemoryProvider) VerifyToken(_ context.Context, idToken string) (*models.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	session, ok := p.idTokens[idToken]
	if !ok {
		return nil, newError(CodeInvalidCredential, errors.New("unknown ID token"))
	}
	if p.now().After(session.expiresAt) {
		delete(p.idTokens, idToken)
		return nil, newError(CodeTokenExpired, nil)
	}
	acc, ok := p.accounts[session.uid]
	if !ok {
		return nil, newError(CodeUserNotFound, nil)
	}

	identity := acc.identity()
	identity.IDToken = idToken
	identity.ExpiresAt = session.expiresAt
	return identity, nil
}

func (p *MemoryProvider) RefreshToken(_ context.Context, refreshToken string) (*models.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	uid, ok := p.refreshTokens[refreshToken]
	if !ok {
		return nil, newError(CodeTokenExpired, errors.New("unknown refresh token"))
	}
	acc, ok := p.accounts[uid]
	if !ok {
		return nil, newError(CodeUserNotFound, nil)
	}
	delete(p.refreshTokens, refreshToken)
	return p.issue(acc), nil
}
