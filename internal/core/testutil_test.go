package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/trademind/internal/db"
	"github.com/example/trademind/internal/identity"
	"github.com/example/trademind/pkg/cache"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// failingCreateStore rejects every Create call.
type failingCreateStore struct {
	db.DocumentStore
}

func (failingCreateStore) Create(context.Context, string, string, map[string]interface{}) error {
	return errors.New("firestore unavailable")
}

type fixture struct {
	store    db.DocumentStore
	provider *identity.MemoryProvider
	profiles ProfileService
	auth     AuthService
	hub      *StateHub
	events   *recordingPublisher
}

func clock() func() time.Time {
	t := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newFixture(t *testing.T, store db.DocumentStore) *fixture {
	t.Helper()
	if store == nil {
		store = db.NewMemoryStore(clock())
	}
	local, err := cache.NewLocalCache(100)
	require.NoError(t, err)
	t.Cleanup(func() { _ = local.Close() })

	logger := zap.NewNop()
	events := &recordingPublisher{}
	profiles := NewProfileService(ProfileServiceDeps{
		Profiles: db.NewProfileRepository(store),
		Signals:  db.NewSignalRepository(store),
		Trades:   db.NewTradeHistoryRepository(store),
		Alerts:   db.NewAlertRepository(store),
		Cache:    local,
		CacheTTL: time.Minute,
		Events:   events,
	}, logger)
	provider := identity.NewMemoryProvider(bcrypt.MinCost)
	hub := NewStateHub()

	return &fixture{
		store:    store,
		provider: provider,
		profiles: profiles,
		auth:     NewAuthService(provider, profiles, hub, events, logger),
		hub:      hub,
		events:   events,
	}
}
