package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/trademind/internal/api"
	"github.com/example/trademind/internal/config"
	"github.com/example/trademind/internal/core"
	"github.com/example/trademind/internal/db"
	"github.com/example/trademind/internal/firebase"
	"github.com/example/trademind/internal/identity"
	"github.com/example/trademind/pkg/cache"
	"github.com/example/trademind/pkg/mailer"
	"github.com/example/trademind/pkg/messagequeue"
)

const localCacheItems = 10000

// application holds the wired services and the resources to release on exit.
type application struct {
	Auth     core.AuthService
	Profiles core.ProfileService
	Provider identity.Provider

	closers []func() error
	logger  *zap.Logger
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Error releasing resource", zap.Error(err))
		}
	}
}

// buildApplication selects the identity/document backend and wires the services on top of it.
func buildApplication(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*application, error) {
	app := &application{logger: logger}

	var store db.DocumentStore
	switch strings.ToLower(cfg.AuthBackend) {
	case config.BackendMemory:
		logger.Warn("Using the in-memory backend, all accounts and data are lost on exit")
		store = db.NewMemoryStore(time.Now)
		app.Provider = identity.NewMemoryProvider(bcrypt.DefaultCost)

	default:
		fbApp, err := firebase.InitApp(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Firebase Admin SDK: %w", err)
		}
		authClient, err := fbApp.Auth(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get Firebase Auth client: %w", err)
		}
		firestoreClient, err := fbApp.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get Firestore client: %w", err)
		}
		fsStore := db.NewFirestoreStore(firestoreClient, logger)
		app.closers = append(app.closers, fsStore.Close)
		store = fsStore

		var resetMailer identity.Mailer
		if cfg.MailerConfigured() {
			resetMailer = mailer.New(mailer.Config{
				Host: cfg.SMTPHost,
				Port: cfg.SMTPPort,
				User: cfg.SMTPUser,
				Pass: cfg.SMTPPass,
				From: cfg.MailFrom,
			})
			logger.Info("Password reset mail is sent over SMTP", zap.String("host", cfg.SMTPHost))
		}

		requestURI := cfg.ClientURL
		if requestURI == "" {
			requestURI = "http://localhost:" + cfg.Port
		}
		toolkit := identity.NewToolkitClient(cfg.FirebaseWebAPIKey, cfg.IdentityRateLimit, logger)
		app.Provider = identity.NewFirebaseProvider(authClient, toolkit, resetMailer, requestURI, logger)
		logger.Info("Firebase Admin SDK (Firestore, Auth) initialized successfully.")
	}

	profileCache, err := newProfileCache(cfg, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.closers = append(app.closers, profileCache.Close)

	events := newEventPublisher(cfg, logger, app)

	app.Profiles = core.NewProfileService(core.ProfileServiceDeps{
		Profiles: db.NewProfileRepository(store),
		Signals:  db.NewSignalRepository(store),
		Trades:   db.NewTradeHistoryRepository(store),
		Alerts:   db.NewAlertRepository(store),
		Cache:    profileCache,
		CacheTTL: cfg.ProfileCacheTTL,
		Events:   events,
	}, logger)
	app.Auth = core.NewAuthService(app.Provider, app.Profiles, core.NewStateHub(), events, logger)
	return app, nil
}

// newProfileCache uses Redis when REDIS_ADDR is set and an in-process cache otherwise.
func newProfileCache(cfg *config.Config, logger *zap.Logger) (cache.Cache, error) {
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(cache.NewRedisCacheConfig{
			Address:  cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Info("Profile cache backed by Redis", zap.String("addr", cfg.RedisAddr))
		return redisCache, nil
	}

	localCache, err := cache.NewLocalCache(localCacheItems)
	if err != nil {
		return nil, fmt.Errorf("failed to create local cache: %w", err)
	}
	return localCache, nil
}

// newEventPublisher publishes to RabbitMQ when RABBITMQ_URL is set. A broker that cannot be reached
// is logged and replaced by the log publisher so the server still starts.
func newEventPublisher(cfg *config.Config, logger *zap.Logger, app *application) core.EventPublisher {
	if cfg.RabbitMQURL == "" {
		return core.NewLogPublisher(logger)
	}
	mq, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: cfg.RabbitMQURL}, logger)
	if err != nil {
		logger.Warn("RabbitMQ unavailable, events are only logged", zap.Error(err))
		return core.NewLogPublisher(logger)
	}
	app.closers = append(app.closers, mq.Close)
	logger.Info("Publishing events to RabbitMQ", zap.String("queue", cfg.RabbitMQQueue))
	return core.NewQueuePublisher(mq, cfg.RabbitMQQueue, logger)
}

// googleSignInMode picks how the login page obtains a Google credential for the selected backend.
func googleSignInMode(cfg *config.Config) string {
	if strings.ToLower(cfg.AuthBackend) == config.BackendMemory {
		return api.GoogleSignInEmail
	}
	if cfg.GoogleClientID != "" {
		return api.GoogleSignInIdentityServices
	}
	return api.GoogleSignInDisabled
}
