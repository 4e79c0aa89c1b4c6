package core

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/example/trademind/internal/db"
	"github.com/example/trademind/internal/models"
	"github.com/example/trademind/pkg/cache"
)

// profileService implements the ProfileService interface.
type profileService struct {
	profiles db.ProfileRepository
	signals  db.RecordRepository[models.TradingSignal]
	trades   db.RecordRepository[models.TradeHistoryEntry]
	alerts   db.RecordRepository[models.PriceAlert]
	cache    cache.Cache
	cacheTTL time.Duration
	events   EventPublisher
	logger   *zap.Logger

	// generation counts profile invalidations. A read caches its result only if no invalidation
	// happened while it was in flight.
	generation atomic.Uint64
}

// ProfileServiceDeps groups the collaborators of the profile service.
type ProfileServiceDeps struct {
	Profiles db.ProfileRepository
	Signals  db.RecordRepository[models.TradingSignal]
	Trades   db.RecordRepository[models.TradeHistoryEntry]
	Alerts   db.RecordRepository[models.PriceAlert]
	Cache    cache.Cache // optional
	CacheTTL time.Duration
	Events   EventPublisher // optional
}

// NewProfileService creates a new ProfileService instance.
func NewProfileService(deps ProfileServiceDeps, logger *zap.Logger) ProfileService {
	return &profileService{
		profiles: deps.Profiles,
		signals:  deps.Signals,
		trades:   deps.Trades,
		alerts:   deps.Alerts,
		cache:    deps.Cache,
		cacheTTL: deps.CacheTTL,
		events:   deps.Events,
		logger:   logger,
	}
}

func profileCacheKey(uid string) string {
	return "profile:" + uid
}

func (s *profileService) cachedProfile(uid string) *models.Profile {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(profileCacheKey(uid))
	if err != nil {
		s.logger.Warn("Profile cache read failed", zap.String("uid", uid), zap.Error(err))
		return nil
	}
	if raw == "" {
		return nil
	}
	var profile models.Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		s.logger.Warn("Discarding undecodable cached profile", zap.String("uid", uid), zap.Error(err))
		return nil
	}
	return &profile
}

// storeProfile caches a profile read at generation gen. The entry is dropped again when an
// invalidation raced with the read, so a stale copy never outlives the write that replaced it.
func (s *profileService) storeProfile(profile *models.Profile, gen uint64) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return
	}
	key := profileCacheKey(profile.ID)
	if err := s.cache.Set(key, raw, s.cacheTTL); err != nil {
		s.logger.Warn("Profile cache write failed", zap.String("uid", profile.ID), zap.Error(err))
		return
	}
	if s.generation.Load() != gen {
		if err := s.cache.Delete(key); err != nil {
			s.logger.Warn("Profile cache invalidation failed", zap.String("uid", profile.ID), zap.Error(err))
		}
	}
}

func (s *profileService) invalidate(uid string) {
	s.generation.Add(1)
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(profileCacheKey(uid)); err != nil {
		s.logger.Warn("Profile cache invalidation failed", zap.String("uid", uid), zap.Error(err))
	}
}

func storeFailure[T any](err error) Result[T] {
	if errors.Is(err, db.ErrNotFound) {
		return fail[T](CodeNotFound, ErrUserNotFound)
	}
	return fail[T](CodeInternal, err.Error())
}

func (s *profileService) GetUserData(ctx context.Context, uid string) Result[*models.Profile] {
	if profile := s.cachedProfile(uid); profile != nil {
		return ok(profile)
	}

	gen := s.generation.Load()
	profile, err := s.profiles.GetByID(ctx, uid)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			s.logger.Error("Error getting user data", zap.String("uid", uid), zap.Error(err))
		}
		return storeFailure[*models.Profile](err)
	}
	s.storeProfile(profile, gen)
	return ok(profile)
}

// defaultProfile builds the initial profile of identity. The display name falls back to the supplied
// extra name, then to the local part of the email address.
func defaultProfile(identity *models.Identity, extra models.ProfileExtras) *models.Profile {
	displayName := identity.DisplayName
	if displayName == "" {
		displayName = extra.DisplayName
	}
	if displayName == "" {
		displayName = strings.SplitN(identity.Email, "@", 2)[0]
	}

	var photoURL *string
	if identity.PhotoURL != "" {
		photoURL = &identity.PhotoURL
	} else if extra.PhotoURL != "" {
		photoURL = &extra.PhotoURL
	}

	return &models.Profile{
		ID:          identity.UID,
		DisplayName: displayName,
		Email:       identity.Email,
		PhotoURL:    photoURL,
		Portfolio: models.Portfolio{
			Balance: models.DefaultBalance,
		},
		Preferences: models.Preferences{
			RiskLevel:     models.DefaultRiskLevel,
			Notifications: true,
			Newsletter:    extra.Newsletter,
		},
	}
}

func (s *profileService) CreateUserDocument(ctx context.Context, identity *models.Identity, extra models.ProfileExtras) Result[bool] {
	if identity == nil || identity.UID == "" {
		return fail[bool](CodeInternal, "identity is required")
	}

	err := s.profiles.Create(ctx, defaultProfile(identity, extra))
	if errors.Is(err, db.ErrAlreadyExists) {
		return ok(false)
	}
	if err != nil {
		s.logger.Error("Error creating user document", zap.String("uid", identity.UID), zap.Error(err))
		return fail[bool](CodeInternal, err.Error())
	}

	s.invalidate(identity.UID)
	s.logger.Info("User profile created", zap.String("uid", identity.UID))
	publish(ctx, s.events, s.logger, EventProfileCreated, identity.UID, nil)
	return ok(true)
}

func (s *profileService) UpdateUserDocument(ctx context.Context, uid string, patch map[string]interface{}) Result[struct{}] {
	if len(patch) == 0 {
		return ok(struct{}{})
	}
	if err := s.profiles.Update(ctx, uid, patch); err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			s.logger.Error("Error updating user document", zap.String("uid", uid), zap.Error(err))
		}
		return storeFailure[struct{}](err)
	}

	s.invalidate(uid)
	publish(ctx, s.events, s.logger, EventProfileUpdated, uid, nil)
	return ok(struct{}{})
}

func (s *profileService) RecordLogin(ctx context.Context, identity *models.Identity) Result[struct{}] {
	err := s.profiles.TouchLastLogin(ctx, identity.UID)
	if errors.Is(err, db.ErrNotFound) {
		if created := s.CreateUserDocument(ctx, identity, models.ProfileExtras{}); !created.Success {
			return fail[struct{}](created.Code, created.Error)
		}
		return ok(struct{}{})
	}
	if err != nil {
		s.logger.Error("Error recording login", zap.String("uid", identity.UID), zap.Error(err))
		return fail[struct{}](CodeInternal, err.Error())
	}
	s.invalidate(identity.UID)
	return ok(struct{}{})
}

func (s *profileService) recordAdded(ctx context.Context, uid, collection, id string) {
	s.logger.Info("Record added", zap.String("uid", uid), zap.String("collection", collection), zap.String("id", id))
	publish(ctx, s.events, s.logger, EventRecordAdded, uid, map[string]string{"collection": collection, "id": id})
}

func (s *profileService) AddTradingSignal(ctx context.Context, uid string, signal *models.TradingSignal) Result[string] {
	signal.UserID = uid
	id, err := s.signals.Add(ctx, signal)
	if err != nil {
		s.logger.Error("Error adding trading signal", zap.String("uid", uid), zap.Error(err))
		return fail[string](CodeInternal, err.Error())
	}
	s.recordAdded(ctx, uid, db.TradingSignalsCollection, id)
	return ok(id)
}

func (s *profileService) AddTradeHistory(ctx context.Context, uid string, trade *models.TradeHistoryEntry) Result[string] {
	trade.UserID = uid
	id, err := s.trades.Add(ctx, trade)
	if err != nil {
		s.logger.Error("Error adding trade history", zap.String("uid", uid), zap.Error(err))
		return fail[string](CodeInternal, err.Error())
	}
	s.recordAdded(ctx, uid, db.TradeHistoryCollection, id)
	return ok(id)
}

// AddPriceAlert stores a new alert. New alerts are always active.
func (s *profileService) AddPriceAlert(ctx context.Context, uid string, alert *models.PriceAlert) Result[string] {
	alert.UserID = uid
	alert.IsActive = true
	id, err := s.alerts.Add(ctx, alert)
	if err != nil {
		s.logger.Error("Error adding price alert", zap.String("uid", uid), zap.Error(err))
		return fail[string](CodeInternal, err.Error())
	}
	s.recordAdded(ctx, uid, db.PriceAlertsCollection, id)
	return ok(id)
}

func (s *profileService) GetUserSignals(ctx context.Context, uid string, filter models.SignalFilter) Result[[]models.TradingSignal] {
	var filters []db.Filter
	if filter.Action != "" {
		filters = append(filters, db.Filter{Field: "action", Value: filter.Action})
	}
	if filter.Confidence != "" {
		filters = append(filters, db.Filter{Field: "confidence", Value: filter.Confidence})
	}
	signals, err := s.signals.ListByUser(ctx, uid, filters...)
	if err != nil {
		s.logger.Error("Error getting user signals", zap.String("uid", uid), zap.Error(err))
		return fail[[]models.TradingSignal](CodeInternal, err.Error())
	}
	return ok(signals)
}

func (s *profileService) GetUserTradeHistory(ctx context.Context, uid string) Result[[]models.TradeHistoryEntry] {
	trades, err := s.trades.ListByUser(ctx, uid)
	if err != nil {
		s.logger.Error("Error getting trade history", zap.String("uid", uid), zap.Error(err))
		return fail[[]models.TradeHistoryEntry](CodeInternal, err.Error())
	}
	return ok(trades)
}

func (s *profileService) GetUserAlerts(ctx context.Context, uid string) Result[[]models.PriceAlert] {
	alerts, err := s.alerts.ListByUser(ctx, uid, db.Filter{Field: "isActive", Value: true})
	if err != nil {
		s.logger.Error("Error getting user alerts", zap.String("uid", uid), zap.Error(err))
		return fail[[]models.PriceAlert](CodeInternal, err.Error())
	}
	return ok(alerts)
}

// DeactivateAlert soft-deletes an alert owned by uid. Alerts of other users are reported as missing.
func (s *profileService) DeactivateAlert(ctx context.Context, uid, alertID string) Result[struct{}] {
	alert, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fail[struct{}](CodeNotFound, "Alert not found")
		}
		s.logger.Error("Error getting alert", zap.String("alertID", alertID), zap.Error(err))
		return fail[struct{}](CodeInternal, err.Error())
	}
	if alert.UserID != uid {
		s.logger.Warn("Refusing to deactivate alert of another user", zap.String("uid", uid), zap.String("alertID", alertID))
		return fail[struct{}](CodePermissionDenied, "Alert not found")
	}

	if err := s.alerts.Update(ctx, alertID, map[string]interface{}{"isActive": false}); err != nil {
		s.logger.Error("Error deactivating alert", zap.String("alertID", alertID), zap.Error(err))
		return fail[struct{}](CodeInternal, err.Error())
	}
	publish(ctx, s.events, s.logger, EventAlertDisabled, uid, map[string]string{"id": alertID})
	return ok(struct{}{})
}
