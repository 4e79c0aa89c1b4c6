package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/example/trademind/internal/models"
)

type profileRepository struct {
	store DocumentStore
}

// NewProfileRepository creates a ProfileRepository on top of a DocumentStore.
func NewProfileRepository(store DocumentStore) ProfileRepository {
	return &profileRepository{store: store}
}

// decodeDocument maps a raw document onto a model using its firestore field tags.
func decodeDocument(data map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "firestore",
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(data)
}

func (r *profileRepository) GetByID(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByID operation")
	}
	data, err := r.store.Get(ctx, UsersCollection, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile '%s': %w", userID, err)
	}

	var profile models.Profile
	if err := decodeDocument(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile '%s': %w", userID, err)
	}
	profile.ID = userID
	return &profile, nil
}

// Create stores a new profile keyed by its ID. The creation and last-login times are assigned by the store.
func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		return errors.New("profile ID cannot be empty for Create operation")
	}

	var photoURL interface{}
	if profile.PhotoURL != nil {
		photoURL = *profile.PhotoURL
	}
	data := map[string]interface{}{
		"displayName": profile.DisplayName,
		"email":       profile.Email,
		"photoURL":    photoURL,
		"createdAt":   ServerTimestamp,
		"lastLoginAt": ServerTimestamp,
		"portfolio": map[string]interface{}{
			"balance":     profile.Portfolio.Balance,
			"totalPnL":    profile.Portfolio.TotalPnL,
			"winRate":     profile.Portfolio.WinRate,
			"totalTrades": profile.Portfolio.TotalTrades,
		},
		"preferences": map[string]interface{}{
			"riskLevel":     profile.Preferences.RiskLevel,
			"notifications": profile.Preferences.Notifications,
			"newsletter":    profile.Preferences.Newsletter,
		},
	}

	if err := r.store.Create(ctx, UsersCollection, profile.ID, data); err != nil {
		return fmt.Errorf("failed to create profile '%s': %w", profile.ID, err)
	}
	return nil
}

// Update merges fields into an existing profile and stamps updatedAt.
func (r *profileRepository) Update(ctx context.Context, userID string, fields map[string]interface{}) error {
	patch := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		patch[k] = v
	}
	patch["updatedAt"] = ServerTimestamp

	if err := r.store.Update(ctx, UsersCollection, userID, patch); err != nil {
		return fmt.Errorf("failed to update profile '%s': %w", userID, err)
	}
	return nil
}

func (r *profileRepository) TouchLastLogin(ctx context.Context, userID string) error {
	err := r.store.Update(ctx, UsersCollection, userID, map[string]interface{}{"lastLoginAt": ServerTimestamp})
	if err != nil {
		return fmt.Errorf("failed to update last login for '%s': %w", userID, err)
	}
	return nil
}
