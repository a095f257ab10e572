package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/classpulse/classpulse-backend/internal/config"
	"github.com/classpulse/classpulse-backend/internal/kvstore"
	"github.com/classpulse/classpulse-backend/internal/model"
	"github.com/classpulse/classpulse-backend/internal/notification"
	"github.com/rs/zerolog"
)

// SettingsService persists per-user notification preferences.
type SettingsService struct {
	kv  kvstore.Store
	log zerolog.Logger
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(kv kvstore.Store, log zerolog.Logger) *SettingsService {
	return &SettingsService{
		kv:  kv,
		log: log.With().Str("component", "settings_service").Logger(),
	}
}

// Get returns the user's settings, falling back to defaults when the
// user has never saved preferences.
func (s *SettingsService) Get(ctx context.Context, userID string) (model.Settings, error) {
	raw, err := s.kv.Get(ctx, config.StoreKey.SettingsKey(userID))
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return model.DefaultSettings(), nil
		}
		return model.Settings{}, fmt.Errorf("get settings: %w", err)
	}

	var settings model.Settings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		s.log.Warn().Str("user_id", userID).Err(err).Msg("Corrupt settings record, using defaults")
		return model.DefaultSettings(), nil
	}
	return settings, nil
}

// Update applies the non-nil fields of req on top of the stored
// settings and persists the result. Quiet hour times are validated as
// parseable clock values before anything is written.
func (s *SettingsService) Update(ctx context.Context, userID string, req model.UpdateSettingsRequest) (model.Settings, error) {
	settings, err := s.Get(ctx, userID)
	if err != nil {
		return model.Settings{}, err
	}

	if req.QuietHoursEnabled != nil {
		settings.QuietHoursEnabled = *req.QuietHoursEnabled
	}
	if req.QuietStart != "" {
		settings.QuietStart = req.QuietStart
	}
	if req.QuietEnd != "" {
		settings.QuietEnd = req.QuietEnd
	}
	if req.DeadlineHorizonHours != nil {
		settings.DeadlineHorizonHours = *req.DeadlineHorizonHours
	}

	if _, err := notification.ParseQuietWindow(settings.QuietStart, settings.QuietEnd); err != nil {
		return model.Settings{}, err
	}

	raw, err := json.Marshal(settings)
	if err != nil {
		return model.Settings{}, fmt.Errorf("marshal settings: %w", err)
	}
	if err := s.kv.Set(ctx, config.StoreKey.SettingsKey(userID), string(raw)); err != nil {
		return model.Settings{}, fmt.Errorf("store settings: %w", err)
	}
	return settings, nil
}
