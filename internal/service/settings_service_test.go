package service

import (
	"context"
	"testing"

	"github.com/classpulse/classpulse-backend/internal/config"
	"github.com/classpulse/classpulse-backend/internal/kvstore"
	"github.com/classpulse/classpulse-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func TestSettingsGetFallsBackToDefaults(t *testing.T) {
	svc := NewSettingsService(kvstore.NewMemoryStore(), zerolog.Nop())

	settings, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), settings)
}

func TestSettingsGetRecoversFromCorruptRecord(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, config.StoreKey.SettingsKey("u1"), "not-json"))

	svc := NewSettingsService(kv, zerolog.Nop())
	settings, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), settings)
}

func TestSettingsUpdateMergesPartialPayload(t *testing.T) {
	ctx := context.Background()
	svc := NewSettingsService(kvstore.NewMemoryStore(), zerolog.Nop())

	updated, err := svc.Update(ctx, "u1", model.UpdateSettingsRequest{
		QuietHoursEnabled: boolPtr(true),
		QuietStart:        "23:00",
	})
	require.NoError(t, err)
	assert.True(t, updated.QuietHoursEnabled)
	assert.Equal(t, "23:00", updated.QuietStart)
	// Untouched fields keep their previous values.
	assert.Equal(t, "07:00", updated.QuietEnd)
	assert.Equal(t, 168, updated.DeadlineHorizonHours)

	// The merge persists; a later partial update starts from it.
	updated, err = svc.Update(ctx, "u1", model.UpdateSettingsRequest{
		DeadlineHorizonHours: intPtr(72),
	})
	require.NoError(t, err)
	assert.Equal(t, 72, updated.DeadlineHorizonHours)
	assert.Equal(t, "23:00", updated.QuietStart)

	stored, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, updated, stored)
}

func TestSettingsUpdateRejectsInvalidQuietWindow(t *testing.T) {
	ctx := context.Background()
	svc := NewSettingsService(kvstore.NewMemoryStore(), zerolog.Nop())

	_, err := svc.Update(ctx, "u1", model.UpdateSettingsRequest{QuietStart: "25:99"})
	require.Error(t, err)

	// Nothing was written; the user still reads defaults.
	settings, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), settings)
}
