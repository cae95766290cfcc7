package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"potracker/internal/model"
)

func TestSettingsService(t *testing.T) {
	ctx := context.Background()
	settings := NewSettingsService(newTestDB(t))

	t.Run("defaults when nothing stored", func(t *testing.T) {
		s, err := settings.GetSyncSettings(ctx)
		require.NoError(t, err)
		assert.False(t, s.AutoSync)
		assert.Equal(t, 5, s.IntervalMinutes)
	})

	t.Run("round trip", func(t *testing.T) {
		_, err := settings.UpdateSyncSettings(ctx, model.SyncSettings{AutoSync: true, IntervalMinutes: 15})
		require.NoError(t, err)

		s, err := settings.GetSyncSettings(ctx)
		require.NoError(t, err)
		assert.True(t, s.AutoSync)
		assert.Equal(t, 15, s.IntervalMinutes)
	})

	t.Run("interval clamped to one minute", func(t *testing.T) {
		updated, err := settings.UpdateSyncSettings(ctx, model.SyncSettings{AutoSync: true, IntervalMinutes: 0})
		require.NoError(t, err)
		assert.Equal(t, 1, updated.IntervalMinutes)
	})
}
