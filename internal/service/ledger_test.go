package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"potracker/internal/model"
)

func TestLedger(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	forms := NewFormService(db)
	require.NoError(t, forms.Register(ctx, model.Form{ID: "form-1", Title: "Spring Pre-Orders"}))

	ledger := NewLedger(db)

	t.Run("unseen response is not synced", func(t *testing.T) {
		synced, err := ledger.IsSynced(ctx, "resp-1")
		require.NoError(t, err)
		assert.False(t, synced)
	})

	t.Run("mark then check", func(t *testing.T) {
		require.NoError(t, ledger.MarkSynced(ctx, "resp-1", "form-1"))

		synced, err := ledger.IsSynced(ctx, "resp-1")
		require.NoError(t, err)
		assert.True(t, synced)
	})

	t.Run("marking twice is a no-op", func(t *testing.T) {
		require.NoError(t, ledger.MarkSynced(ctx, "resp-1", "form-1"))

		var count int
		require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM synced_responses WHERE response_id = 'resp-1'`))
		assert.Equal(t, 1, count)
	})

	t.Run("entries cascade with their form", func(t *testing.T) {
		require.NoError(t, forms.Delete(ctx, "form-1"))

		synced, err := ledger.IsSynced(ctx, "resp-1")
		require.NoError(t, err)
		assert.False(t, synced)
	})
}
