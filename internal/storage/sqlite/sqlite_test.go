package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/quotation/internal/storage"
)

func TestSQLiteStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	store, err := New(dbPath)
	require.NoError(t, err, "Failed to create store")
	defer store.Close()

	ctx := context.Background()

	t.Run("Get missing record returns ErrNotFound", func(t *testing.T) {
		_, err := store.Get(ctx, storage.RecordCurrent)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Put then Get round-trips payload", func(t *testing.T) {
		payload := []byte(`{"id":"q-1","title":"Website"}`)
		require.NoError(t, store.Put(ctx, storage.RecordCurrent, payload))

		got, err := store.Get(ctx, storage.RecordCurrent)
		require.NoError(t, err)
		assert.JSONEq(t, string(payload), string(got))
	})

	t.Run("Put replaces existing record", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, storage.RecordHistory, []byte(`[1]`)))
		require.NoError(t, store.Put(ctx, storage.RecordHistory, []byte(`[1,2]`)))

		got, err := store.Get(ctx, storage.RecordHistory)
		require.NoError(t, err)
		assert.Equal(t, `[1,2]`, string(got))
	})

	t.Run("records are independent", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, storage.RecordProfile, []byte(`{}`)))
		require.NoError(t, store.Delete(ctx, storage.RecordProfile))

		_, err := store.Get(ctx, storage.RecordProfile)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = store.Get(ctx, storage.RecordHistory)
		assert.NoError(t, err)
	})

	t.Run("Delete missing record is not an error", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "does-not-exist"))
	})
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	store, err := New(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, storage.RecordCurrent, []byte(`{"id":"q-1"}`)))
	require.NoError(t, store.Close())

	reopened, err := New(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, storage.RecordCurrent)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"q-1"}`, string(got))
}
