package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/storage"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "runs", "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate())
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Migrate())

	var count int
	err := db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='runs'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRunStore_InsertAndGet(t *testing.T) {
	db := openTestDB(t)
	store := NewRunStore(db)
	ctx := context.Background()

	m := &domain.RunManifest{
		RunID:            "3yQ9",
		Season:           "2024-25",
		PanelFingerprint: "abc",
		Models:           []string{domain.ModelForm, domain.ModelTwoStage},
		ConfigHash:       "cfg",
		PanelRows:        120,
		Splits:           8,
		OutputDir:        "out/2024-25/3yQ9",
		Status:           domain.RunStatusSucceeded,
		StartedAtMs:      1000,
		FinishedAtMs:     2000,
	}
	require.NoError(t, store.Insert(ctx, m))

	got, err := store.GetByID(ctx, "3yQ9")
	require.NoError(t, err)
	assert.Equal(t, m, got)

	assert.ErrorIs(t, store.Insert(ctx, m), storage.ErrDuplicateKey)

	_, err = store.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRunStore_ListBySeason(t *testing.T) {
	db := openTestDB(t)
	store := NewRunStore(db)
	ctx := context.Background()

	for _, m := range []*domain.RunManifest{
		{RunID: "old", Season: "2024-25", StartedAtMs: 1, Status: domain.RunStatusSucceeded},
		{RunID: "new", Season: "2024-25", StartedAtMs: 5, Status: domain.RunStatusFailed, Error: "leakage"},
		{RunID: "other", Season: "2023-24", StartedAtMs: 9},
	} {
		require.NoError(t, store.Insert(ctx, m))
	}

	runs, err := store.ListBySeason(ctx, "2024-25")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].RunID)
	assert.Equal(t, "leakage", runs[0].Error)
	assert.Nil(t, runs[0].Models)
	assert.Equal(t, "old", runs[1].RunID)
}
