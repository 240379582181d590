package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfitem/ai-digest/internal/domain/model"
)

func newTestDB(t *testing.T) Database {
	t.Helper()
	db := NewSQLiteDatabase(filepath.Join(t.TempDir(), "data", "digest.db"))
	require.NoError(t, db.Init())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLiteRunRepository_SaveAndList(t *testing.T) {
	repo := NewSQLiteRunRepository(newTestDB(t))

	first := time.Date(2026, 10, 17, 6, 0, 0, 0, time.UTC)
	_, err := repo.SaveRun(model.RunRecord{StartedAt: first, Sources: 3, Entries: 2, Summary: "one", ChunksTotal: 1, ChunksSent: 1})
	require.NoError(t, err)

	id, err := repo.SaveRun(model.RunRecord{
		StartedAt: first.Add(24 * time.Hour),
		Sources:   3,
		Summary:   "Error: 500 - boom",
		Failure:   "status",
	})
	require.NoError(t, err)
	assert.Greater(t, id, int64(1))

	runs, err := repo.RecentRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, "status", runs[0].Failure)
	assert.True(t, runs[0].StartedAt.Equal(first.Add(24*time.Hour)))
	assert.Equal(t, 2, runs[1].Entries)
	assert.Equal(t, "one", runs[1].Summary)
}

func TestSQLiteDatabase_InitIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "digest.db")

	db := NewSQLiteDatabase(path)
	require.NoError(t, db.Init())
	require.NoError(t, db.Close())

	db = NewSQLiteDatabase(path)
	require.NoError(t, db.Init())
	require.NoError(t, db.Close())
}
