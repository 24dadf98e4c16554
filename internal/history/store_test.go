package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "state", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Record(ctx, Run{
			RunID:          id,
			Mode:           "apply",
			StartedAt:      base.Add(time.Duration(i) * time.Hour),
			FinishedAt:     base.Add(time.Duration(i)*time.Hour + time.Second),
			Catalog:        "/data/products.json",
			Total:          10,
			Resolved:       7,
			Unresolved:     2,
			AlreadyLocal:   1,
			Changed:        9,
			ResolutionRate: 0.7778,
			Committed:      i != 1,
			BackupPath:     "/backups/" + id,
		}))
	}

	runs, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].RunID)
	assert.Equal(t, "b", runs[1].RunID)
	assert.False(t, runs[1].Committed)
	assert.True(t, runs[0].Committed)
	assert.Equal(t, base.Add(2*time.Hour), runs[0].StartedAt)
	assert.InDelta(t, 0.7778, runs[0].ResolutionRate, 1e-9)

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRecordReplacesSameRunID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Record(ctx, Run{RunID: "x", Mode: "apply", StartedAt: now, FinishedAt: now}))
	require.NoError(t, store.Record(ctx, Run{RunID: "x", Mode: "apply", StartedAt: now, FinishedAt: now, ErrorKind: "write", ErrorMessage: "disk full"}))

	runs, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "write", runs[0].ErrorKind)
	assert.Equal(t, "disk full", runs[0].ErrorMessage)
}

func TestPruneKeepsNewest(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Record(ctx, Run{RunID: string(rune('a' + i)), Mode: "verify", StartedAt: at, FinishedAt: at}))
	}

	removed, err := store.Prune(ctx, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, removed)

	runs, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "e", runs[0].RunID)
	assert.Equal(t, "d", runs[1].RunID)

	removed, err = store.Prune(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestReopenSkipsAppliedMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	first, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Record(ctx, Run{RunID: "keep", Mode: "apply", StartedAt: time.Now(), FinishedAt: time.Now()}))
	require.NoError(t, first.Close())

	second, err := Open(ctx, path)
	require.NoError(t, err)
	defer second.Close()
	runs, err := second.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestSplitStatements(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, splitStatements("A;\n\n B ;\n"))
}
