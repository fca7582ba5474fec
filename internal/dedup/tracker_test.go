package dedup

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmilano1/genealogy-extractors/internal/common"
	"github.com/pmilano1/genealogy-extractors/internal/storage"
)

func newTracker(t *testing.T) *Tracker {
	t.Helper()
	logger := common.GetLogger()
	backend, err := storage.NewSQLiteBackend(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	require.NoError(t, storage.EnsureSchema(context.Background(), backend))
	return NewTracker(backend, logger)
}

func TestMarkAndIsProcessed(t *testing.T) {
	tr := newTracker(t)
	ctx := context.Background()

	assert.False(t, tr.IsProcessed(ctx, "p1", "geneanet"))
	require.NoError(t, tr.MarkProcessed(ctx, "p1", "geneanet", 3, false, ""))
	assert.True(t, tr.IsProcessed(ctx, "p1", "geneanet"))
	assert.False(t, tr.IsProcessed(ctx, "p1", "ancestry"))
	assert.False(t, tr.IsProcessed(ctx, "p2", "geneanet"))
}

func TestMarkProcessedUpsert(t *testing.T) {
	tr := newTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.MarkProcessed(ctx, "p1", "geneanet", 0, true, "timeout"))
	require.NoError(t, tr.MarkProcessed(ctx, "p1", "geneanet", 5, false, ""))

	stats, err := tr.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSearches)
}

func TestUnprocessedSources(t *testing.T) {
	tr := newTracker(t)
	ctx := context.Background()
	all := []string{"findagrave", "geneanet", "ancestry"}

	assert.Equal(t, all, tr.UnprocessedSources(ctx, "p1", all))

	require.NoError(t, tr.MarkProcessed(ctx, "p1", "geneanet", 1, false, ""))
	assert.Equal(t, []string{"findagrave", "ancestry"}, tr.UnprocessedSources(ctx, "p1", all))

	// Another person is unaffected.
	assert.Equal(t, all, tr.UnprocessedSources(ctx, "p2", all))
}

func TestStats(t *testing.T) {
	tr := newTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.MarkProcessed(ctx, "p1", "geneanet", 1, false, ""))
	require.NoError(t, tr.MarkProcessed(ctx, "p1", "ancestry", 0, false, ""))
	require.NoError(t, tr.MarkProcessed(ctx, "p2", "geneanet", 2, false, ""))

	stats, err := tr.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalPeople)
	assert.Equal(t, 3, stats.TotalSearches)
	assert.Equal(t, 2, stats.BySource["geneanet"])
	assert.Equal(t, 1, stats.BySource["ancestry"])
}

func TestClear(t *testing.T) {
	tr := newTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.MarkProcessed(ctx, "p1", "geneanet", 1, false, ""))
	require.NoError(t, tr.Clear(ctx))

	assert.False(t, tr.IsProcessed(ctx, "p1", "geneanet"))
	stats, err := tr.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalSearches)
}

func TestRefreshCacheSeesExternalWrites(t *testing.T) {
	logger := common.GetLogger()
	path := filepath.Join(t.TempDir(), "shared.db")
	backend, err := storage.NewSQLiteBackend(path, logger)
	require.NoError(t, err)
	defer backend.Close()
	ctx := context.Background()
	require.NoError(t, storage.EnsureSchema(ctx, backend))

	a := NewTracker(backend, logger)
	b := NewTracker(backend, logger)

	assert.False(t, b.IsProcessed(ctx, "p1", "geneanet")) // loads empty cache
	require.NoError(t, a.MarkProcessed(ctx, "p1", "geneanet", 1, false, ""))

	assert.False(t, b.IsProcessed(ctx, "p1", "geneanet")) // stale cache
	b.RefreshCache(ctx)
	assert.True(t, b.IsProcessed(ctx, "p1", "geneanet"))
}
