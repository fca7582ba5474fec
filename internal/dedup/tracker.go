// Package dedup persists which (person, source) pairs have already been
// searched so interrupted or parallel runs never duplicate work.
package dedup

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/pmilano1/genealogy-extractors/internal/storage"
)

// Stats summarizes the search log for the --stats report.
type Stats struct {
	TotalPeople   int            `json:"total_people"`
	TotalSearches int            `json:"total_searches"`
	BySource      map[string]int `json:"by_source"`
}

// Tracker is the durable search log with a write-through in-memory cache.
// The cache is loaded once on first use; upserts keep it current within
// this process. Across processes it is eventually consistent, which is
// acceptable because marks are idempotent upserts.
type Tracker struct {
	backend storage.Backend
	logger  arbor.ILogger

	mu          sync.Mutex
	cache       map[string]map[string]struct{}
	cacheLoaded bool
}

// NewTracker creates a tracker over an initialized backend.
func NewTracker(backend storage.Backend, logger arbor.ILogger) *Tracker {
	return &Tracker{
		backend: backend,
		logger:  logger,
		cache:   make(map[string]map[string]struct{}),
	}
}

// ensureCache loads the (person, source) set from the database. Caller
// must hold mu.
func (t *Tracker) ensureCache(ctx context.Context) {
	if t.cacheLoaded {
		return
	}
	rows, err := t.backend.FetchAll(ctx, "SELECT person_id, source_key FROM search_log")
	if err != nil {
		t.logger.Warn().Err(err).Msg("Failed to load search log cache")
		return
	}
	for _, row := range rows {
		pid := row.AsString("person_id")
		src := row.AsString("source_key")
		if t.cache[pid] == nil {
			t.cache[pid] = make(map[string]struct{})
		}
		t.cache[pid][src] = struct{}{}
	}
	t.cacheLoaded = true
}

// IsProcessed reports whether the pair has already been searched.
func (t *Tracker) IsProcessed(ctx context.Context, personID, sourceKey string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureCache(ctx)
	_, ok := t.cache[personID][sourceKey]
	return ok
}

// MarkProcessed upserts the pair. On collision the searched_at timestamp
// and result fields are refreshed.
func (t *Tracker) MarkProcessed(ctx context.Context, personID, sourceKey string, resultCount int, hadError bool, errorMessage string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	err := t.backend.Execute(ctx, `
		INSERT INTO search_log (person_id, source_key, result_count, had_error, error_message)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (person_id, source_key)
		DO UPDATE SET searched_at = NOW(), result_count = EXCLUDED.result_count,
		              had_error = EXCLUDED.had_error, error_message = EXCLUDED.error_message`,
		personID, sourceKey, resultCount, hadError, errorMessage)
	if err != nil {
		return fmt.Errorf("failed to mark processed: %w", err)
	}

	if t.cache[personID] == nil {
		t.cache[personID] = make(map[string]struct{})
	}
	t.cache[personID][sourceKey] = struct{}{}
	return nil
}

// UnprocessedSources returns the subset of allSources not yet searched for
// this person, preserving input order.
func (t *Tracker) UnprocessedSources(ctx context.Context, personID string, allSources []string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureCache(ctx)

	processed := t.cache[personID]
	var out []string
	for _, s := range allSources {
		if _, ok := processed[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

// Stats returns aggregate counts straight from the database.
func (t *Tracker) Stats(ctx context.Context) (*Stats, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := &Stats{BySource: make(map[string]int)}

	row, err := t.backend.FetchOne(ctx, "SELECT COUNT(DISTINCT person_id) AS cnt FROM search_log")
	if err != nil {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}
	if row != nil {
		stats.TotalPeople = row.AsInt("cnt")
	}

	row, err = t.backend.FetchOne(ctx, "SELECT COUNT(*) AS cnt FROM search_log")
	if err != nil {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}
	if row != nil {
		stats.TotalSearches = row.AsInt("cnt")
	}

	rows, err := t.backend.FetchAll(ctx, "SELECT source_key, COUNT(*) AS cnt FROM search_log GROUP BY source_key")
	if err != nil {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}
	for _, r := range rows {
		stats.BySource[r.AsString("source_key")] = r.AsInt("cnt")
	}
	return stats, nil
}

// Clear deletes all tracking data; the next run searches everything again.
func (t *Tracker) Clear(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.backend.Execute(ctx, "DELETE FROM search_log"); err != nil {
		return fmt.Errorf("failed to clear search log: %w", err)
	}
	t.cache = make(map[string]map[string]struct{})
	t.cacheLoaded = false
	t.logger.Info().Msg("Cleared all search history")
	return nil
}

// RefreshCache discards the in-memory set and reloads it from the
// database, picking up marks written by other processes.
func (t *Tracker) RefreshCache(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cache = make(map[string]map[string]struct{})
	t.cacheLoaded = false
	t.ensureCache(ctx)
}
