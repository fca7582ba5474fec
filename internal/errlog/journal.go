// Package errlog keeps a bounded on-disk journal of search failures so
// recurring source problems are visible across runs.
package errlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/pmilano1/genealogy-extractors/internal/models"
)

const (
	maxEntries    = 1000
	maxMessageLen = 500
	maxStackLen   = 1000
)

type journalFile struct {
	Errors []models.ErrorEntry `json:"errors"`
	Counts map[string]int      `json:"counts"`
}

// Journal is a capped FIFO error log backed by a JSON document. Oldest
// entries are evicted past the cap; per-key counts survive eviction.
type Journal struct {
	path   string
	logger arbor.ILogger

	mu   sync.Mutex
	data journalFile
}

// NewJournal loads (or initializes) the journal at dir/errors.json.
func NewJournal(dir string, logger arbor.ILogger) *Journal {
	j := &Journal{
		path:   filepath.Join(dir, "errors.json"),
		logger: logger,
		data:   journalFile{Counts: make(map[string]int)},
	}

	raw, err := os.ReadFile(j.path)
	if err == nil {
		if uerr := json.Unmarshal(raw, &j.data); uerr != nil {
			logger.Warn().Err(uerr).Str("path", j.path).Msg("Corrupt error journal, starting fresh")
			j.data = journalFile{Counts: make(map[string]int)}
		}
	}
	if j.data.Counts == nil {
		j.data.Counts = make(map[string]int)
	}
	return j
}

// ClassifyError maps an error message to the journal's type taxonomy.
func ClassifyError(err error) string {
	if err == nil {
		return models.ErrTypeUnknown
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"), strings.Contains(msg, "rate limit"), strings.Contains(msg, "too many"):
		return models.ErrTypeRateLimit
	case strings.Contains(msg, "timeout"):
		return models.ErrTypeTimeout
	case strings.Contains(msg, "navigation"):
		return models.ErrTypeNavigation
	case strings.Contains(msg, "404"):
		return models.ErrTypeNotFound
	default:
		return models.ErrTypeUnknown
	}
}

// LogError appends one entry and flushes to disk. Long messages and stacks
// are truncated so one pathological error cannot bloat the file.
func (j *Journal) LogError(source, errType, message string, params *models.Query, withStack bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(message) > maxMessageLen {
		message = message[:maxMessageLen]
	}
	entry := models.ErrorEntry{
		Timestamp:    time.Now().UTC(),
		Source:       source,
		ErrorType:    errType,
		Message:      message,
		SearchParams: params,
	}
	if withStack {
		buf := make([]byte, maxStackLen)
		n := runtime.Stack(buf, false)
		entry.StackTrace = string(buf[:n])
	}

	j.data.Errors = append(j.data.Errors, entry)
	if len(j.data.Errors) > maxEntries {
		j.data.Errors = j.data.Errors[len(j.data.Errors)-maxEntries:]
	}
	j.data.Counts[source+":"+errType]++

	if err := j.flush(); err != nil {
		j.logger.Warn().Err(err).Msg("Failed to persist error journal")
	}
}

// Summary aggregates the journal for the errors report.
func (j *Journal) Summary() *models.ErrorSummary {
	j.mu.Lock()
	defer j.mu.Unlock()

	summary := &models.ErrorSummary{
		TotalErrors: len(j.data.Errors),
		BySource:    make(map[string]int),
		ByType:      make(map[string]int),
	}
	for _, e := range j.data.Errors {
		summary.BySource[e.Source]++
		summary.ByType[e.ErrorType]++
	}
	for key, count := range j.data.Counts {
		summary.TopErrors = append(summary.TopErrors, models.ErrorCount{Key: key, Count: count})
	}
	sort.Slice(summary.TopErrors, func(a, b int) bool {
		if summary.TopErrors[a].Count != summary.TopErrors[b].Count {
			return summary.TopErrors[a].Count > summary.TopErrors[b].Count
		}
		return summary.TopErrors[a].Key < summary.TopErrors[b].Key
	})
	if len(summary.TopErrors) > 10 {
		summary.TopErrors = summary.TopErrors[:10]
	}
	return summary
}

// Recent returns up to n newest entries, newest first.
func (j *Journal) Recent(n int) []models.ErrorEntry {
	j.mu.Lock()
	defer j.mu.Unlock()

	total := len(j.data.Errors)
	if n <= 0 || n > total {
		n = total
	}
	out := make([]models.ErrorEntry, 0, n)
	for i := total - 1; i >= total-n; i-- {
		out = append(out, j.data.Errors[i])
	}
	return out
}

// Clear empties the journal and rewrites the file.
func (j *Journal) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.data = journalFile{Counts: make(map[string]int)}
	if err := j.flush(); err != nil {
		return fmt.Errorf("failed to clear error journal: %w", err)
	}
	return nil
}

// flush writes atomically via rename. Caller must hold mu.
func (j *Journal) flush() error {
	raw, err := json.MarshalIndent(j.data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0755); err != nil {
		return err
	}
	tmp := j.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, j.path)
}
