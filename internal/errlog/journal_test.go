package errlog

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmilano1/genealogy-extractors/internal/common"
	"github.com/pmilano1/genealogy-extractors/internal/models"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, models.ErrTypeUnknown},
		{"429", errors.New("server returned 429"), models.ErrTypeRateLimit},
		{"rate limit", errors.New("rate limit hit"), models.ErrTypeRateLimit},
		{"too many", errors.New("too many requests"), models.ErrTypeRateLimit},
		{"timeout", errors.New("context deadline: timeout"), models.ErrTypeTimeout},
		{"navigation", errors.New("navigation failed for url"), models.ErrTypeNavigation},
		{"404", errors.New("got 404 not found"), models.ErrTypeNotFound},
		{"other", errors.New("boom"), models.ErrTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestLogAndSummary(t *testing.T) {
	j := NewJournal(t.TempDir(), common.GetLogger())

	query := &models.Query{Surname: "Smith"}
	j.LogError("geneanet", models.ErrTypeTimeout, "selector wait timed out", query, false)
	j.LogError("geneanet", models.ErrTypeTimeout, "selector wait timed out", query, false)
	j.LogError("ancestry", models.ErrTypeBotCheck, "challenge page", query, false)

	summary := j.Summary()
	assert.Equal(t, 3, summary.TotalErrors)
	assert.Equal(t, 2, summary.BySource["geneanet"])
	assert.Equal(t, 2, summary.ByType[models.ErrTypeTimeout])
	require.NotEmpty(t, summary.TopErrors)
	assert.Equal(t, "geneanet:"+models.ErrTypeTimeout, summary.TopErrors[0].Key)
	assert.Equal(t, 2, summary.TopErrors[0].Count)
}

func TestJournalPersists(t *testing.T) {
	dir := t.TempDir()
	logger := common.GetLogger()

	j := NewJournal(dir, logger)
	j.LogError("geneanet", models.ErrTypeTimeout, "first", nil, false)

	reloaded := NewJournal(dir, logger)
	assert.Equal(t, 1, reloaded.Summary().TotalErrors)
	recent := reloaded.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, "first", recent[0].Message)
}

func TestMessageTruncated(t *testing.T) {
	j := NewJournal(t.TempDir(), common.GetLogger())
	j.LogError("geneanet", models.ErrTypeUnknown, strings.Repeat("x", 2000), nil, false)

	recent := j.Recent(1)
	require.Len(t, recent, 1)
	assert.Len(t, recent[0].Message, maxMessageLen)
}

func TestFIFOCap(t *testing.T) {
	j := NewJournal(t.TempDir(), common.GetLogger())
	for i := 0; i < maxEntries+10; i++ {
		j.LogError("geneanet", models.ErrTypeUnknown, "entry", nil, false)
	}

	summary := j.Summary()
	assert.Equal(t, maxEntries, summary.TotalErrors)
	// Counts survive eviction.
	assert.Equal(t, maxEntries+10, summary.TopErrors[0].Count)
}

func TestStackTraceCaptured(t *testing.T) {
	j := NewJournal(t.TempDir(), common.GetLogger())
	j.LogError("geneanet", models.ErrTypeUnknown, "boom", nil, true)

	recent := j.Recent(1)
	require.Len(t, recent, 1)
	assert.Contains(t, recent[0].StackTrace, "goroutine")
}

func TestRecentNewestFirst(t *testing.T) {
	j := NewJournal(t.TempDir(), common.GetLogger())
	j.LogError("a", models.ErrTypeUnknown, "first", nil, false)
	j.LogError("b", models.ErrTypeUnknown, "second", nil, false)

	recent := j.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "second", recent[0].Message)
	assert.Equal(t, "first", recent[1].Message)
}

func TestClear(t *testing.T) {
	j := NewJournal(t.TempDir(), common.GetLogger())
	j.LogError("geneanet", models.ErrTypeUnknown, "boom", nil, false)
	require.NoError(t, j.Clear())
	assert.Equal(t, 0, j.Summary().TotalErrors)
	assert.Empty(t, j.Recent(10))
}
