package models

import "time"

// Error type taxonomy used by the error journal and run summaries.
const (
	ErrTypeRateLimit   = "RATE_LIMIT"
	ErrTypeTimeout     = "TIMEOUT"
	ErrTypeNavigation  = "NAVIGATION"
	ErrTypeNotFound    = "NOT_FOUND"
	ErrTypeBotCheck    = "BOT_CHECK"
	ErrTypeDailyLimit  = "DAILY_LIMIT"
	ErrTypeParseFailed = "PARSE_FAILED"
	ErrTypeUnknown     = "UNKNOWN"
)

// Outcome is the result of searching one source for one person. Exactly one
// of the four shapes applies: records, bot check, daily limit, or error.
type Outcome struct {
	SourceKey  string
	Records    []CandidateRecord
	BotCheck   bool
	DailyLimit bool
	Err        error
	ErrType    string
	Elapsed    time.Duration
}

// Success reports whether the search completed without error. Zero records
// is still a success; the source was tried.
func (o *Outcome) Success() bool {
	return o.Err == nil && !o.BotCheck && !o.DailyLimit
}

// ErrorEntry is one row of the capped error journal.
type ErrorEntry struct {
	Timestamp    time.Time `json:"timestamp"`
	Source       string    `json:"source"`
	ErrorType    string    `json:"error_type"`
	Message      string    `json:"message"`
	SearchParams *Query    `json:"search_params,omitempty"`
	StackTrace   string    `json:"stack_trace,omitempty"`
}

// ErrorSummary aggregates journal entries for the --errors report.
type ErrorSummary struct {
	TotalErrors int            `json:"total_errors"`
	BySource    map[string]int `json:"by_source"`
	ByType      map[string]int `json:"by_type"`
	TopErrors   []ErrorCount   `json:"top_errors"`
}

// ErrorCount pairs a "source:type" key with its occurrence count.
type ErrorCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}
