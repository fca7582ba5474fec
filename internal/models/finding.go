package models

import "time"

// Finding lifecycle states. Transitions are one-way: pending rows move to
// approved or rejected during review and never change again.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// StagedFinding is a candidate record held locally for human review before
// anything is written back to the roster.
type StagedFinding struct {
	ID              int64           `json:"id"`
	PersonID        string          `json:"person_id"`
	PersonName      string          `json:"person_name"`
	SourceKey       string          `json:"source_key"`
	SourceURL       string          `json:"source_url,omitempty"`
	ExtractedRecord CandidateRecord `json:"extracted_record"`
	MatchScore      float64         `json:"match_score"`
	SearchParams    Query           `json:"search_params"`
	StagedAt        time.Time       `json:"staged_at"`
	Status          string          `json:"status"`
	ReviewedAt      *time.Time      `json:"reviewed_at,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

// StagingSummary aggregates staged finding counts for reporting.
type StagingSummary struct {
	Total    int            `json:"total"`
	Pending  int            `json:"pending"`
	Approved int            `json:"approved"`
	Rejected int            `json:"rejected"`
	Reviewed int            `json:"reviewed"`
	BySource map[string]int `json:"by_source"`
}
