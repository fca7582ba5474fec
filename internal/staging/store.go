// Package staging holds candidate findings in the local database until a
// human reviews them. Nothing reaches the roster without approval.
package staging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/pmilano1/genealogy-extractors/internal/models"
	"github.com/pmilano1/genealogy-extractors/internal/storage"
)

// Store persists staged findings. All writes go through the shared backend
// so embedded and networked deployments behave identically.
type Store struct {
	backend storage.Backend
	logger  arbor.ILogger
}

// NewStore creates a staging store over an initialized backend.
func NewStore(backend storage.Backend, logger arbor.ILogger) *Store {
	return &Store{backend: backend, logger: logger}
}

// AddFinding stages a candidate record for review and returns its id.
func (s *Store) AddFinding(ctx context.Context, person *models.Person, record *models.CandidateRecord, query *models.Query) (int64, error) {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return 0, fmt.Errorf("failed to encode record: %w", err)
	}
	paramsJSON, err := json.Marshal(query)
	if err != nil {
		return 0, fmt.Errorf("failed to encode search params: %w", err)
	}

	id, err := s.backend.Insert(ctx, `
		INSERT INTO staged_findings
			(person_id, person_name, source_key, source_url, extracted_record, match_score, search_params, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		person.ID, person.DisplayName(), record.Source, record.URL,
		string(recordJSON), float64(record.MatchScore), string(paramsJSON),
		models.StatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to stage finding: %w", err)
	}

	s.logger.Debug().
		Int64("id", id).
		Str("person", person.DisplayName()).
		Str("source", record.Source).
		Int("score", record.MatchScore).
		Msg("Staged finding")
	return id, nil
}

// GetPending returns pending findings ordered by score descending. limit <= 0
// means no limit.
func (s *Store) GetPending(ctx context.Context, limit int) ([]models.StagedFinding, error) {
	query := `SELECT * FROM staged_findings WHERE status = $1 ORDER BY match_score DESC, staged_at ASC`
	args := []any{models.StatusPending}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := s.backend.FetchAll(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending findings: %w", err)
	}
	return decodeFindings(rows), nil
}

// GetByPerson returns every staged finding for one person, newest first.
func (s *Store) GetByPerson(ctx context.Context, personID string) ([]models.StagedFinding, error) {
	rows, err := s.backend.FetchAll(ctx,
		`SELECT * FROM staged_findings WHERE person_id = $1 ORDER BY staged_at DESC`, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to load findings for person: %w", err)
	}
	return decodeFindings(rows), nil
}

// GetApproved returns approved findings not yet submitted, oldest first.
func (s *Store) GetApproved(ctx context.Context) ([]models.StagedFinding, error) {
	rows, err := s.backend.FetchAll(ctx,
		`SELECT * FROM staged_findings WHERE status = $1 ORDER BY staged_at ASC`,
		models.StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to load approved findings: %w", err)
	}
	return decodeFindings(rows), nil
}

// Approve marks one pending finding approved. Approving a non-pending or
// unknown id is an error.
func (s *Store) Approve(ctx context.Context, id int64, notes string) error {
	return s.review(ctx, id, models.StatusApproved, notes)
}

// Reject marks one pending finding rejected.
func (s *Store) Reject(ctx context.Context, id int64, notes string) error {
	return s.review(ctx, id, models.StatusRejected, notes)
}

func (s *Store) review(ctx context.Context, id int64, status, notes string) error {
	row, err := s.backend.FetchOne(ctx,
		`SELECT status FROM staged_findings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to load finding %d: %w", id, err)
	}
	if row == nil {
		return fmt.Errorf("finding %d not found", id)
	}
	if got := row.AsString("status"); got != models.StatusPending {
		return fmt.Errorf("finding %d already reviewed (status %s)", id, got)
	}

	err = s.backend.Execute(ctx,
		`UPDATE staged_findings SET status = $1, reviewed_at = NOW(), notes = $2 WHERE id = $3`,
		status, notes, id)
	if err != nil {
		return fmt.Errorf("failed to update finding %d: %w", id, err)
	}
	s.logger.Info().Int64("id", id).Str("status", status).Msg("Reviewed finding")
	return nil
}

// MarkSubmitted deletes an approved finding after it has been written to the
// roster, so --submit-approved is idempotent across restarts.
func (s *Store) MarkSubmitted(ctx context.Context, id int64) error {
	if err := s.backend.Execute(ctx, `DELETE FROM staged_findings WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to remove submitted finding %d: %w", id, err)
	}
	return nil
}

// Summary aggregates counts by status and source.
func (s *Store) Summary(ctx context.Context) (*models.StagingSummary, error) {
	summary := &models.StagingSummary{BySource: make(map[string]int)}

	rows, err := s.backend.FetchAll(ctx,
		`SELECT status, COUNT(*) AS cnt FROM staged_findings GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize staging: %w", err)
	}
	for _, r := range rows {
		n := r.AsInt("cnt")
		summary.Total += n
		switch r.AsString("status") {
		case models.StatusPending:
			summary.Pending = n
		case models.StatusApproved:
			summary.Approved = n
		case models.StatusRejected:
			summary.Rejected = n
		}
	}
	summary.Reviewed = summary.Approved + summary.Rejected

	rows, err = s.backend.FetchAll(ctx,
		`SELECT source_key, COUNT(*) AS cnt FROM staged_findings GROUP BY source_key`)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize staging: %w", err)
	}
	for _, r := range rows {
		summary.BySource[r.AsString("source_key")] = r.AsInt("cnt")
	}
	return summary, nil
}

// ClearAll deletes every staged finding regardless of status.
func (s *Store) ClearAll(ctx context.Context) error {
	if err := s.backend.Execute(ctx, `DELETE FROM staged_findings`); err != nil {
		return fmt.Errorf("failed to clear staged findings: %w", err)
	}
	s.logger.Info().Msg("Cleared all staged findings")
	return nil
}

func decodeFindings(rows []storage.Row) []models.StagedFinding {
	findings := make([]models.StagedFinding, 0, len(rows))
	for _, row := range rows {
		f := models.StagedFinding{
			ID:         int64(row.AsInt("id")),
			PersonID:   row.AsString("person_id"),
			PersonName: row.AsString("person_name"),
			SourceKey:  row.AsString("source_key"),
			SourceURL:  row.AsString("source_url"),
			MatchScore: row.AsFloat("match_score"),
			Status:     row.AsString("status"),
			Notes:      row.AsString("notes"),
		}
		if raw := row.AsString("extracted_record"); raw != "" {
			// Malformed rows keep their raw text in Notes instead of
			// aborting the whole listing.
			if err := json.Unmarshal([]byte(raw), &f.ExtractedRecord); err != nil {
				f.Notes = raw
			}
		}
		if raw := row.AsString("search_params"); raw != "" {
			_ = json.Unmarshal([]byte(raw), &f.SearchParams)
		}
		if ts, ok := asTime(row["staged_at"]); ok {
			f.StagedAt = ts
		}
		if ts, ok := asTime(row["reviewed_at"]); ok {
			f.ReviewedAt = &ts
		}
		findings = append(findings, f)
	}
	return findings
}

// asTime handles both drivers: lib/pq returns time.Time, the embedded
// engine stores timestamps as text.
func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
			if ts, err := time.Parse(layout, t); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}
