package roster

import (
	"context"

	"github.com/pmilano1/genealogy-extractors/internal/models"
)

// SourceDoc documents where a finding came from.
type SourceDoc struct {
	SourceType string `json:"source_type"`
	SourceName string `json:"source_name"`
	SourceURL  string `json:"source_url"`
	Action     string `json:"action"`
	Content    string `json:"content,omitempty"`
}

// SubmitRequest is one approved finding pushed back to the roster.
type SubmitRequest struct {
	PersonID   string         `json:"person_id"`
	Source     SourceDoc      `json:"source"`
	Confidence string         `json:"confidence"`
	Findings   map[string]any `json:"findings,omitempty"`
	NewFather  map[string]any `json:"new_father,omitempty"`
	NewMother  map[string]any `json:"new_mother,omitempty"`
	Notes      string         `json:"notes,omitempty"`
}

// SubmitResult reports what the roster changed.
type SubmitResult struct {
	Success      bool     `json:"success"`
	ChangesMade  []string `json:"changes_made"`
	GapsResolved []string `json:"gaps_resolved"`
	SourceID     string   `json:"source_id"`
}

const submitMutation = `
mutation SubmitResearch($input: ResearchFindingsInput!) {
  submitResearch(input: $input) {
    success
    changes_made
    gaps_resolved
    source_id
  }
}`

// SubmitResearch pushes one approved finding to the roster. Only the
// review submission action calls this; research runs never write back.
func (c *Client) SubmitResearch(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	input := map[string]any{
		"person_id":  req.PersonID,
		"source":     req.Source,
		"confidence": req.Confidence,
		"agent_id":   c.agentID,
	}
	if req.Findings != nil {
		input["findings"] = req.Findings
	}
	if req.NewFather != nil {
		input["new_father"] = req.NewFather
	}
	if req.NewMother != nil {
		input["new_mother"] = req.NewMother
	}
	if req.Notes != "" {
		input["notes"] = req.Notes
	}

	var data struct {
		SubmitResearch SubmitResult `json:"submitResearch"`
	}
	if err := c.execute(ctx, submitMutation, map[string]any{"input": input}, &data); err != nil {
		return SubmitResult{}, err
	}
	return data.SubmitResearch, nil
}

// ConfidenceForScore maps a match score to the roster's confidence scale.
func ConfidenceForScore(score float64) string {
	switch {
	case score >= 90:
		return "HIGH"
	case score >= 70:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// FindingToRequest converts an approved staged finding into a submission.
func FindingToRequest(f *models.StagedFinding) SubmitRequest {
	record := f.ExtractedRecord
	findings := map[string]any{}
	if record.BirthYear != nil {
		findings["birth_year"] = *record.BirthYear
	}
	if record.BirthPlace != "" {
		findings["birth_place"] = record.BirthPlace
	}
	if record.DeathYear != nil {
		findings["death_year"] = *record.DeathYear
	}
	if record.DeathPlace != "" {
		findings["death_place"] = record.DeathPlace
	}

	req := SubmitRequest{
		PersonID: f.PersonID,
		Source: SourceDoc{
			SourceType: "web_record",
			SourceName: f.SourceKey,
			SourceURL:  record.URL,
			Action:     "research",
		},
		Confidence: ConfidenceForScore(f.MatchScore),
		Notes:      f.Notes,
	}
	if len(findings) > 0 {
		req.Findings = findings
	}

	if raw := record.RawData; raw != nil {
		if father, ok := raw["father"].(string); ok && father != "" {
			req.NewFather = map[string]any{"name_full": father}
		}
		if mother, ok := raw["mother"].(string); ok && mother != "" {
			req.NewMother = map[string]any{"name_full": mother}
		}
	}
	return req
}
