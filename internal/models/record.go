package models

import (
	"encoding/json"
	"strings"
)

// Sentinel values emitted when a source responded but its markup could not
// be interpreted. The sentinel keeps the failure visible in staging instead
// of silently dropping the source.
const (
	SentinelParseFailed = "PARSE_FAILED"
	SentinelParseError  = "PARSE_ERROR"
	SentinelScore       = 50
)

// CandidateRecord is one person-shaped result extracted from a source page.
type CandidateRecord struct {
	Name       string         `json:"name"`
	BirthYear  *int           `json:"birth_year,omitempty"`
	DeathYear  *int           `json:"death_year,omitempty"`
	BirthPlace string         `json:"birth_place,omitempty"`
	DeathPlace string         `json:"death_place,omitempty"`
	URL        string         `json:"url,omitempty"`
	Source     string         `json:"source"`
	MatchScore int            `json:"match_score"`
	RawData    map[string]any `json:"raw_data,omitempty"`
}

// IsSentinel reports whether this record marks a parse failure rather than
// a real candidate.
func (r *CandidateRecord) IsSentinel() bool {
	return r.Name == SentinelParseFailed || r.Name == SentinelParseError
}

// NewSentinelRecord builds the parse-failure marker record for a source.
func NewSentinelRecord(sourceKey, url, reason string) CandidateRecord {
	name := SentinelParseFailed
	if reason != "" {
		name = SentinelParseError
	}
	return CandidateRecord{
		Name:       name,
		URL:        url,
		Source:     sourceKey,
		MatchScore: SentinelScore,
		RawData:    map[string]any{"reason": reason},
	}
}

// Payload kinds returned by fetchers.
const (
	PayloadHTML = "html"
	PayloadJSON = "json"
)

// Payload is the raw material a fetch produced, before extraction.
type Payload struct {
	Kind string
	Body []byte
	URL  string
}

// HTMLPayload wraps rendered page HTML.
func HTMLPayload(url, html string) *Payload {
	return &Payload{Kind: PayloadHTML, Body: []byte(html), URL: url}
}

// JSONPayload wraps a raw API response body.
func JSONPayload(url string, body []byte) *Payload {
	return &Payload{Kind: PayloadJSON, Body: body, URL: url}
}

// Text returns the body as a string.
func (p *Payload) Text() string { return string(p.Body) }

// DecodeJSON unmarshals the body into v.
func (p *Payload) DecodeJSON(v any) error {
	return json.Unmarshal(p.Body, v)
}

// ContainsAny reports whether the body contains any of the phrases,
// case-insensitively.
func (p *Payload) ContainsAny(phrases []string) bool {
	lower := strings.ToLower(p.Text())
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// IntPtr returns a pointer to v. Helper for optional year fields.
func IntPtr(v int) *int { return &v }
