// Package extractors turns raw source payloads into candidate records.
// Each remote source has a descriptor (how to reach it) and an extractor
// (how to read its result markup).
package extractors

import (
	"fmt"
	"regexp"

	"github.com/ternarybob/arbor"

	"github.com/pmilano1/genealogy-extractors/internal/models"
	"github.com/pmilano1/genealogy-extractors/internal/scoring"
)

// Extractor parses one source's result payload into candidate records.
// Implementations return at most maxRecords candidates and never score
// them; scoring happens uniformly in scoreRecords.
type Extractor interface {
	Extract(payload *models.Payload, query *models.Query) ([]models.CandidateRecord, error)
}

// maxRecords caps how many candidates one search may yield.
const maxRecords = 20

// resultIndicators suggest a page carries results even when the parser
// came back empty. Used to distinguish layout drift from a true no-match.
var resultIndicators = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\d+\s+results?`),
	regexp.MustCompile(`(?i)\d+\s+r[ée]sultats?`),
	regexp.MustCompile(`(?i)\d+\s+risultati`),
	regexp.MustCompile(`(?i)search results`),
	regexp.MustCompile(`(?i)showing results`),
}

func hasResultsIndicator(content string) bool {
	for _, re := range resultIndicators {
		if re.MatchString(content) {
			return true
		}
	}
	return false
}

// ExtractWithFallback runs the extractor and degrades gracefully. A parser
// error, or zero records on a page that plainly has results, yields a
// sentinel record pointing at the search URL so the failure is reviewable
// instead of silently dropped.
func ExtractWithFallback(ext Extractor, sourceKey string, payload *models.Payload, query *models.Query, logger arbor.ILogger) []models.CandidateRecord {
	records, err := safeExtract(ext, payload, query)
	if err != nil {
		logger.Warn().
			Str("source", sourceKey).
			Err(err).
			Msg("Parser failed, staging fallback record")
		return []models.CandidateRecord{models.NewSentinelRecord(sourceKey, payload.URL, err.Error())}
	}
	if len(records) == 0 && hasResultsIndicator(payload.Text()) {
		logger.Warn().
			Str("source", sourceKey).
			Msg("Parser returned no records but page shows results")
		return []models.CandidateRecord{models.NewSentinelRecord(sourceKey, payload.URL, "")}
	}
	return scoreRecords(records, sourceKey, query)
}

// safeExtract converts extractor panics into errors so one source's layout
// change cannot take down a whole run.
func safeExtract(ext Extractor, payload *models.Payload, query *models.Query) (records []models.CandidateRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parser panic: %v", r)
		}
	}()
	return ext.Extract(payload, query)
}

func scoreRecords(records []models.CandidateRecord, sourceKey string, query *models.Query) []models.CandidateRecord {
	for i := range records {
		if records[i].Source == "" {
			records[i].Source = sourceKey
		}
		records[i].MatchScore = scoring.Score(&records[i], query)
	}
	return records
}
