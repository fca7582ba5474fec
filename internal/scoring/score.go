// Package scoring ranks candidate records against the query that produced
// them. Scores run 0-100; the orchestrator stages only candidates at or
// above the configured threshold.
package scoring

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/pmilano1/genealogy-extractors/internal/models"
)

const baseScore = 50

// similarity returns 1 - normalized edit distance, in [0, 1].
func similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// ExtractSurname pulls the family name out of a display name. Sources that
// capitalize surnames ("Jean DUPONT") win over position; otherwise the last
// token is taken.
func ExtractSurname(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	for _, tok := range fields {
		if len(tok) >= 2 && tok == strings.ToUpper(tok) && strings.ContainsFunc(tok, func(r rune) bool {
			return r >= 'A' && r <= 'Z'
		}) {
			return tok
		}
	}
	return fields[len(fields)-1]
}

// Score computes the match score for one candidate against the query.
func Score(record *models.CandidateRecord, query *models.Query) int {
	score := baseScore
	candName := strings.ToLower(record.Name)

	// Surname
	if query.Surname != "" {
		surname := strings.ToLower(query.Surname)
		candSurname := strings.ToLower(ExtractSurname(record.Name))
		switch {
		case strings.Contains(candName, surname):
			score += 25
		case similarity(candSurname, surname) > 0.8:
			score += 15
		case similarity(candSurname, surname) > 0.5:
			score += 5
		}
	}

	// Given name
	if query.GivenName != "" {
		given := strings.ToLower(query.GivenName)
		switch {
		case strings.Contains(candName, given):
			score += 15
		case matchesInitial(candName, given):
			score += 10
		case bestTokenSimilarity(candName, given) > 0.7:
			score += 10
		}
	}

	// Birth year proximity
	if query.BirthYear > 0 && record.BirthYear != nil {
		delta := *record.BirthYear - query.BirthYear
		if delta < 0 {
			delta = -delta
		}
		switch {
		case delta == 0:
			score += 20
		case delta <= 2:
			score += 15
		case delta <= 5:
			score += 10
		case delta <= 10:
			score += 5
		case delta > 20:
			score -= 10
		}
	}

	// Location
	if loc := queryLocation(query); loc != "" {
		candLoc := strings.ToLower(record.BirthPlace + " " + record.DeathPlace)
		switch {
		case strings.Contains(candLoc, strings.ToLower(loc)):
			score += 10
		case bestTokenSimilarity(candLoc, strings.ToLower(loc)) > 0.6:
			score += 5
		}
	}

	score += richnessBonus(record)

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// richnessBonus rewards records carrying extra genealogical detail, capped
// at 10 so detail never outweighs an actual identity match.
func richnessBonus(record *models.CandidateRecord) int {
	bonus := 0
	if record.DeathYear != nil {
		bonus += 2
	}
	if record.DeathPlace != "" {
		bonus += 2
	}
	if record.URL != "" {
		bonus += 2
	}
	for key := range record.RawData {
		k := strings.ToLower(key)
		if strings.Contains(k, "father") || strings.Contains(k, "mother") || strings.Contains(k, "parents") {
			bonus += 4
			break
		}
	}
	if bonus > 10 {
		bonus = 10
	}
	return bonus
}

// matchesInitial reports whether any candidate token is the one-letter
// abbreviation of the queried given name ("J." for "Jean").
func matchesInitial(candName, given string) bool {
	if given == "" {
		return false
	}
	initial := given[:1]
	for _, tok := range strings.Fields(candName) {
		tok = strings.TrimSuffix(tok, ".")
		if tok == initial {
			return true
		}
	}
	return false
}

// bestTokenSimilarity returns the best edit-distance similarity between
// target and any token of text.
func bestTokenSimilarity(text, target string) float64 {
	best := 0.0
	for _, tok := range strings.Fields(text) {
		if s := similarity(tok, target); s > best {
			best = s
		}
	}
	return best
}

func queryLocation(q *models.Query) string {
	for _, loc := range []string{q.BirthPlace, q.Location, q.DeathPlace, q.Region} {
		if loc != "" {
			return loc
		}
	}
	return ""
}
