package extractors

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pmilano1/genealogy-extractors/internal/models"
)

const matchidBaseURL = "https://deces.matchid.io/deces/api/v1"

// matchidResponse mirrors the INSEE death-records API envelope.
type matchidResponse struct {
	Response struct {
		Persons []matchidPerson `json:"persons"`
	} `json:"response"`
}

type matchidPerson struct {
	ID   string `json:"id"`
	Name struct {
		First []string `json:"first"`
		Last  string   `json:"last"`
	} `json:"name"`
	Sex   string        `json:"sex"`
	Birth matchidEvent  `json:"birth"`
	Death matchidEvent  `json:"death"`
	Score float64       `json:"score"`
}

type matchidEvent struct {
	Date     string `json:"date"`
	Location struct {
		City    any    `json:"city"`
		Country string `json:"country"`
	} `json:"location"`
}

// MatchIDExtractor reads the French death-records API (1970-present). The
// API returns structured JSON, so no browser is involved.
type MatchIDExtractor struct{}

// BuildSearchURL formats a free-text query against the API. Name parts and
// the birth year go into q, which matches more flexibly than date filters.
func (e *MatchIDExtractor) BuildSearchURL(query *models.Query) string {
	parts := []string{query.Surname}
	if query.GivenName != "" {
		parts = append(parts, query.GivenName)
	}
	if query.BirthPlace != "" {
		parts = append(parts, query.BirthPlace)
	}
	if query.BirthYear > 0 {
		parts = append(parts, strconv.Itoa(query.BirthYear))
	}
	return fmt.Sprintf("%s/search?q=%s&size=%d",
		matchidBaseURL, url.QueryEscape(strings.Join(parts, " ")), maxRecords)
}

func (e *MatchIDExtractor) Extract(payload *models.Payload, query *models.Query) ([]models.CandidateRecord, error) {
	var resp matchidResponse
	if err := payload.DecodeJSON(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode matchid response: %w", err)
	}

	var records []models.CandidateRecord
	for _, person := range resp.Response.Persons {
		if len(records) >= maxRecords {
			break
		}

		name := person.Name.Last
		if len(person.Name.First) > 0 {
			name = person.Name.Last + ", " + strings.Join(person.Name.First, " ")
		}
		if name == "" {
			continue
		}

		raw := map[string]any{"api_score": person.Score}
		if person.Sex != "" {
			raw["sex"] = person.Sex
		}

		records = append(records, models.CandidateRecord{
			Name:       name,
			BirthYear:  matchidYear(person.Birth.Date),
			DeathYear:  matchidYear(person.Death.Date),
			BirthPlace: matchidCity(person.Birth),
			DeathPlace: matchidCity(person.Death),
			URL:        "https://deces.matchid.io/id/" + person.ID,
			RawData:    raw,
		})
	}
	return records, nil
}

// matchidYear reads the year from the API's YYYYMMDD date strings.
func matchidYear(date string) *int {
	if len(date) < 4 {
		return nil
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return nil
	}
	return models.IntPtr(y)
}

// matchidCity handles the API returning city as either a string or a list
// of historical name variants.
func matchidCity(ev matchidEvent) string {
	switch city := ev.Location.City.(type) {
	case string:
		return city
	case []any:
		if len(city) > 0 {
			if s, ok := city[0].(string); ok {
				return s
			}
		}
	}
	return ""
}
