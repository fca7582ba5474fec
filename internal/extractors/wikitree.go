package extractors

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pmilano1/genealogy-extractors/internal/models"
)

const wikitreeAPIURL = "https://api.wikitree.com/api.php"

// wikitreeResponse mirrors the searchPerson API envelope: an array whose
// first element carries the matches.
type wikitreeResponse []struct {
	Total   int             `json:"total"`
	Matches []wikitreeMatch `json:"matches"`
}

type wikitreeMatch struct {
	ID            any    `json:"Id"`
	Name          string `json:"Name"`
	FirstName     string `json:"FirstName"`
	LastName      string `json:"LastNameAtBirth"`
	BirthDate     string `json:"BirthDate"`
	BirthLocation string `json:"BirthLocation"`
	DeathDate     string `json:"DeathDate"`
}

// WikiTreeExtractor reads searchPerson JSON responses from the WikiTree API.
type WikiTreeExtractor struct{}

// BuildSearchURL formats a searchPerson API call for the query.
func (e *WikiTreeExtractor) BuildSearchURL(query *models.Query) string {
	params := url.Values{}
	params.Set("action", "searchPerson")
	params.Set("LastName", query.Surname)
	if query.GivenName != "" {
		params.Set("FirstName", query.GivenName)
	}
	if query.BirthYear > 0 {
		params.Set("BirthDate", strconv.Itoa(query.BirthYear))
		params.Set("BirthDateDecade", strconv.Itoa(query.BirthYear/10*10)+"s")
	}
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(maxRecords))
	params.Set("fields", "Id,Name,FirstName,LastNameAtBirth,BirthDate,BirthLocation,DeathDate")
	return wikitreeAPIURL + "?" + params.Encode()
}

func (e *WikiTreeExtractor) Extract(payload *models.Payload, query *models.Query) ([]models.CandidateRecord, error) {
	var resp wikitreeResponse
	if err := payload.DecodeJSON(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode wikitree response: %w", err)
	}
	if len(resp) == 0 {
		return nil, nil
	}

	var records []models.CandidateRecord
	for _, match := range resp[0].Matches {
		if len(records) >= maxRecords {
			break
		}

		lastName := match.LastName
		if lastName == "" && strings.Contains(match.Name, "-") {
			lastName = strings.SplitN(match.Name, "-", 2)[0]
		}
		name := cleanText(match.FirstName + " " + lastName)
		if name == "" {
			continue
		}

		var url string
		if match.Name != "" {
			url = "https://www.wikitree.com/wiki/" + match.Name
		}

		raw := map[string]any{}
		if match.ID != nil {
			raw["wiki_id"] = match.ID
		}
		if match.DeathDate != "" {
			raw["death_date"] = match.DeathDate
		}

		records = append(records, models.CandidateRecord{
			Name:       name,
			BirthYear:  firstYear(match.BirthDate),
			DeathYear:  firstYear(match.DeathDate),
			BirthPlace: match.BirthLocation,
			URL:        url,
			RawData:    raw,
		})
	}
	return records, nil
}
