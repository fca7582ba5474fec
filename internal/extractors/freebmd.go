package extractors

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/pmilano1/genealogy-extractors/internal/models"
)

var freebmdTableClass = regexp.MustCompile(`(?i)results?|data`)

// FreeBMDExtractor reads the UK civil-registration index table. Columns are
// Surname, First name(s), District, Volume, Page, Quarter, Year; individual
// index entries have no stable record URLs.
type FreeBMDExtractor struct{}

func (e *FreeBMDExtractor) Extract(payload *models.Payload, query *models.Query) ([]models.CandidateRecord, error) {
	doc, err := parseDoc(payload)
	if err != nil {
		return nil, err
	}

	table := findTable(doc, freebmdTableClass)
	if table == nil {
		return nil, nil
	}

	var records []models.CandidateRecord
	table.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if i == 0 {
			return true // header
		}
		if rec, ok := e.extractRow(row, payload.URL); ok {
			records = append(records, rec)
		}
		return len(records) < maxRecords
	})
	return records, nil
}

func (e *FreeBMDExtractor) extractRow(row *goquery.Selection, searchURL string) (models.CandidateRecord, bool) {
	cells := row.Find("td")
	if cells.Length() < 5 {
		return models.CandidateRecord{}, false
	}

	surname := cleanText(cells.Eq(0).Text())
	givenName := cleanText(cells.Eq(1).Text())
	district := cleanText(cells.Eq(2).Text())
	name := cleanText(givenName + " " + surname)
	if name == "" {
		return models.CandidateRecord{}, false
	}

	var birthYear *int
	if cells.Length() > 6 {
		birthYear = firstYear(cells.Eq(cells.Length() - 1).Text())
	}

	url := searchURL
	if url == "" {
		url = "https://www.freebmd.org.uk/"
	}

	return models.CandidateRecord{
		Name:       name,
		BirthYear:  birthYear,
		BirthPlace: district,
		URL:        url,
		RawData: map[string]any{
			"district":   district,
			"surname":    surname,
			"given_name": givenName,
		},
	}, true
}

// findTable returns the first table whose class matches, or the first
// table at all, or nil.
func findTable(doc *goquery.Document, classPattern *regexp.Regexp) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		class, _ := t.Attr("class")
		if classPattern.MatchString(class) {
			found = t
			return false
		}
		return true
	})
	if found != nil {
		return found
	}
	if t := doc.Find("table").First(); t.Length() > 0 {
		return t
	}
	return nil
}
