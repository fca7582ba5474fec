package extractors

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pmilano1/genealogy-extractors/internal/models"
)

var scotTableClass = regexp.MustCompile(`(?i)result|record|search`)

// ScotlandsPeopleExtractor reads index tables from ScotlandsPeople. The
// index is searchable without payment; record images are not fetched.
type ScotlandsPeopleExtractor struct{}

func (e *ScotlandsPeopleExtractor) Extract(payload *models.Payload, query *models.Query) ([]models.CandidateRecord, error) {
	doc, err := parseDoc(payload)
	if err != nil {
		return nil, err
	}

	var records []models.CandidateRecord
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		class, _ := table.Attr("class")
		if !scotTableClass.MatchString(class) {
			return
		}
		table.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
			if i == 0 {
				return true
			}
			if rec, ok := e.extractRow(row); ok {
				records = append(records, rec)
			}
			return len(records) < maxRecords
		})
	})
	return records, nil
}

func (e *ScotlandsPeopleExtractor) extractRow(row *goquery.Selection) (models.CandidateRecord, bool) {
	cells := row.Find("td, th")
	if cells.Length() < 2 {
		return models.CandidateRecord{}, false
	}

	var cellTexts []string
	cells.Each(func(_ int, cell *goquery.Selection) {
		cellTexts = append(cellTexts, cleanText(cell.Text()))
	})
	fullText := strings.Join(cellTexts, " ")

	link := row.Find("a[href]").First()
	name := cleanText(link.Text())
	if name == "" {
		name = cellTexts[0]
	}
	if len(name) < 2 {
		return models.CandidateRecord{}, false
	}

	var url string
	if href, ok := link.Attr("href"); ok {
		url = absoluteURL("https://www.scotlandspeople.gov.uk", href)
	}

	var birthYear, deathYear *int
	if years := findYears(fullText); len(years) >= 1 {
		birthYear = models.IntPtr(years[0])
		if len(years) >= 2 {
			deathYear = models.IntPtr(years[1])
		}
	}

	var location string
	for _, text := range cellTexts[1:] {
		if containsAnyWord(text, "Edinburgh", "Glasgow", "Aberdeen", "Dundee", "Parish") {
			location = text
			break
		}
	}

	raw := map[string]any{}
	lower := strings.ToLower(fullText)
	switch {
	case strings.Contains(lower, "birth") || strings.Contains(lower, "baptism"):
		raw["record_type"] = "birth"
	case strings.Contains(lower, "death") || strings.Contains(lower, "burial"):
		raw["record_type"] = "death"
	case strings.Contains(lower, "marriage"):
		raw["record_type"] = "marriage"
	case strings.Contains(lower, "census"):
		raw["record_type"] = "census"
	}

	return models.CandidateRecord{
		Name:       name,
		BirthYear:  birthYear,
		DeathYear:  deathYear,
		BirthPlace: location,
		URL:        url,
		RawData:    raw,
	}, true
}
