package extractors

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pmilano1/genealogy-extractors/internal/models"
)

var (
	arkivetRowClass = regexp.MustCompile(`(?i)result|record|hit|person`)
	arkivetHref     = regexp.MustCompile(`/(person|kilde|source)/`)
)

// DigitalarkivetExtractor reads person hits from the Norwegian national
// archives. Church books, censuses and emigration lists share one result
// layout.
type DigitalarkivetExtractor struct{}

func (e *DigitalarkivetExtractor) Extract(payload *models.Payload, query *models.Query) ([]models.CandidateRecord, error) {
	doc, err := parseDoc(payload)
	if err != nil {
		return nil, err
	}

	var records []models.CandidateRecord
	doc.Find("tr, div, li").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		class, _ := row.Attr("class")
		if !arkivetRowClass.MatchString(class) {
			return true
		}
		if rec, ok := e.extractRow(row); ok {
			records = append(records, rec)
		}
		return len(records) < maxRecords
	})
	return records, nil
}

func (e *DigitalarkivetExtractor) extractRow(row *goquery.Selection) (models.CandidateRecord, bool) {
	var url string
	row.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		if arkivetHref.MatchString(href) {
			url = absoluteURL("https://www.digitalarkivet.no", href)
			return false
		}
		return true
	})

	name := cleanText(row.Find("th, td, strong, b").First().Text())
	if len(name) < 2 {
		return models.CandidateRecord{}, false
	}

	text := row.Text()
	var birthYear, deathYear *int
	if years := findYears(text); len(years) >= 1 {
		birthYear = models.IntPtr(years[0])
		if len(years) >= 2 {
			deathYear = models.IntPtr(years[1])
		}
	}

	// Norwegian administrative terms mark the location cell.
	var location string
	row.Find("td, span").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		cellText := cleanText(cell.Text())
		lower := strings.ToLower(cellText)
		for _, word := range []string{"kommune", "fylke", "sogn", "prestegjeld"} {
			if strings.Contains(lower, word) {
				location = cellText
				return false
			}
		}
		return true
	})

	raw := map[string]any{}
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "kirkeb") || strings.Contains(lower, "dåp"):
		raw["record_type"] = "church"
	case strings.Contains(lower, "folketelling") || strings.Contains(lower, "census"):
		raw["record_type"] = "census"
	case strings.Contains(lower, "emigrant") || strings.Contains(lower, "utvandring"):
		raw["record_type"] = "emigration"
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
