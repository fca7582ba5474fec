package extractors

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pmilano1/genealogy-extractors/internal/models"
)

var (
	antenatiBirthLabel = regexp.MustCompile(`(?i)birth|nascita`)
	antenatiDeathLabel = regexp.MustCompile(`(?i)death|morte`)
	antenatiPlaceAfter = regexp.MustCompile(`:\s*([^,]+)`)
)

// AntenatiExtractor reads nominative search items from the Italian State
// Archives portal. The registry search returns books, not people; only the
// nominative endpoint is parsed here.
type AntenatiExtractor struct{}

func (e *AntenatiExtractor) Extract(payload *models.Payload, query *models.Query) ([]models.CandidateRecord, error) {
	doc, err := parseDoc(payload)
	if err != nil {
		return nil, err
	}

	var records []models.CandidateRecord
	doc.Find("div.search-item").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if rec, ok := e.extractPerson(item, query); ok {
			records = append(records, rec)
		}
		return len(records) < maxRecords
	})
	return records, nil
}

func (e *AntenatiExtractor) extractPerson(item *goquery.Selection, query *models.Query) (models.CandidateRecord, bool) {
	nameLink := item.Find("h3 a").First()
	name := cleanText(nameLink.Text())
	if name == "" {
		return models.CandidateRecord{}, false
	}
	href, _ := nameLink.Attr("href")
	url := absoluteURL("https://antenati.cultura.gov.it", href)

	var birthYear, deathYear *int
	var birthPlace string
	item.Find("div.nominative-records a").Each(func(_ int, link *goquery.Selection) {
		text := link.Text()
		switch {
		case antenatiBirthLabel.MatchString(text):
			if birthYear == nil {
				birthYear = firstYear(text)
			}
			if birthPlace == "" {
				if m := antenatiPlaceAfter.FindStringSubmatch(text); m != nil {
					birthPlace = cleanText(m[1])
				}
			}
		case antenatiDeathLabel.MatchString(text):
			if deathYear == nil {
				deathYear = firstYear(text)
			}
		}
	})

	family := map[string]any{}
	item.Find("div.nominative-links span").Each(func(_ int, span *goquery.Selection) {
		text := cleanText(span.Text())
		value := text
		if idx := strings.Index(text, ":"); idx >= 0 {
			value = cleanText(text[idx+1:])
		}
		switch {
		case strings.Contains(text, "Father") || strings.Contains(text, "Padre"):
			family["father"] = value
		case strings.Contains(text, "Mother") || strings.Contains(text, "Madre"):
			family["mother"] = value
		case strings.Contains(text, "Spouse") || strings.Contains(text, "Coniuge"):
			family["spouse"] = value
		}
	})

	if birthPlace == "" {
		birthPlace = query.Location
	}

	return models.CandidateRecord{
		Name:       name,
		BirthYear:  birthYear,
		DeathYear:  deathYear,
		BirthPlace: birthPlace,
		URL:        url,
		RawData:    family,
	}, true
}
