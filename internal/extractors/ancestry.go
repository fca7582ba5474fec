package extractors

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pmilano1/genealogy-extractors/internal/models"
)

var (
	bracketNote  = regexp.MustCompile(`\[.*?\]`)
	angleNote    = regexp.MustCompile(`<.*?>`)
	yearAndPlace = regexp.MustCompile(`(\d{4})\s+(.+)`)
)

// AncestryExtractor reads result cards from Ancestry. Each card carries a
// horizontal field table (Name, Birth, Death, Father, Mother, ...).
type AncestryExtractor struct{}

func (e *AncestryExtractor) Extract(payload *models.Payload, query *models.Query) ([]models.CandidateRecord, error) {
	doc, err := parseDoc(payload)
	if err != nil {
		return nil, err
	}

	var records []models.CandidateRecord
	doc.Find("div.global-results-card").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if rec, ok := e.extractCard(card); ok {
			records = append(records, rec)
		}
		return len(records) < maxRecords
	})
	return records, nil
}

func (e *AncestryExtractor) extractCard(card *goquery.Selection) (models.CandidateRecord, bool) {
	table := card.Find("table.tableHorizontal").First()
	if table.Length() == 0 {
		return models.CandidateRecord{}, false
	}

	titleLink := card.Find("a.global-results-title-link").First()
	href, _ := titleLink.Attr("href")
	url := absoluteURL("https://www.ancestry.com", href)
	collection := cleanText(titleLink.Text())

	fields := map[string]string{}
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		key := strings.ToLower(cleanText(row.Find("th").First().Text()))
		value := cleanText(row.Find("td").First().Text())
		if key != "" && value != "" {
			fields[key] = value
		}
	})

	name := fields["name"]
	name = bracketNote.ReplaceAllString(name, "")
	name = angleNote.ReplaceAllString(name, "")
	name = cleanText(strings.ReplaceAll(name, "??", ""))
	if name == "" {
		return models.CandidateRecord{}, false
	}

	birthYear, birthPlace := splitYearPlace(fields["birth"])
	deathYear, deathPlace := splitYearPlace(fields["death"])

	// Baptism stands in for birth on parish records.
	if birthYear == nil && fields["baptism"] != "" {
		birthYear, birthPlace = splitYearPlace(fields["baptism"])
	}

	raw := map[string]any{"collection": collection}
	for _, key := range []string{"father", "mother", "marriage", "residence", "baptism"} {
		if v := fields[key]; v != "" {
			raw[key] = v
		}
	}

	return models.CandidateRecord{
		Name:       name,
		BirthYear:  birthYear,
		DeathYear:  deathYear,
		BirthPlace: birthPlace,
		DeathPlace: deathPlace,
		URL:        url,
		RawData:    raw,
	}, true
}

// splitYearPlace parses "27 Dec 1850 Illinois, USA" into year and place.
func splitYearPlace(text string) (*int, string) {
	year := firstYear(text)
	if year == nil {
		return nil, ""
	}
	var place string
	if m := yearAndPlace.FindStringSubmatch(text); m != nil {
		place = cleanText(m[2])
	}
	return year, place
}
