package extractors

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pmilano1/genealogy-extractors/internal/models"
)

// GeneanetExtractor reads "ligne-resultat" rows from Geneanet result pages.
// Geneanet renders surnames in uppercase, e.g. "DUBOIS Marie".
type GeneanetExtractor struct{}

func (e *GeneanetExtractor) Extract(payload *models.Payload, query *models.Query) ([]models.CandidateRecord, error) {
	doc, err := parseDoc(payload)
	if err != nil {
		return nil, err
	}

	var records []models.CandidateRecord
	doc.Find("a.ligne-resultat").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if rec, ok := e.extractIndividual(item); ok {
			records = append(records, rec)
		}
		return len(records) < maxRecords
	})
	return records, nil
}

func (e *GeneanetExtractor) extractIndividual(item *goquery.Selection) (models.CandidateRecord, bool) {
	url, ok := item.Attr("href")
	if !ok || url == "" {
		return models.CandidateRecord{}, false
	}

	name := cleanText(item.Find("p.text-large").First().Text())

	birthYear := e.periodYear(item, "Birth")
	deathYear := e.periodYear(item, "Death")

	birthPlace := cleanText(item.Find("div.content-lieu span.title-lieu").First().Text())

	raw := map[string]any{}
	item.Find("span").Each(func(_ int, span *goquery.Selection) {
		if cleanText(span.Text()) == "Spouse" {
			if spouse := cleanText(span.Parent().Find("span.text-large").First().Text()); spouse != "" {
				raw["spouse"] = spouse
			}
		}
	})

	return models.CandidateRecord{
		Name:       name,
		BirthYear:  birthYear,
		DeathYear:  deathYear,
		BirthPlace: birthPlace,
		URL:        url,
		RawData:    raw,
	}, name != ""
}

// periodYear reads the year paired with a "Birth"/"Death" label in the
// content-periode column.
func (e *GeneanetExtractor) periodYear(item *goquery.Selection, label string) *int {
	var year *int
	item.Find("div.content-periode span.text-light").Each(func(_ int, span *goquery.Selection) {
		if year != nil || !strings.EqualFold(cleanText(span.Text()), label) {
			return
		}
		val := cleanText(span.Parent().Find("span.text-large").First().Text())
		if y, err := strconv.Atoi(val); err == nil {
			year = models.IntPtr(y)
		}
	})
	return year
}
