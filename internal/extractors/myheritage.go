package extractors

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pmilano1/genealogy-extractors/internal/models"
)

// MyHeritageExtractor reads record cards from MyHeritage result pages. Each
// card has a labelled field list (Birth, Death, Father, Mother, ...).
type MyHeritageExtractor struct{}

func (e *MyHeritageExtractor) Extract(payload *models.Payload, query *models.Query) ([]models.CandidateRecord, error) {
	doc, err := parseDoc(payload)
	if err != nil {
		return nil, err
	}

	var records []models.CandidateRecord
	doc.Find("div.record_card").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if rec, ok := e.extractCard(card); ok {
			records = append(records, rec)
		}
		return len(records) < maxRecords
	})
	return records, nil
}

func (e *MyHeritageExtractor) extractCard(card *goquery.Selection) (models.CandidateRecord, bool) {
	link := card.Find("a.record_name").First()
	name := cleanText(link.Text())
	if name == "" {
		return models.CandidateRecord{}, false
	}
	href, _ := link.Attr("href")
	url := absoluteURL("https://www.myheritage.com", href)

	rec := models.CandidateRecord{
		Name:    name,
		URL:     url,
		RawData: map[string]any{},
	}
	if collection := cleanText(card.Find("div.collection_name").First().Text()); collection != "" {
		rec.RawData["collection"] = collection
	}

	card.Find("ul.results_field_list li.fields_list_item").Each(func(_ int, item *goquery.Selection) {
		label := strings.ToLower(cleanText(item.Find("span.label").First().Text()))
		value := cleanText(item.Find("span.value").First().Text())
		if label == "" || value == "" {
			return
		}

		switch {
		case strings.Contains(label, "birth"):
			rec.BirthYear = firstYear(value)
			if _, place, ok := strings.Cut(value, " - "); ok {
				rec.BirthPlace = cleanText(place)
			}
		case strings.Contains(label, "death"):
			rec.DeathYear = firstYear(value)
			if _, place, ok := strings.Cut(value, " - "); ok {
				rec.DeathPlace = cleanText(place)
			}
		case strings.Contains(label, "father"):
			rec.RawData["father"] = value
		case strings.Contains(label, "mother"):
			rec.RawData["mother"] = value
		case strings.Contains(label, "parents"):
			rec.RawData["parents"] = value
		case strings.Contains(label, "wife"), strings.Contains(label, "husband"), strings.Contains(label, "spouse"):
			rec.RawData["spouse"] = value
		case strings.Contains(label, "children"), strings.Contains(label, "son"), strings.Contains(label, "daughter"):
			rec.RawData["children"] = splitList(value)
		case strings.Contains(label, "sibling"):
			rec.RawData["siblings"] = splitList(value)
		}
	})

	return rec, true
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = cleanText(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
