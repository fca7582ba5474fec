package extractors

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pmilano1/genealogy-extractors/internal/models"
)

var (
	bgItemClass = regexp.MustCompile(`(?i)result|record|grave-card`)
	bgGraveHref = regexp.MustCompile(`/grave/(\d+)`)
)

// BillionGravesExtractor reads grave cards from BillionGraves results. The
// markup resembles Find A Grave but uses /grave/ links.
type BillionGravesExtractor struct{}

func (e *BillionGravesExtractor) Extract(payload *models.Payload, query *models.Query) ([]models.CandidateRecord, error) {
	doc, err := parseDoc(payload)
	if err != nil {
		return nil, err
	}

	var records []models.CandidateRecord
	doc.Find("div, a, tr").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		class, _ := item.Attr("class")
		if !bgItemClass.MatchString(class) {
			return true
		}
		if rec, ok := e.extractItem(item); ok {
			records = append(records, rec)
		}
		return len(records) < maxRecords
	})

	if len(records) == 0 {
		doc.Find(`a[href*="/grave/"]`).EachWithBreak(func(_ int, link *goquery.Selection) bool {
			href, _ := link.Attr("href")
			name := cleanText(link.Text())
			if name != "" && bgGraveHref.MatchString(href) {
				records = append(records, models.CandidateRecord{
					Name: name,
					URL:  absoluteURL("https://billiongraves.com", href),
				})
			}
			return len(records) < maxRecords
		})
	}
	return records, nil
}

func (e *BillionGravesExtractor) extractItem(item *goquery.Selection) (models.CandidateRecord, bool) {
	var url string
	if href, ok := item.Find(`a[href*="/grave/"]`).First().Attr("href"); ok {
		url = absoluteURL("https://billiongraves.com", href)
	} else if href, ok := item.Attr("href"); ok && bgGraveHref.MatchString(href) {
		url = absoluteURL("https://billiongraves.com", href)
	}

	name := cleanText(item.Find("h2, h3, h4, strong, b").First().Text())
	if name == "" {
		name = cleanText(item.Find("a").First().Text())
	}
	if name == "" {
		return models.CandidateRecord{}, false
	}

	var birthYear, deathYear *int
	if years := findYears(item.Text()); len(years) >= 1 {
		birthYear = models.IntPtr(years[0])
		if len(years) >= 2 {
			deathYear = models.IntPtr(years[1])
		}
	}

	var location, cemetery string
	item.Find("span, div, p").Each(func(_ int, el *goquery.Selection) {
		text := cleanText(el.Text())
		switch {
		case cemetery == "" && containsAnyWord(text, "Cemetery", "Memorial", "Graveyard"):
			cemetery = text
		case location == "" && strings.Contains(text, ",") && len(text) < 100:
			location = text
		}
	})

	raw := map[string]any{}
	if cemetery != "" {
		raw["cemetery"] = cemetery
	}
	if m := bgGraveHref.FindStringSubmatch(url); m != nil {
		raw["grave_id"] = m[1]
	}

	return models.CandidateRecord{
		Name:       name,
		BirthYear:  birthYear,
		DeathYear:  deathYear,
		BirthPlace: location,
		DeathPlace: location,
		URL:        url,
		RawData:    raw,
	}, true
}

func containsAnyWord(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
