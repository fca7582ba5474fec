package extractors

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pmilano1/genealogy-extractors/internal/models"
)

var (
	memorialHrefPattern = regexp.MustCompile(`/memorial/(\d+)`)
	memorialDatePattern = regexp.MustCompile(`(?:\d{1,2}\s+\w+\s+)?(\d{4})\s*[–-]\s*(?:\d{1,2}\s+\w+\s+)?(\d{4})`)
)

// FindAGraveExtractor reads memorial cards from Find A Grave result pages.
type FindAGraveExtractor struct{}

func (e *FindAGraveExtractor) Extract(payload *models.Payload, query *models.Query) ([]models.CandidateRecord, error) {
	doc, err := parseDoc(payload)
	if err != nil {
		return nil, err
	}

	var records []models.CandidateRecord
	doc.Find("div.memorial-item").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if rec, ok := e.extractMemorial(item); ok {
			records = append(records, rec)
		}
		return len(records) < maxRecords
	})
	return records, nil
}

func (e *FindAGraveExtractor) extractMemorial(item *goquery.Selection) (models.CandidateRecord, bool) {
	link := item.Find(`a[href*="/memorial/"]`).First()
	href, ok := link.Attr("href")
	if !ok {
		return models.CandidateRecord{}, false
	}
	url := absoluteURL("https://www.findagrave.com", href)

	name := cleanText(item.Find("h3").First().Text())
	if name == "" {
		name = cleanText(strings.SplitN(link.Text(), "\n", 2)[0])
	}

	text := item.Text()
	var birthYear, deathYear *int
	if m := memorialDatePattern.FindStringSubmatch(text); m != nil {
		birthYear = firstYear(m[1])
		deathYear = firstYear(m[2])
	} else if years := findYears(text); len(years) >= 2 {
		birthYear = models.IntPtr(years[0])
		deathYear = models.IntPtr(years[1])
	} else if len(years) == 1 {
		birthYear = models.IntPtr(years[0])
	}

	var cemetery, location string
	for _, line := range strings.Split(text, "\n") {
		line = cleanText(line)
		if line == "" {
			continue
		}
		if cemetery == "" {
			for _, word := range []string{"Cemetery", "Churchyard", "Memorial", "Gardens", "Burial"} {
				if strings.Contains(line, word) {
					cemetery = line
					break
				}
			}
		}
		if location == "" && strings.Contains(line, ",") && line != cemetery && line != name {
			location = line
		}
	}

	raw := map[string]any{}
	if cemetery != "" {
		raw["cemetery"] = cemetery
	}
	if m := memorialHrefPattern.FindStringSubmatch(url); m != nil {
		raw["memorial_id"] = m[1]
	}

	return models.CandidateRecord{
		Name:       name,
		BirthYear:  birthYear,
		DeathYear:  deathYear,
		BirthPlace: location,
		DeathPlace: location,
		URL:        url,
		RawData:    raw,
	}, name != ""
}
