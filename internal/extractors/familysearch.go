package extractors

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pmilano1/genealogy-extractors/internal/models"
)

var bareYearLine = regexp.MustCompile(`^\d{4}$`)

// FamilySearchExtractor reads ark-keyed result rows from FamilySearch. The
// results table renders client-side, so fetches wait for the ark selector.
type FamilySearchExtractor struct{}

func (e *FamilySearchExtractor) Extract(payload *models.Payload, query *models.Query) ([]models.CandidateRecord, error) {
	doc, err := parseDoc(payload)
	if err != nil {
		return nil, err
	}

	var records []models.CandidateRecord
	doc.Find(`tr[data-testid*="/ark:/"]`).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if rec, ok := e.extractRow(row); ok {
			records = append(records, rec)
		}
		return len(records) < maxRecords
	})
	return records, nil
}

func (e *FamilySearchExtractor) extractRow(row *goquery.Selection) (models.CandidateRecord, bool) {
	link := row.Find(`a[href*="/ark:/"]`).First()
	name := cleanText(link.Text())
	if name == "" {
		return models.CandidateRecord{}, false
	}
	href, _ := link.Attr("href")
	url := absoluteURL("https://www.familysearch.org", href)

	var birthYear *int
	var birthPlace string
	raw := map[string]any{}

	row.Find("td").Each(func(_ int, cell *goquery.Selection) {
		cellText := cell.Text()
		switch {
		case strings.Contains(cellText, "Birth"):
			cell.Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
				if y := firstYear(span.Text()); y != nil {
					birthYear = y
					return false
				}
				return true
			})
			for _, line := range strings.Split(cellText, "\n") {
				line = cleanText(line)
				if line != "" && line != "Birth" && !bareYearLine.MatchString(line) {
					birthPlace = line
					break
				}
			}
		case strings.Contains(cellText, "Parents"):
			if parents := cleanText(strings.Replace(cellText, "Parents", "", 1)); parents != "" {
				raw["parents"] = parents
			}
		}
	})

	return models.CandidateRecord{
		Name:       name,
		BirthYear:  birthYear,
		BirthPlace: birthPlace,
		URL:        url,
		RawData:    raw,
	}, true
}
