package extractors

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pmilano1/genealogy-extractors/internal/models"
)

// yearPattern matches plausible historical years (1500-2029).
var yearPattern = regexp.MustCompile(`\b(1[5-9]\d{2}|20[0-2]\d)\b`)

// parseDoc builds a goquery document from an HTML payload.
func parseDoc(payload *models.Payload) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(payload.Text()))
}

// findYears returns all plausible years in document order.
func findYears(text string) []int {
	var years []int
	for _, m := range yearPattern.FindAllString(text, -1) {
		if y, err := strconv.Atoi(m); err == nil {
			years = append(years, y)
		}
	}
	return years
}

// firstYear returns the first plausible year in text, or nil.
func firstYear(text string) *int {
	if m := yearPattern.FindString(text); m != "" {
		if y, err := strconv.Atoi(m); err == nil {
			return models.IntPtr(y)
		}
	}
	return nil
}

// absoluteURL prefixes site-relative hrefs with the source's base URL.
func absoluteURL(base, href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return base + href
}

// cleanText collapses runs of whitespace into single spaces.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
