package extractors

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pmilano1/genealogy-extractors/internal/models"
)

var (
	geniProfileHref  = regexp.MustCompile(`^/people/[^/]+/\d+$`)
	geniParentsLine  = regexp.MustCompile(`(?i)^(?:Son|Daughter|Child)\s+of\s+(.+?)\s+and\s+(.+)$`)
	geniSpouseLine   = regexp.MustCompile(`(?i)^(?:Husband|Wife|Spouse)\s+of\s+(.+)$`)
	geniChildrenLine = regexp.MustCompile(`(?i)^(?:Father|Mother|Parent)\s+of\s+(.+)$`)
	geniSiblingLine  = regexp.MustCompile(`(?i)^(?:Brother|Sister|Sibling|Half brother|Half sister)\s+of\s+(.+)$`)
	geniListSplit    = regexp.MustCompile(`;\s*|\s+and\s+`)
)

// GeniExtractor reads profile rows from Geni's people search table,
// including the immediate-family sentences alongside each profile.
type GeniExtractor struct{}

func (e *GeniExtractor) Extract(payload *models.Payload, query *models.Query) ([]models.CandidateRecord, error) {
	doc, err := parseDoc(payload)
	if err != nil {
		return nil, err
	}

	var records []models.CandidateRecord
	doc.Find("tr.profile-layout-grid").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if rec, ok := e.extractProfile(row); ok {
			records = append(records, rec)
		}
		return len(records) < maxRecords
	})
	return records, nil
}

func (e *GeniExtractor) extractProfile(row *goquery.Selection) (models.CandidateRecord, bool) {
	nameCell := row.Find("td.name-grid-area").First()
	if nameCell.Length() == 0 {
		return models.CandidateRecord{}, false
	}

	var name, url string
	nameCell.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		if geniProfileHref.MatchString(href) {
			name = cleanText(link.Text())
			url = absoluteURL("https://www.geni.com", href)
			return false
		}
		return true
	})
	if name == "" {
		return models.CandidateRecord{}, false
	}

	raw := map[string]any{}
	if id, ok := row.Attr("data-profile-id"); ok && id != "" {
		raw["profile_id"] = id
	}

	var birthPlace string
	nameCell.Find("div.small").Each(func(_ int, div *goquery.Selection) {
		class, _ := div.Attr("class")
		if strings.Contains(class, "quiet") || strings.Contains(class, "area-title") ||
			strings.Contains(class, "similar_profiles") {
			return
		}
		text := cleanText(div.Text())
		if text == "" {
			return
		}
		if strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
			raw["nickname"] = strings.Trim(text, `"`)
		} else if birthPlace == "" {
			birthPlace = text
		}
	})

	var birthYear, deathYear *int
	if years := findYears(nameCell.Find("div.quiet").First().Text()); len(years) >= 1 {
		birthYear = models.IntPtr(years[0])
		if len(years) >= 2 {
			deathYear = models.IntPtr(years[1])
		}
	}

	if family := row.Find("td.immediate-family-grid-area").First(); family.Length() > 0 {
		e.parseFamily(family.Text(), raw)
	}

	return models.CandidateRecord{
		Name:       name,
		BirthYear:  birthYear,
		DeathYear:  deathYear,
		BirthPlace: birthPlace,
		URL:        url,
		RawData:    raw,
	}, true
}

func (e *GeniExtractor) parseFamily(text string, raw map[string]any) {
	for _, line := range strings.Split(text, "\n") {
		line = cleanText(line)
		if line == "" || line == "Family:" {
			continue
		}
		if m := geniParentsLine.FindStringSubmatch(line); m != nil {
			raw["father"] = cleanText(m[1])
			raw["mother"] = cleanText(m[2])
			continue
		}
		if m := geniSpouseLine.FindStringSubmatch(line); m != nil {
			raw["spouse"] = cleanText(m[1])
			continue
		}
		if m := geniChildrenLine.FindStringSubmatch(line); m != nil {
			raw["children"] = splitNameList(m[1])
			continue
		}
		if m := geniSiblingLine.FindStringSubmatch(line); m != nil {
			raw["siblings"] = splitNameList(m[1])
		}
	}
}

func splitNameList(text string) []string {
	var out []string
	for _, part := range geniListSplit.Split(text, -1) {
		if part = cleanText(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
