package extractors

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/pmilano1/genealogy-extractors/internal/models"
)

var (
	filaeItemClass = regexp.MustCompile(`(?i)result|record|item`)
	filaeNameClass = regexp.MustCompile(`(?i)name|nom|person`)
	filaePlaceClass = regexp.MustCompile(`(?i)place|lieu|location|ville`)
	filaeDocClass  = regexp.MustCompile(`(?i)type|document|source`)
)

// FilaeExtractor reads result containers from Filae. The site's markup is
// unstable, so matching is by class-name pattern across several container
// shapes rather than fixed selectors.
type FilaeExtractor struct{}

func (e *FilaeExtractor) Extract(payload *models.Payload, query *models.Query) ([]models.CandidateRecord, error) {
	doc, err := parseDoc(payload)
	if err != nil {
		return nil, err
	}

	var records []models.CandidateRecord
	for _, tag := range []string{"div", "tr", "li", "article"} {
		doc.Find(tag).EachWithBreak(func(_ int, item *goquery.Selection) bool {
			class, _ := item.Attr("class")
			if !filaeItemClass.MatchString(class) {
				return true
			}
			if rec, ok := e.extractItem(item); ok {
				records = append(records, rec)
			}
			return len(records) < maxRecords
		})
		if len(records) > 0 {
			break
		}
	}
	return records, nil
}

func (e *FilaeExtractor) extractItem(item *goquery.Selection) (models.CandidateRecord, bool) {
	name := firstTextByClass(item, filaeNameClass)
	if name == "" {
		for _, sel := range []string{"a", "strong", "h3", "h4"} {
			if name = cleanText(item.Find(sel).First().Text()); name != "" {
				break
			}
		}
	}
	if name == "" {
		return models.CandidateRecord{}, false
	}

	var url string
	if href, ok := item.Find("a[href]").First().Attr("href"); ok {
		url = absoluteURL("https://www.filae.com", href)
	}

	raw := map[string]any{}
	if docType := firstTextByClass(item, filaeDocClass); docType != "" {
		raw["document_type"] = docType
	}

	return models.CandidateRecord{
		Name:       name,
		BirthYear:  firstYear(item.Text()),
		BirthPlace: firstTextByClass(item, filaePlaceClass),
		URL:        url,
		RawData:    raw,
	}, true
}

// firstTextByClass returns the text of the first descendant whose class
// matches the pattern.
func firstTextByClass(item *goquery.Selection, pattern *regexp.Regexp) string {
	var text string
	item.Find("[class]").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		class, _ := el.Attr("class")
		if pattern.MatchString(class) {
			text = cleanText(el.Text())
			return false
		}
		return true
	})
	return text
}
