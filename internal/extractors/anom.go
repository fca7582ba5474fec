package extractors

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pmilano1/genealogy-extractors/internal/models"
)

const anomMilitaryURL = "http://anom.archivesnationales.culture.gouv.fr/regmatmil"

var (
	anomRowClass   = regexp.MustCompile(`pair|impair`)
	anomDetailClef = regexp.MustCompile(`osd\.php\?clef=([^'"]+)`)
	anomBirthDate  = regexp.MustCompile(`Date de naissance\s*:\s*(\d{4})-(\d{2})-(\d{2})`)
	anomBirthDept  = regexp.MustCompile(`territoire de naissance\s*:\s*(.+)`)
)

// ANOMExtractor reads the French overseas archives. Two name-searchable
// databases share it: the penal-colony registers (basebagne) and the
// colonial military matricule rolls.
type ANOMExtractor struct{}

func (e *ANOMExtractor) Extract(payload *models.Payload, query *models.Query) ([]models.CandidateRecord, error) {
	doc, err := parseDoc(payload)
	if err != nil {
		return nil, err
	}

	content := payload.Text()
	if strings.Contains(content, "basebagne") {
		return e.extractBagne(doc, query), nil
	}
	if strings.Contains(content, "regmatmil") {
		return e.extractMilitary(doc), nil
	}
	records := e.extractBagne(doc, query)
	if len(records) == 0 {
		records = e.extractMilitary(doc)
	}
	return records, nil
}

// extractBagne reads notice blocks from the penal-colony database.
func (e *ANOMExtractor) extractBagne(doc *goquery.Document, query *models.Query) []models.CandidateRecord {
	var records []models.CandidateRecord
	doc.Find("div.type-notice-basebagne, div.notice").EachWithBreak(func(_ int, notice *goquery.Selection) bool {
		name := cleanText(notice.Find("h2, h3, a").First().Text())
		if name == "" {
			return true
		}

		var url string
		if href, ok := notice.Find("a[href]").First().Attr("href"); ok {
			url = absoluteURL("https://recherche-anom.culture.gouv.fr", href)
		}

		records = append(records, models.CandidateRecord{
			Name:       name,
			BirthYear:  firstYear(notice.Text()),
			BirthPlace: query.Location,
			URL:        url,
			RawData:    map[string]any{"database": "bagne"},
		})
		return len(records) < maxRecords
	})
	return records
}

// extractMilitary reads matricule result rows. Birth details live in the
// row's title attribute, not its cells.
func (e *ANOMExtractor) extractMilitary(doc *goquery.Document) []models.CandidateRecord {
	var records []models.CandidateRecord
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		class, _ := row.Attr("class")
		onclick, _ := row.Attr("onclick")
		if !anomRowClass.MatchString(class) || onclick == "" {
			return true
		}

		cells := row.Find("td")
		if cells.Length() < 6 {
			return true
		}
		surname := cleanText(cells.Eq(2).Text())
		if surname == "" {
			return true
		}
		givenNames := cleanText(cells.Eq(3).Text())

		name := surname
		if givenNames != "" {
			name = surname + ", " + givenNames
		}

		var url string
		if m := anomDetailClef.FindStringSubmatch(onclick); m != nil {
			url = anomMilitaryURL + "/osd.php?clef=" + m[1]
		}

		title, _ := row.Attr("title")
		var birthYear *int
		var birthPlace string
		if m := anomBirthDate.FindStringSubmatch(title); m != nil {
			birthYear = firstYear(m[1])
		}
		if m := anomBirthDept.FindStringSubmatch(title); m != nil {
			birthPlace = cleanText(m[1])
		}

		raw := map[string]any{"database": "military"}
		if cells.Length() > 6 {
			if territoire := cleanText(cells.Eq(6).Text()); territoire != "" {
				raw["territory"] = territoire
			}
		}
		if matricule := cleanText(cells.Eq(5).Text()); matricule != "" {
			raw["matricule"] = matricule
		}

		records = append(records, models.CandidateRecord{
			Name:       name,
			BirthYear:  birthYear,
			BirthPlace: birthPlace,
			URL:        url,
			RawData:    raw,
		})
		return len(records) < maxRecords
	})
	return records
}
