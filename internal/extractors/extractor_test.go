package extractors

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmilano1/genealogy-extractors/internal/common"
	"github.com/pmilano1/genealogy-extractors/internal/models"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(raw)
}

func TestFindAGraveExtract(t *testing.T) {
	payload := models.HTMLPayload("https://www.findagrave.com/memorial/search",
		loadFixture(t, "findagrave_johnson_mary.html"))
	query := &models.Query{Surname: "Johnson", GivenName: "Mary", BirthYear: 1870}

	records, err := (&FindAGraveExtractor{}).Extract(payload, query)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "Mary Johnson", first.Name)
	require.NotNil(t, first.BirthYear)
	assert.Equal(t, 1870, *first.BirthYear)
	require.NotNil(t, first.DeathYear)
	assert.Equal(t, 1942, *first.DeathYear)
	assert.Equal(t, "https://www.findagrave.com/memorial/12345678/mary-johnson", first.URL)
	assert.Equal(t, "12345678", first.RawData["memorial_id"])
	assert.Equal(t, "Oak Hill Cemetery", first.RawData["cemetery"])
	assert.Contains(t, first.BirthPlace, "Springfield")

	second := records[1]
	assert.Equal(t, "Mary A Johnson", second.Name)
	require.NotNil(t, second.BirthYear)
	assert.Equal(t, 1872, *second.BirthYear)
}

func TestGeneanetExtract(t *testing.T) {
	payload := models.HTMLPayload("https://en.geneanet.org/fonds/individus/",
		loadFixture(t, "geneanet_dubois_marie.html"))
	query := &models.Query{Surname: "Dubois", GivenName: "Marie", BirthYear: 1880}

	records, err := (&GeneanetExtractor{}).Extract(payload, query)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "DUBOIS Marie", first.Name)
	require.NotNil(t, first.BirthYear)
	assert.Equal(t, 1880, *first.BirthYear)
	require.NotNil(t, first.DeathYear)
	assert.Equal(t, 1945, *first.DeathYear)
	assert.Equal(t, "Lyon, Rhône", first.BirthPlace)
	assert.Equal(t, "MARTIN Pierre", first.RawData["spouse"])

	second := records[1]
	assert.Equal(t, "DUBOIS Marie Louise", second.Name)
	assert.Nil(t, second.DeathYear)
}

func TestFreeBMDExtract(t *testing.T) {
	payload := models.HTMLPayload("https://www.freebmd.org.uk/cgi/search.pl",
		loadFixture(t, "freebmd_smith_john.html"))
	query := &models.Query{Surname: "Smith", GivenName: "John", BirthYear: 1880}

	records, err := (&FreeBMDExtractor{}).Extract(payload, query)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "John Smith", first.Name)
	require.NotNil(t, first.BirthYear)
	assert.Equal(t, 1880, *first.BirthYear)
	assert.Equal(t, "Lambeth", first.BirthPlace)
	assert.Equal(t, "https://www.freebmd.org.uk/cgi/search.pl", first.URL)

	second := records[1]
	assert.Equal(t, "John Henry Smith", second.Name)
	assert.Equal(t, "Islington", second.BirthPlace)
}

func TestWikiTreeExtract(t *testing.T) {
	payload := models.JSONPayload("https://api.wikitree.com/api.php",
		[]byte(loadFixture(t, "wikitree_smith_john_api.json")))
	query := &models.Query{Surname: "Smith", GivenName: "John", BirthYear: 1880}

	records, err := (&WikiTreeExtractor{}).Extract(payload, query)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "John Smith", first.Name)
	require.NotNil(t, first.BirthYear)
	assert.Equal(t, 1880, *first.BirthYear)
	assert.Equal(t, "London, England", first.BirthPlace)
	assert.Equal(t, "https://www.wikitree.com/wiki/Smith-269952", first.URL)

	// Surname recovered from the wiki id when LastNameAtBirth is empty.
	second := records[1]
	assert.Equal(t, "John Smith", second.Name)
	assert.Nil(t, second.DeathYear)
}

func TestWikiTreeBuildSearchURL(t *testing.T) {
	url := (&WikiTreeExtractor{}).BuildSearchURL(&models.Query{
		Surname: "Smith", GivenName: "John", BirthYear: 1883,
	})
	assert.Contains(t, url, "action=searchPerson")
	assert.Contains(t, url, "LastName=Smith")
	assert.Contains(t, url, "FirstName=John")
	assert.Contains(t, url, "BirthDate=1883")
	assert.Contains(t, url, "BirthDateDecade=1880s")
}

func TestMatchIDExtract(t *testing.T) {
	payload := models.JSONPayload("https://deces.matchid.io/deces/api/v1/search",
		[]byte(loadFixture(t, "matchid_sample.json")))
	query := &models.Query{Surname: "Dupont", GivenName: "Marie", BirthYear: 1920}

	records, err := (&MatchIDExtractor{}).Extract(payload, query)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "Dupont, Marie Louise", first.Name)
	require.NotNil(t, first.BirthYear)
	assert.Equal(t, 1920, *first.BirthYear)
	require.NotNil(t, first.DeathYear)
	assert.Equal(t, 1998, *first.DeathYear)
	assert.Equal(t, "Lyon", first.BirthPlace)
	assert.Equal(t, "Villeurbanne", first.DeathPlace) // first of the variant list
	assert.Equal(t, 0.92, first.RawData["api_score"])
	assert.Equal(t, "https://deces.matchid.io/id/abc123", first.URL)
}

func TestMatchIDBuildSearchURL(t *testing.T) {
	url := (&MatchIDExtractor{}).BuildSearchURL(&models.Query{
		Surname: "Dupont", GivenName: "Marie", BirthYear: 1920,
	})
	assert.Contains(t, url, "Dupont+Marie+1920")
	assert.Contains(t, url, "size=20")
}

// failingExtractor simulates a parser whose selectors no longer match.
type failingExtractor struct{ panics bool }

func (f *failingExtractor) Extract(payload *models.Payload, query *models.Query) ([]models.CandidateRecord, error) {
	if f.panics {
		panic("selector gone")
	}
	return nil, errors.New("layout changed")
}

type emptyExtractor struct{}

func (emptyExtractor) Extract(*models.Payload, *models.Query) ([]models.CandidateRecord, error) {
	return nil, nil
}

func TestExtractWithFallbackOnError(t *testing.T) {
	logger := common.GetLogger()
	payload := models.HTMLPayload("https://example.org/search", "<html></html>")
	query := &models.Query{Surname: "Smith"}

	records := ExtractWithFallback(&failingExtractor{}, "geneanet", payload, query, logger)
	require.Len(t, records, 1)
	assert.True(t, records[0].IsSentinel())
	assert.Equal(t, models.SentinelScore, records[0].MatchScore)
	assert.Equal(t, "https://example.org/search", records[0].URL)
}

func TestExtractWithFallbackOnPanic(t *testing.T) {
	logger := common.GetLogger()
	payload := models.HTMLPayload("https://example.org/search", "<html></html>")

	records := ExtractWithFallback(&failingExtractor{panics: true}, "geneanet", payload, &models.Query{Surname: "Smith"}, logger)
	require.Len(t, records, 1)
	assert.True(t, records[0].IsSentinel())
}

func TestExtractWithFallbackEmptyWithResultsIndicator(t *testing.T) {
	logger := common.GetLogger()
	payload := models.HTMLPayload("https://example.org/search",
		"<html><body><h2>37 results found</h2></body></html>")

	records := ExtractWithFallback(emptyExtractor{}, "geneanet", payload, &models.Query{Surname: "Smith"}, logger)
	require.Len(t, records, 1)
	assert.True(t, records[0].IsSentinel())
}

func TestExtractWithFallbackEmptyNoIndicator(t *testing.T) {
	logger := common.GetLogger()
	payload := models.HTMLPayload("https://example.org/search",
		"<html><body><p>Nothing matched your search.</p></body></html>")

	records := ExtractWithFallback(emptyExtractor{}, "geneanet", payload, &models.Query{Surname: "Smith"}, logger)
	assert.Empty(t, records)
}

func TestExtractWithFallbackScoresRecords(t *testing.T) {
	logger := common.GetLogger()
	payload := models.HTMLPayload("https://www.findagrave.com/memorial/search",
		loadFixture(t, "findagrave_johnson_mary.html"))
	query := &models.Query{Surname: "Johnson", GivenName: "Mary", BirthYear: 1870}

	records := ExtractWithFallback(&FindAGraveExtractor{}, "findagrave", payload, query, logger)
	require.NotEmpty(t, records)
	for _, rec := range records {
		assert.Equal(t, "findagrave", rec.Source)
		assert.GreaterOrEqual(t, rec.MatchScore, 0)
		assert.LessOrEqual(t, rec.MatchScore, 100)
	}
	// Exact name and year should rank near the top of the scale.
	assert.GreaterOrEqual(t, records[0].MatchScore, 90)
}
