package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmilano1/genealogy-extractors/internal/common"
	"github.com/pmilano1/genealogy-extractors/internal/models"
)

const testAPIKey = "test-key-123"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(common.APIConfig{Endpoint: srv.URL, Key: testAPIKey}, common.GetLogger())
	require.NoError(t, err)
	return client
}

// decodeGraphQL reads the posted GraphQL document and variables, failing the
// test on a missing or wrong API key.
func decodeGraphQL(t *testing.T, r *http.Request) (string, map[string]any) {
	t.Helper()
	assert.Equal(t, testAPIKey, r.Header.Get("X-API-Key"))
	assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	return req.Query, req.Variables
}

func wireNode(id, given, surname string, birthYear int) string {
	return fmt.Sprintf(`{"node": {
		"id": %q, "name_full": "%s %s", "name_given": %q, "name_surname": %q,
		"birth_year": %d, "birth_place": "Lyon", "country": "France", "sex": "F"
	}}`, id, given, surname, given, surname, birthYear)
}

func TestClientRequiresConfig(t *testing.T) {
	_, err := NewClient(common.APIConfig{}, common.GetLogger())
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewClient(common.APIConfig{Endpoint: "https://roster.example.org"}, common.GetLogger())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestPersonIteratorPaginates(t *testing.T) {
	var afterValues []any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query, vars := decodeGraphQL(t, r)
		assert.Contains(t, query, "people(first:")
		afterValues = append(afterValues, vars["after"])

		if vars["after"] == nil {
			fmt.Fprintf(w, `{"data": {"people": {
				"edges": [%s, %s],
				"pageInfo": {"hasNextPage": true, "endCursor": "cur-2", "totalCount": 3}
			}}}`, wireNode("p1", "Marie", "Dubois", 1880), wireNode("p2", "Jean", "Martin", 1875))
			return
		}
		assert.Equal(t, "cur-2", vars["after"])
		fmt.Fprintf(w, `{"data": {"people": {
			"edges": [%s],
			"pageInfo": {"hasNextPage": false, "endCursor": "cur-3", "totalCount": 3}
		}}}`, wireNode("p3", "Anne", "Bernard", 1890))
	})

	ctx := context.Background()
	it := client.People()

	var people []models.Person
	for {
		p, ok, err := it.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		people = append(people, p)
	}

	require.Len(t, people, 3)
	assert.Equal(t, []string{"p1", "p2", "p3"},
		[]string{people[0].ID, people[1].ID, people[2].ID})
	assert.Equal(t, "Marie", people[0].GivenName)
	assert.Equal(t, "Dubois", people[0].Surname)
	require.NotNil(t, people[0].BirthYear)
	assert.Equal(t, 1880, *people[0].BirthYear)
	assert.Equal(t, 3, it.Total())
	assert.Len(t, afterValues, 2)
}

func TestPersonIteratorEmptyRoster(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": {"people": {
			"edges": [],
			"pageInfo": {"hasNextPage": false, "endCursor": "", "totalCount": 0}
		}}}`)
	})

	_, ok, err := client.People().Next(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExecuteSurfacesGraphQLErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": null, "errors": [{"message": "invalid api key"}]}`)
	})

	_, _, err := client.People().Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestExecuteSurfacesHTTPErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	})

	_, _, err := client.People().Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestGetPerson(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, vars := decodeGraphQL(t, r)
		assert.Equal(t, "p42", vars["id"])
		fmt.Fprint(w, `{"data": {"person": {
			"id": "p42", "name_given": "Pierre", "name_surname": "Durand",
			"estimated_birth_year": 1862, "death_year": 1921, "country": "France"
		}}}`)
	})

	p, err := client.GetPerson(context.Background(), "p42")
	require.NoError(t, err)
	assert.Equal(t, "Durand", p.Surname)
	year, ok := p.ResolvedBirthYear()
	assert.True(t, ok)
	assert.Equal(t, 1862, year)
}

func TestGetPersonNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": {"person": null}}`)
	})

	_, err := client.GetPerson(context.Background(), "missing")
	assert.Error(t, err)
}

func TestSubmitResearch(t *testing.T) {
	var gotInput map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query, vars := decodeGraphQL(t, r)
		assert.Contains(t, query, "submitResearch")
		gotInput = vars["input"].(map[string]any)
		fmt.Fprint(w, `{"data": {"submitResearch": {
			"success": true,
			"changes_made": ["birth_year set to 1880"],
			"gaps_resolved": ["birth_year"],
			"source_id": "src-9"
		}}}`)
	})

	result, err := client.SubmitResearch(context.Background(), SubmitRequest{
		PersonID:   "p1",
		Source:     SourceDoc{SourceType: "web_record", SourceName: "findagrave", SourceURL: "https://example.org/m/1", Action: "research"},
		Confidence: "HIGH",
		Findings:   map[string]any{"birth_year": 1880},
		Notes:      "confirmed against memorial photo",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "src-9", result.SourceID)
	assert.Equal(t, []string{"birth_year"}, result.GapsResolved)

	assert.Equal(t, "p1", gotInput["person_id"])
	assert.Equal(t, "HIGH", gotInput["confidence"])
	assert.Equal(t, "confirmed against memorial photo", gotInput["notes"])
	agentID, _ := gotInput["agent_id"].(string)
	assert.True(t, strings.HasPrefix(agentID, "genealogy-extractors-"))
}

func TestPersonToQuery(t *testing.T) {
	p := models.Person{
		ID:         "p1",
		GivenName:  "Marie",
		Surname:    "Dubois",
		BirthYear:  models.IntPtr(1880),
		DeathYear:  models.IntPtr(1950),
		BirthPlace: "Lyon",
		DeathPlace: "Paris",
		Country:    "France",
		Region:     "Auvergne-Rhône-Alpes",
	}

	q := PersonToQuery(&p)
	assert.Equal(t, "Dubois", q.Surname)
	assert.Equal(t, "Marie", q.GivenName)
	assert.Equal(t, 1880, q.BirthYear)
	assert.Equal(t, 1950, q.DeathYear)
	assert.Equal(t, "Lyon", q.Location)
	assert.Equal(t, "France", q.Country)

	// Death place stands in when the birth place is unknown.
	p.BirthPlace = ""
	q = PersonToQuery(&p)
	assert.Equal(t, "Paris", q.Location)

	// Estimated birth year fills in for a missing recorded one.
	p.BirthYear = nil
	p.EstimatedBirthYear = models.IntPtr(1878)
	q = PersonToQuery(&p)
	assert.Equal(t, 1878, q.BirthYear)
}

func TestConfidenceForScore(t *testing.T) {
	assert.Equal(t, "HIGH", ConfidenceForScore(95))
	assert.Equal(t, "HIGH", ConfidenceForScore(90))
	assert.Equal(t, "MEDIUM", ConfidenceForScore(82))
	assert.Equal(t, "MEDIUM", ConfidenceForScore(70))
	assert.Equal(t, "LOW", ConfidenceForScore(69))
	assert.Equal(t, "LOW", ConfidenceForScore(0))
}

func TestFindingToRequest(t *testing.T) {
	finding := models.StagedFinding{
		ID:         7,
		PersonID:   "p1",
		PersonName: "Marie Dubois",
		SourceKey:  "geneanet",
		MatchScore: 92,
		Notes:      "parents visible in tree",
		ExtractedRecord: models.CandidateRecord{
			Name:       "DUBOIS Marie",
			BirthYear:  models.IntPtr(1880),
			BirthPlace: "Lyon, Rhône",
			DeathYear:  models.IntPtr(1945),
			URL:        "https://example.org/tree/1",
			RawData: map[string]any{
				"father": "DUBOIS Jean",
				"mother": "PETIT Anne",
			},
		},
	}

	req := FindingToRequest(&finding)
	assert.Equal(t, "p1", req.PersonID)
	assert.Equal(t, "geneanet", req.Source.SourceName)
	assert.Equal(t, "web_record", req.Source.SourceType)
	assert.Equal(t, "research", req.Source.Action)
	assert.Equal(t, "https://example.org/tree/1", req.Source.SourceURL)
	assert.Equal(t, "HIGH", req.Confidence)
	assert.Equal(t, 1880, req.Findings["birth_year"])
	assert.Equal(t, "Lyon, Rhône", req.Findings["birth_place"])
	assert.Equal(t, 1945, req.Findings["death_year"])
	assert.Equal(t, map[string]any{"name_full": "DUBOIS Jean"}, req.NewFather)
	assert.Equal(t, map[string]any{"name_full": "PETIT Anne"}, req.NewMother)
	assert.Equal(t, "parents visible in tree", req.Notes)
}

func TestFindingToRequestSparseRecord(t *testing.T) {
	finding := models.StagedFinding{
		PersonID:   "p2",
		SourceKey:  "freebmd",
		MatchScore: 55,
		ExtractedRecord: models.CandidateRecord{
			Name: "John Smith",
			URL:  "https://example.org/r/2",
		},
	}

	req := FindingToRequest(&finding)
	assert.Equal(t, "LOW", req.Confidence)
	assert.Nil(t, req.Findings)
	assert.Nil(t, req.NewFather)
	assert.Nil(t, req.NewMother)
}
