package roster

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/pmilano1/genealogy-extractors/internal/common"
	"github.com/pmilano1/genealogy-extractors/internal/models"
)

// ErrNotConfigured is returned when api.endpoint or api.key is missing.
var ErrNotConfigured = errors.New("roster API not configured: set api.endpoint and api.key")

const defaultPageSize = 100

// Client talks GraphQL-over-HTTP to the authoritative roster. It is the
// only component that knows the roster's wire shape; everything else works
// with models.Person.
type Client struct {
	endpoint string
	key      string
	agentID  string
	http     *http.Client
	logger   arbor.ILogger
}

// NewClient builds a roster client from the API section of the config.
func NewClient(cfg common.APIConfig, logger arbor.ILogger) (*Client, error) {
	if cfg.Endpoint == "" || cfg.Key == "" {
		return nil, ErrNotConfigured
	}
	return &Client{
		endpoint: cfg.Endpoint,
		key:      cfg.Key,
		agentID:  "genealogy-extractors-" + uuid.NewString()[:8],
		http:     &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}, nil
}

// AgentID identifies this process in roster write-backs.
func (c *Client) AgentID() string {
	return c.agentID
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// execute posts a GraphQL document and decodes the data envelope into out.
func (c *Client) execute(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.key)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("roster call: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("roster returned %d: %s", resp.StatusCode, truncate(string(payload), 200))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("roster error: %s", envelope.Errors[0].Message)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// wirePerson is the roster's person shape.
type wirePerson struct {
	ID                 string `json:"id"`
	NameFull           string `json:"name_full"`
	NameGiven          string `json:"name_given"`
	NameSurname        string `json:"name_surname"`
	BirthYear          *int   `json:"birth_year"`
	EstimatedBirthYear *int   `json:"estimated_birth_year"`
	BirthPlace         string `json:"birth_place"`
	DeathYear          *int   `json:"death_year"`
	DeathPlace         string `json:"death_place"`
	Country            string `json:"country"`
	Region             string `json:"region"`
	Sex                string `json:"sex"`
}

func (w *wirePerson) toModel() models.Person {
	return models.Person{
		ID:                 w.ID,
		FullName:           w.NameFull,
		GivenName:          w.NameGiven,
		Surname:            w.NameSurname,
		BirthYear:          w.BirthYear,
		EstimatedBirthYear: w.EstimatedBirthYear,
		BirthPlace:         w.BirthPlace,
		DeathYear:          w.DeathYear,
		DeathPlace:         w.DeathPlace,
		Country:            w.Country,
		Region:             w.Region,
		Gender:             w.Sex,
	}
}

const peopleQuery = `
query GetAllPeople($first: Int, $after: String) {
  people(first: $first, after: $after) {
    edges {
      node {
        id name_full name_given name_surname
        birth_year estimated_birth_year birth_place
        death_year death_place country region sex
      }
    }
    pageInfo { hasNextPage endCursor totalCount }
  }
}`

type peoplePage struct {
	People struct {
		Edges []struct {
			Node wirePerson `json:"node"`
		} `json:"edges"`
		PageInfo struct {
			HasNextPage bool   `json:"hasNextPage"`
			EndCursor   string `json:"endCursor"`
			TotalCount  int    `json:"totalCount"`
		} `json:"pageInfo"`
	} `json:"people"`
}

// PersonIterator walks the roster page by page in cursor order. It is
// single-consumer.
type PersonIterator struct {
	client  *Client
	cursor  string
	buf     []models.Person
	pos     int
	done    bool
	total   int
	fetched bool
}

// People returns an iterator over every person in the roster.
func (c *Client) People() *PersonIterator {
	return &PersonIterator{client: c}
}

// Total reports the roster size once the first page has been fetched.
func (it *PersonIterator) Total() int {
	return it.total
}

// Next returns the next person. The bool is false once the roster is
// exhausted.
func (it *PersonIterator) Next(ctx context.Context) (models.Person, bool, error) {
	if it.pos >= len(it.buf) {
		if it.done && it.fetched {
			return models.Person{}, false, nil
		}
		if err := it.fetchPage(ctx); err != nil {
			return models.Person{}, false, err
		}
		if len(it.buf) == 0 {
			return models.Person{}, false, nil
		}
	}
	p := it.buf[it.pos]
	it.pos++
	return p, true, nil
}

func (it *PersonIterator) fetchPage(ctx context.Context) error {
	variables := map[string]any{"first": defaultPageSize}
	if it.cursor != "" {
		variables["after"] = it.cursor
	}

	var page peoplePage
	if err := it.client.execute(ctx, peopleQuery, variables, &page); err != nil {
		return err
	}

	it.buf = it.buf[:0]
	it.pos = 0
	for _, edge := range page.People.Edges {
		it.buf = append(it.buf, edge.Node.toModel())
	}
	it.cursor = page.People.PageInfo.EndCursor
	it.done = !page.People.PageInfo.HasNextPage
	it.total = page.People.PageInfo.TotalCount
	it.fetched = true
	return nil
}

const personQuery = `
query GetPerson($id: ID!) {
  person(id: $id) {
    id name_full name_given name_surname
    birth_year estimated_birth_year birth_place
    death_year death_place country region sex
  }
}`

// GetPerson fetches a single roster entry by id.
func (c *Client) GetPerson(ctx context.Context, id string) (models.Person, error) {
	var data struct {
		Person *wirePerson `json:"person"`
	}
	if err := c.execute(ctx, personQuery, map[string]any{"id": id}, &data); err != nil {
		return models.Person{}, err
	}
	if data.Person == nil {
		return models.Person{}, fmt.Errorf("person %s not found", id)
	}
	return data.Person.toModel(), nil
}

// PersonToQuery derives the search request for a person. Birth-year
// defaulting and the ancient-person filter are the orchestrator's business,
// not handled here.
func PersonToQuery(p *models.Person) models.Query {
	q := models.Query{
		Surname:   p.Surname,
		GivenName: p.GivenName,
		Location:  p.BirthPlace,
		Country:   p.Country,
		Region:    p.Region,
	}
	if year, ok := p.ResolvedBirthYear(); ok {
		q.BirthYear = year
	}
	if p.DeathYear != nil {
		q.DeathYear = *p.DeathYear
	}
	if q.Location == "" {
		q.Location = p.DeathPlace
	}
	q.BirthPlace = p.BirthPlace
	q.DeathPlace = p.DeathPlace
	return q
}
