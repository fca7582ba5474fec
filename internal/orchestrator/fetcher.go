package orchestrator

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/pmilano1/genealogy-extractors/internal/browser"
	"github.com/pmilano1/genealogy-extractors/internal/models"
	"github.com/pmilano1/genealogy-extractors/internal/ratelimit"
)

// Fetcher abstracts payload retrieval so the run loop is testable without a
// live browser or network.
type Fetcher interface {
	FetchRendered(ctx context.Context, sourceKey, url, waitSelector string) (*models.Payload, error)
	SubmitForm(ctx context.Context, sourceKey string, form browser.FormSearch) (*models.Payload, error)
	FetchJSON(ctx context.Context, sourceKey, url string) (*models.Payload, error)
}

// LiveFetcher routes rendered and form fetches through the shared browser
// and JSON API calls through plain HTTP.
type LiveFetcher struct {
	browser *browser.Client
	http    *http.Client
	logger  arbor.ILogger
}

// NewLiveFetcher wires the real transports.
func NewLiveFetcher(b *browser.Client, logger arbor.ILogger) *LiveFetcher {
	return &LiveFetcher{
		browser: b,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

func (f *LiveFetcher) FetchRendered(ctx context.Context, sourceKey, url, waitSelector string) (*models.Payload, error) {
	return f.browser.FetchRendered(ctx, sourceKey, url, waitSelector)
}

func (f *LiveFetcher) SubmitForm(ctx context.Context, sourceKey string, form browser.FormSearch) (*models.Payload, error) {
	return f.browser.SubmitForm(ctx, sourceKey, form, f.logger)
}

// FetchJSON performs a direct API GET. A 429 surfaces as a retryable error
// carrying the server's Retry-After hint.
func (f *LiveFetcher) FetchJSON(ctx context.Context, sourceKey, url string) (*models.Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "genealogy-extractors/1.0")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &ratelimit.RetryAfterError{
			Err:        fmt.Errorf("%s returned 429", sourceKey),
			RetryAfter: ratelimit.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %d", sourceKey, resp.StatusCode)
	}

	return models.JSONPayload(url, body), nil
}
