package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pmilano1/genealogy-extractors/internal/browser"
	"github.com/pmilano1/genealogy-extractors/internal/errlog"
	"github.com/pmilano1/genealogy-extractors/internal/extractors"
	"github.com/pmilano1/genealogy-extractors/internal/models"
)

const freebmdSearchURL = "https://www.freebmd.org.uk/cgi/search.pl"

// freebmdOverflowPhrase appears when a search matches more index entries
// than the site will render.
const freebmdOverflowPhrase = "maximum number that can be displayed is 3000"

// apiURLBuilder is implemented by extractors whose source is a JSON API.
type apiURLBuilder interface {
	BuildSearchURL(query *models.Query) string
}

// searchSource runs one (person, source) search end to end: rate limit,
// fetch with retry, extract, classify.
func (o *Orchestrator) searchSource(ctx context.Context, person *models.Person, query *models.Query, sourceKey string) models.Outcome {
	start := time.Now()
	outcome := models.Outcome{SourceKey: sourceKey}

	src := o.registry.Get(sourceKey)
	if src == nil || src.Extractor == nil {
		outcome.Err = fmt.Errorf("source %q has no extractor", sourceKey)
		outcome.ErrType = models.ErrTypeUnknown
		return outcome
	}

	if err := o.limiter.Wait(ctx, sourceKey); err != nil {
		outcome.Err = err
		outcome.ErrType = models.ErrTypeUnknown
		return outcome
	}

	var payload *models.Payload
	err := o.retry.Execute(ctx, o.logger, sourceKey, func() error {
		var ferr error
		payload, ferr = o.fetch(ctx, src, query)
		return ferr
	})
	outcome.Elapsed = time.Since(start)

	if err != nil {
		var botCheck *browser.BotCheckError
		var dailyLimit *browser.DailyLimitError
		switch {
		case errors.As(err, &botCheck):
			outcome.BotCheck = true
			outcome.Err = err
			outcome.ErrType = models.ErrTypeBotCheck
		case errors.As(err, &dailyLimit):
			outcome.DailyLimit = true
			outcome.Err = err
			outcome.ErrType = models.ErrTypeDailyLimit
		default:
			outcome.Err = err
			outcome.ErrType = errlog.ClassifyError(err)
		}
		return outcome
	}

	outcome.Records = extractors.ExtractWithFallback(src.Extractor, sourceKey, payload, query, o.logger)
	outcome.Elapsed = time.Since(start)
	return outcome
}

// fetch retrieves the raw payload using the source's access model.
func (o *Orchestrator) fetch(ctx context.Context, src *extractors.Source, query *models.Query) (*models.Payload, error) {
	desc := &src.Descriptor

	switch desc.Access {
	case models.AccessJSONAPI:
		builder, ok := src.Extractor.(apiURLBuilder)
		if !ok {
			return nil, fmt.Errorf("source %q declares an API but builds no URL", desc.Key)
		}
		return o.fetcher.FetchJSON(ctx, desc.Key, builder.BuildSearchURL(query))

	case models.AccessFormSubmit:
		return o.fetchFreeBMD(ctx, query)

	default:
		url := o.registry.BuildURL(desc, query, o.resolver)
		return o.fetcher.FetchRendered(ctx, desc.Key, url, desc.WaitForSelector)
	}
}

// fetchFreeBMD fills the civil-registration search form. A result overflow
// narrows the year range to the start year and retries once; a second
// overflow returns the page as-is, yielding however many rows it shows.
func (o *Orchestrator) fetchFreeBMD(ctx context.Context, query *models.Query) (*models.Payload, error) {
	start := query.BirthYear
	end := start + 2
	if query.DeathYear > 0 && query.DeathYear < end {
		end = query.DeathYear
	}

	payload, err := o.submitFreeBMDForm(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	if strings.Contains(strings.ToLower(payload.Text()), freebmdOverflowPhrase) && end > start {
		o.logger.Debug().
			Str("source", "freebmd").
			Int("start", start).
			Msg("Result overflow, narrowing year range")
		return o.submitFreeBMDForm(ctx, query, start, start)
	}
	return payload, nil
}

func (o *Orchestrator) submitFreeBMDForm(ctx context.Context, query *models.Query, start, end int) (*models.Payload, error) {
	form := browser.FormSearch{
		URL:    freebmdSearchURL,
		Checks: []string{"input#typeBirths"},
		Fields: []browser.FormField{
			{Selector: `input[name="surname"]`, Value: query.Surname},
			{Selector: `input[name="given"]`, Value: query.GivenName},
			{Selector: `input[name="start"]`, Value: strconv.Itoa(start)},
			{Selector: `input[name="end"]`, Value: strconv.Itoa(end)},
		},
		SubmitSelector: `input[name="find"]`,
	}
	return o.fetcher.SubmitForm(ctx, "freebmd", form)
}
