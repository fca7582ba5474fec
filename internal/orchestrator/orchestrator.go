// Package orchestrator runs the research loop: pull people from the
// roster, search every source not yet tried for them, and stage matches
// for human review.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/pmilano1/genealogy-extractors/internal/common"
	"github.com/pmilano1/genealogy-extractors/internal/dedup"
	"github.com/pmilano1/genealogy-extractors/internal/errlog"
	"github.com/pmilano1/genealogy-extractors/internal/extractors"
	"github.com/pmilano1/genealogy-extractors/internal/gazetteer"
	"github.com/pmilano1/genealogy-extractors/internal/models"
	"github.com/pmilano1/genealogy-extractors/internal/ratelimit"
	"github.com/pmilano1/genealogy-extractors/internal/roster"
	"github.com/pmilano1/genealogy-extractors/internal/staging"
)

const (
	// People with no known birth year are assumed mid-19th century, the
	// densest era across the record sources.
	defaultBirthYear = 1850

	// Anything earlier than this predates parish registers; searching the
	// indexed sources is pointless.
	minBirthYear = 1200

	defaultWorkers  = 16
	defaultMinScore = 80.0
)

// PersonSource yields people to research. roster.PersonIterator is the
// production implementation.
type PersonSource interface {
	Next(ctx context.Context) (models.Person, bool, error)
}

// Options configure one research run.
type Options struct {
	Sources    []string // subset of source keys; empty means all enabled
	Limit      int      // max people to process; <= 0 means unlimited
	MinScore   float64
	Sequential bool
	Workers    int
	Verbose    bool
}

// Summary is the run report printed at the end.
type Summary struct {
	Processed    int
	Skipped      int
	Searched     int
	Staged       int
	Errors       int
	BotChecks    []string
	DailyLimited []string
	Elapsed      time.Duration
}

// HadFatalErrors reports whether the process should exit non-zero.
func (s *Summary) HadFatalErrors() bool {
	return s.Errors > 0
}

// Orchestrator coordinates one research run end to end.
type Orchestrator struct {
	registry *extractors.Registry
	tracker  *dedup.Tracker
	store    *staging.Store
	journal  *errlog.Journal
	limiter  *ratelimit.Limiter
	retry    *ratelimit.RetryPolicy
	fetcher  Fetcher
	resolver *gazetteer.Resolver
	logger   arbor.ILogger
	opts     Options

	// Sources that hit their daily limit this run. Checked per person so
	// the rest of the run stops hammering them.
	skipMu  sync.Mutex
	skipSet map[string]struct{}
}

// New assembles an orchestrator. The resolver may be nil, in which case
// location-resolver sources fall back to their plain URL template.
func New(
	registry *extractors.Registry,
	tracker *dedup.Tracker,
	store *staging.Store,
	journal *errlog.Journal,
	fetcher Fetcher,
	resolver *gazetteer.Resolver,
	logger arbor.ILogger,
	opts Options,
) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.MinScore <= 0 {
		opts.MinScore = defaultMinScore
	}
	return &Orchestrator{
		registry: registry,
		tracker:  tracker,
		store:    store,
		journal:  journal,
		limiter:  ratelimit.NewLimiter(ratelimit.DefaultMinDelay),
		retry:    ratelimit.NewRetryPolicy(),
		fetcher:  fetcher,
		resolver: resolver,
		logger:   logger,
		opts:     opts,
		skipSet:  make(map[string]struct{}),
	}
}

// activeSources resolves the configured source filter against the registry.
func (o *Orchestrator) activeSources() ([]string, error) {
	if len(o.opts.Sources) == 0 {
		return o.registry.EnabledKeys(), nil
	}
	var keys []string
	for _, key := range o.opts.Sources {
		src := o.registry.Get(key)
		if src == nil {
			return nil, fmt.Errorf("unknown source %q", key)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Run processes people from the source until it is exhausted, the limit is
// reached, or ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context, people PersonSource) (*Summary, error) {
	start := time.Now()
	summary := &Summary{}

	active, err := o.activeSources()
	if err != nil {
		return nil, err
	}
	o.logger.Info().
		Str("run_id", common.NewRunID()).
		Int("sources", len(active)).
		Int("workers", o.opts.Workers).
		Bool("sequential", o.opts.Sequential).
		Msg("Starting research run")

	for {
		if o.opts.Limit > 0 && summary.Processed >= o.opts.Limit {
			break
		}
		if err := ctx.Err(); err != nil {
			summary.Elapsed = time.Since(start)
			return summary, err
		}

		person, ok, err := people.Next(ctx)
		if err != nil {
			summary.Elapsed = time.Since(start)
			return summary, fmt.Errorf("roster iteration failed: %w", err)
		}
		if !ok {
			break
		}
		summary.Processed++

		o.researchPerson(ctx, &person, active, summary)
	}

	summary.Elapsed = time.Since(start)
	o.logger.Info().
		Int("processed", summary.Processed).
		Int("skipped", summary.Skipped).
		Int("searched", summary.Searched).
		Int("staged", summary.Staged).
		Int("errors", summary.Errors).
		Dur("elapsed", summary.Elapsed).
		Msg("Research run complete")
	return summary, nil
}

// researchPerson runs every candidate source for one person.
func (o *Orchestrator) researchPerson(ctx context.Context, person *models.Person, active []string, summary *Summary) {
	query, ok := o.buildQuery(person)
	if !ok {
		summary.Skipped++
		return
	}

	candidates := o.candidateSources(ctx, person.ID, active)
	if len(candidates) == 0 {
		if o.opts.Verbose {
			o.logger.Info().
				Str("person", person.DisplayName()).
				Msg("All sources already searched, skipping")
		}
		summary.Skipped++
		return
	}

	o.logger.Info().
		Str("person", person.DisplayName()).
		Int("birth_year", query.BirthYear).
		Int("sources", len(candidates)).
		Msg("Researching person")

	var outcomes []models.Outcome
	if o.opts.Sequential || len(candidates) == 1 {
		for _, key := range candidates {
			outcomes = append(outcomes, o.searchSource(ctx, person, &query, key))
		}
	} else {
		outcomes = o.searchParallel(ctx, person, &query, candidates)
	}

	for i := range outcomes {
		o.recordOutcome(ctx, person, &query, &outcomes[i], summary)
	}
}

// searchParallel fans one worker out per source, bounded by the worker cap.
func (o *Orchestrator) searchParallel(ctx context.Context, person *models.Person, query *models.Query, candidates []string) []models.Outcome {
	outcomes := make([]models.Outcome, len(candidates))
	sem := make(chan struct{}, o.opts.Workers)
	var wg sync.WaitGroup

	for i, key := range candidates {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				outcomes[i] = models.Outcome{SourceKey: key, Err: ctx.Err(), ErrType: models.ErrTypeUnknown}
				return
			}
			outcomes[i] = o.searchSource(ctx, person, query, key)
		}(i, key)
	}
	wg.Wait()
	return outcomes
}

// buildQuery derives search parameters and applies the skip rules: no
// surname, or a birth year too ancient for any indexed source.
func (o *Orchestrator) buildQuery(person *models.Person) (models.Query, bool) {
	query := roster.PersonToQuery(person)
	if query.Surname == "" {
		if o.opts.Verbose {
			o.logger.Info().Str("id", person.ID).Msg("No surname, skipping")
		}
		return models.Query{}, false
	}

	if query.BirthYear == 0 {
		query.BirthYear = defaultBirthYear
	} else if query.BirthYear < minBirthYear {
		if o.opts.Verbose {
			o.logger.Info().
				Str("person", person.DisplayName()).
				Int("birth_year", query.BirthYear).
				Msg("Too ancient for indexed sources, skipping")
		}
		return models.Query{}, false
	}
	return query, true
}

// candidateSources is the per-person work list: unsearched sources minus
// anything that hit a daily limit earlier in this run.
func (o *Orchestrator) candidateSources(ctx context.Context, personID string, active []string) []string {
	unprocessed := o.tracker.UnprocessedSources(ctx, personID, active)

	o.skipMu.Lock()
	defer o.skipMu.Unlock()
	var out []string
	for _, key := range unprocessed {
		if _, skip := o.skipSet[key]; !skip {
			out = append(out, key)
		}
	}
	return out
}

func (o *Orchestrator) markDailyLimited(sourceKey string) {
	o.skipMu.Lock()
	defer o.skipMu.Unlock()
	o.skipSet[sourceKey] = struct{}{}
}

// recordOutcome applies the mark-processed policy: tried sources (success
// or generic error) are marked; human-gated conditions are not, so the
// next run retries them.
func (o *Orchestrator) recordOutcome(ctx context.Context, person *models.Person, query *models.Query, outcome *models.Outcome, summary *Summary) {
	summary.Searched++

	switch {
	case outcome.BotCheck:
		summary.BotChecks = append(summary.BotChecks, outcome.SourceKey)
		o.journal.LogError(outcome.SourceKey, models.ErrTypeBotCheck, outcome.Err.Error(), query, false)
		return

	case outcome.DailyLimit:
		summary.DailyLimited = append(summary.DailyLimited, outcome.SourceKey)
		o.markDailyLimited(outcome.SourceKey)
		o.journal.LogError(outcome.SourceKey, models.ErrTypeDailyLimit, outcome.Err.Error(), query, false)
		o.logger.Warn().
			Str("source", outcome.SourceKey).
			Msg("Daily limit reached, skipping source for the rest of this run")
		return

	case outcome.Err != nil:
		summary.Errors++
		o.journal.LogError(outcome.SourceKey, outcome.ErrType, outcome.Err.Error(), query, true)
		if err := o.tracker.MarkProcessed(ctx, person.ID, outcome.SourceKey, 0, true, outcome.Err.Error()); err != nil {
			o.logger.Warn().Err(err).Msg("Failed to record search error")
		}
		return
	}

	staged := 0
	for i := range outcome.Records {
		record := &outcome.Records[i]
		if float64(record.MatchScore) < o.opts.MinScore && !record.IsSentinel() {
			continue
		}
		if _, err := o.store.AddFinding(ctx, person, record, query); err != nil {
			o.logger.Warn().Err(err).Str("source", outcome.SourceKey).Msg("Failed to stage finding")
			continue
		}
		staged++
	}
	summary.Staged += staged

	if err := o.tracker.MarkProcessed(ctx, person.ID, outcome.SourceKey, len(outcome.Records), false, ""); err != nil {
		o.logger.Warn().Err(err).Msg("Failed to record search")
	}

	if o.opts.Verbose || staged > 0 {
		o.logger.Info().
			Str("person", person.DisplayName()).
			Str("source", outcome.SourceKey).
			Int("records", len(outcome.Records)).
			Int("staged", staged).
			Dur("elapsed", outcome.Elapsed).
			Msg("Source searched")
	}
}

// IsCancelled reports whether err is an operator interrupt rather than a
// real failure.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
