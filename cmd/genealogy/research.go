package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pmilano1/genealogy-extractors/internal/browser"
	"github.com/pmilano1/genealogy-extractors/internal/extractors"
	"github.com/pmilano1/genealogy-extractors/internal/gazetteer"
	"github.com/pmilano1/genealogy-extractors/internal/orchestrator"
	"github.com/pmilano1/genealogy-extractors/internal/roster"
)

// runResearch is the default action: walk the roster and search sources.
func runResearch(ctx context.Context, e *env) int {
	if *flagLimit <= 0 && !*flagAll {
		fmt.Println("Refusing to walk the whole roster without --all; use --limit N for a bounded run.")
		return 1
	}

	registry, err := extractors.NewRegistry(e.logger)
	if err != nil {
		e.logger.Error().Err(err).Msg("Source catalog failed validation")
		return 1
	}

	rosterClient, err := roster.NewClient(e.config.API, e.logger)
	if err != nil {
		e.logger.Error().Err(err).Msg("Roster unavailable")
		return 1
	}

	browserClient, err := browser.NewClient(e.config.ChromeDebugURL(), e.config.Browser.MaxTabs, e.logger)
	if err != nil {
		e.logger.Error().Err(err).Msg("Browser unavailable; start Chrome with --remote-debugging-port and retry")
		return 1
	}
	defer browserClient.Close()

	resolver, err := gazetteer.NewResolver()
	if err != nil {
		e.logger.Warn().Err(err).Msg("Gazetteer unavailable, location-resolved sources fall back to plain URLs")
		resolver = nil
	}

	opts := orchestrator.Options{
		Limit:      *flagLimit,
		MinScore:   e.config.Research.MinScore,
		Sequential: *flagSequential,
		Workers:    e.config.Research.Workers,
		Verbose:    *flagVerbose,
	}
	if *flagSource != "" {
		opts.Sources = []string{*flagSource}
	}
	if *flagAll {
		opts.Limit = 0
	}

	orch := orchestrator.New(
		registry, e.tracker, e.store, e.journal,
		orchestrator.NewLiveFetcher(browserClient, e.logger),
		resolver, e.logger, opts,
	)

	summary, err := orch.Run(ctx, rosterClient.People())
	if err != nil && !orchestrator.IsCancelled(err) {
		e.logger.Error().Err(err).Msg("Research run failed")
		return 1
	}
	if summary == nil {
		return 1
	}

	printRunSummary(summary)
	if errors.Is(err, context.Canceled) {
		fmt.Println("\nInterrupted; progress up to this point is saved.")
	}
	if summary.HadFatalErrors() {
		return 1
	}
	return 0
}

func printRunSummary(s *orchestrator.Summary) {
	fmt.Println()
	fmt.Println("Run summary")
	fmt.Printf("  people processed:  %d\n", s.Processed)
	fmt.Printf("  people skipped:    %d\n", s.Skipped)
	fmt.Printf("  source searches:   %d\n", s.Searched)
	fmt.Printf("  findings staged:   %d\n", s.Staged)
	fmt.Printf("  errors:            %d\n", s.Errors)
	fmt.Printf("  elapsed:           %s\n", s.Elapsed.Round(time.Second))

	if len(s.BotChecks) > 0 {
		fmt.Printf("\nBot checks hit on: %s\n", strings.Join(dedupe(s.BotChecks), ", "))
		fmt.Println("Solve the challenge in the open browser tab, then re-run; those searches were not marked done.")
	}
	if len(s.DailyLimited) > 0 {
		fmt.Printf("\nDaily limit reached on: %s (retry tomorrow)\n", strings.Join(dedupe(s.DailyLimited), ", "))
	}
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	var out []string
	for _, k := range keys {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}
