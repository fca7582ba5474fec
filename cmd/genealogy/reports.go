package main

import (
	"context"
	"fmt"
	"sort"
)

// runSummary prints staging counts by status and source.
func runSummary(ctx context.Context, e *env) int {
	summary, err := e.store.Summary(ctx)
	if err != nil {
		e.logger.Error().Err(err).Msg("Failed to summarize staging")
		return 1
	}

	fmt.Println("Staged findings")
	fmt.Printf("  total:    %d\n", summary.Total)
	fmt.Printf("  pending:  %d\n", summary.Pending)
	fmt.Printf("  approved: %d\n", summary.Approved)
	fmt.Printf("  rejected: %d\n", summary.Rejected)

	if len(summary.BySource) > 0 {
		fmt.Println("\nBy source:")
		for _, key := range sortedKeys(summary.BySource) {
			fmt.Printf("  %-18s %d\n", key, summary.BySource[key])
		}
	}
	return 0
}

// runStats prints search-log totals.
func runStats(ctx context.Context, e *env) int {
	stats, err := e.tracker.Stats(ctx)
	if err != nil {
		e.logger.Error().Err(err).Msg("Failed to read search log")
		return 1
	}

	fmt.Println("Search log")
	fmt.Printf("  people searched:  %d\n", stats.TotalPeople)
	fmt.Printf("  total searches:   %d\n", stats.TotalSearches)

	if len(stats.BySource) > 0 {
		fmt.Println("\nBy source:")
		for _, key := range sortedKeys(stats.BySource) {
			fmt.Printf("  %-18s %d\n", key, stats.BySource[key])
		}
	}
	return 0
}

// runReset clears the search log so the next run revisits everything.
func runReset(ctx context.Context, e *env) int {
	if !confirm("Clear the entire search log? Every source will be searched again") {
		fmt.Println("Aborted.")
		return 0
	}
	if err := e.tracker.Clear(ctx); err != nil {
		e.logger.Error().Err(err).Msg("Failed to clear search log")
		return 1
	}
	fmt.Println("Search log cleared.")
	return 0
}

// runErrors prints the error-journal summary and the newest entries.
func runErrors(e *env) int {
	summary := e.journal.Summary()

	fmt.Println("Error journal")
	fmt.Printf("  entries: %d\n", summary.TotalErrors)

	if len(summary.ByType) > 0 {
		fmt.Println("\nBy type:")
		for _, key := range sortedKeys(summary.ByType) {
			fmt.Printf("  %-14s %d\n", key, summary.ByType[key])
		}
	}
	if len(summary.TopErrors) > 0 {
		fmt.Println("\nMost frequent:")
		for _, top := range summary.TopErrors {
			fmt.Printf("  %-30s %d\n", top.Key, top.Count)
		}
	}

	recent := e.journal.Recent(5)
	if len(recent) > 0 {
		fmt.Println("\nMost recent:")
		for _, entry := range recent {
			fmt.Printf("  %s  %-14s %-14s %s\n",
				entry.Timestamp.Format("2006-01-02 15:04"),
				entry.Source, entry.ErrorType, entry.Message)
		}
	}
	return 0
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
