package main

import (
	"context"
	"fmt"

	"github.com/pmilano1/genealogy-extractors/internal/roster"
)

// runSubmitApproved pushes approved findings to the roster, one at a time.
// Each successful submission removes the finding from staging, so a crash
// mid-batch resumes cleanly.
func runSubmitApproved(ctx context.Context, e *env) int {
	approved, err := e.store.GetApproved(ctx)
	if err != nil {
		e.logger.Error().Err(err).Msg("Failed to load approved findings")
		return 1
	}
	if len(approved) == 0 {
		fmt.Println("No approved findings to submit.")
		return 0
	}

	client, err := roster.NewClient(e.config.API, e.logger)
	if err != nil {
		e.logger.Error().Err(err).Msg("Roster unavailable")
		return 1
	}

	if !confirm(fmt.Sprintf("Submit %d approved finding(s) to the roster", len(approved))) {
		fmt.Println("Aborted.")
		return 0
	}

	submitted, failed := 0, 0
	for i := range approved {
		f := &approved[i]
		result, err := client.SubmitResearch(ctx, roster.FindingToRequest(f))
		if err != nil {
			failed++
			e.logger.Error().
				Err(err).
				Int64("id", f.ID).
				Str("person", f.PersonName).
				Msg("Submission failed, finding stays approved")
			continue
		}

		if err := e.store.MarkSubmitted(ctx, f.ID); err != nil {
			e.logger.Warn().Err(err).Int64("id", f.ID).Msg("Submitted but not removed from staging")
		}
		submitted++

		e.logger.Info().
			Int64("id", f.ID).
			Str("person", f.PersonName).
			Str("source", f.SourceKey).
			Int("changes", len(result.ChangesMade)).
			Msg("Finding submitted")
	}

	fmt.Printf("\nSubmitted %d, failed %d.\n", submitted, failed)
	if failed > 0 {
		return 1
	}
	return 0
}
