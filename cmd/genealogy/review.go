package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pmilano1/genealogy-extractors/internal/models"
)

// runReview walks pending findings one by one and records the verdicts.
func runReview(ctx context.Context, e *env) int {
	pending, err := e.store.GetPending(ctx, 0)
	if err != nil {
		e.logger.Error().Err(err).Msg("Failed to load pending findings")
		return 1
	}
	if len(pending) == 0 {
		fmt.Println("No pending findings to review.")
		return 0
	}

	fmt.Printf("%d pending finding(s). Commands: [a]pprove, [r]eject, [s]kip, [q]uit\n\n", len(pending))
	reader := bufio.NewReader(os.Stdin)

	for i := range pending {
		f := &pending[i]
		printFinding(i+1, len(pending), f)

		verdict, notes, ok := readVerdict(reader)
		if !ok {
			fmt.Println("Review stopped; remaining findings stay pending.")
			return 0
		}

		switch verdict {
		case "a":
			if err := e.store.Approve(ctx, f.ID, notes); err != nil {
				e.logger.Error().Err(err).Int64("id", f.ID).Msg("Approve failed")
			}
		case "r":
			if err := e.store.Reject(ctx, f.ID, notes); err != nil {
				e.logger.Error().Err(err).Int64("id", f.ID).Msg("Reject failed")
			}
		}
	}

	fmt.Println("\nReview complete. Use --submit-approved to push approved findings.")
	return 0
}

func printFinding(n, total int, f *models.StagedFinding) {
	rec := &f.ExtractedRecord
	fmt.Printf("[%d/%d] #%d  %s  (score %.0f)\n", n, total, f.ID, f.SourceKey, f.MatchScore)
	fmt.Printf("  person:    %s (%s)\n", f.PersonName, f.PersonID)
	fmt.Printf("  candidate: %s\n", rec.Name)
	if rec.BirthYear != nil {
		fmt.Printf("  born:      %d  %s\n", *rec.BirthYear, rec.BirthPlace)
	} else if rec.BirthPlace != "" {
		fmt.Printf("  born:      %s\n", rec.BirthPlace)
	}
	if rec.DeathYear != nil {
		fmt.Printf("  died:      %d  %s\n", *rec.DeathYear, rec.DeathPlace)
	}
	if rec.URL != "" {
		fmt.Printf("  url:       %s\n", rec.URL)
	}
	if rec.IsSentinel() {
		fmt.Printf("  note:      parser fallback; inspect the URL manually\n")
	}
}

// readVerdict prompts until it gets a recognised command. Approve and
// reject may carry a free-text note after the letter.
func readVerdict(reader *bufio.Reader) (verdict, notes string, ok bool) {
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", false
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		cmd := strings.ToLower(line[:1])
		rest := strings.TrimSpace(line[1:])
		switch cmd {
		case "a", "r":
			return cmd, rest, true
		case "s":
			return "s", "", true
		case "q":
			return "", "", false
		default:
			fmt.Println("Enter a (approve), r (reject), s (skip) or q (quit).")
		}
	}
}
