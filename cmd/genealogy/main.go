package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/pmilano1/genealogy-extractors/internal/common"
	"github.com/pmilano1/genealogy-extractors/internal/dedup"
	"github.com/pmilano1/genealogy-extractors/internal/errlog"
	"github.com/pmilano1/genealogy-extractors/internal/staging"
	"github.com/pmilano1/genealogy-extractors/internal/storage"
)

var (
	flagConfig     = flag.String("config", "", "Configuration file path")
	flagConfigC    = flag.String("c", "", "Configuration file path (shorthand)")
	flagLimit      = flag.Int("limit", 0, "Cap people processed per run")
	flagAll        = flag.Bool("all", false, "Process the whole roster (no cap)")
	flagSource     = flag.String("source", "", "Restrict to one source key")
	flagMinScore   = flag.Float64("min-score", 0, "Staging score threshold (default from config)")
	flagSequential = flag.Bool("sequential", false, "Disable parallel source workers")
	flagWorkers    = flag.Int("workers", 0, "Max parallel workers (default from config)")
	flagVerbose    = flag.Bool("verbose", false, "Verbose progress output")
	flagVerboseV   = flag.Bool("v", false, "Verbose progress output (shorthand)")
	flagReview     = flag.Bool("review", false, "Interactively review pending findings")
	flagSummary    = flag.Bool("summary", false, "Print staging summary counts")
	flagSubmit     = flag.Bool("submit-approved", false, "Push approved findings to the roster")
	flagStats      = flag.Bool("stats", false, "Print search-log totals")
	flagReset      = flag.Bool("reset", false, "Clear the search log")
	flagErrors     = flag.Bool("errors", false, "Print error-journal summary")
	flagSchedule   = flag.String("schedule", "", "Cron expression; run research on this schedule")
	flagVersion    = flag.Bool("version", false, "Print version information")
)

// env bundles the shared services every action needs.
type env struct {
	config  *common.Config
	logger  arbor.ILogger
	backend storage.Backend
	tracker *dedup.Tracker
	store   *staging.Store
	journal *errlog.Journal
}

func main() {
	flag.Parse()

	if *flagVersion {
		fmt.Printf("genealogy-extractors %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	configPath := *flagConfig
	if configPath == "" {
		configPath = *flagConfigC
	}
	if *flagVerboseV {
		*flagVerbose = true
	}

	config := common.LoadConfig(configPath)
	if *flagMinScore > 0 {
		config.Research.MinScore = *flagMinScore
	}
	if *flagWorkers > 0 {
		config.Research.Workers = *flagWorkers
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := storage.NewBackend(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open storage backend")
	}
	defer backend.Close()
	if err := storage.EnsureSchema(ctx, backend); err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize schema")
	}

	e := &env{
		config:  config,
		logger:  logger,
		backend: backend,
		tracker: dedup.NewTracker(backend, logger),
		store:   staging.NewStore(backend, logger),
		journal: errlog.NewJournal(common.ConfigDir(), logger),
	}

	os.Exit(dispatch(ctx, e))
}

// dispatch picks exactly one action per invocation; research is the default.
func dispatch(ctx context.Context, e *env) int {
	switch {
	case *flagReview:
		return runReview(ctx, e)
	case *flagSummary:
		return runSummary(ctx, e)
	case *flagSubmit:
		return runSubmitApproved(ctx, e)
	case *flagStats:
		return runStats(ctx, e)
	case *flagReset:
		return runReset(ctx, e)
	case *flagErrors:
		return runErrors(e)
	case *flagSchedule != "":
		return runScheduled(ctx, e)
	default:
		return runResearch(ctx, e)
	}
}

// runScheduled repeats the research action on a cron schedule until
// interrupted.
func runScheduled(ctx context.Context, e *env) int {
	c := cron.New()
	_, err := c.AddFunc(*flagSchedule, func() {
		e.logger.Info().Str("schedule", *flagSchedule).Msg("Scheduled research run starting")
		runResearch(ctx, e)
	})
	if err != nil {
		e.logger.Error().Err(err).Str("schedule", *flagSchedule).Msg("Invalid cron expression")
		return 1
	}

	c.Start()
	e.logger.Info().Str("schedule", *flagSchedule).Msg("Scheduler started, waiting for interrupt")
	<-ctx.Done()
	<-c.Stop().Done()
	return 0
}

// confirm asks a yes/no question on stdin.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	var answer string
	if _, err := fmt.Scanln(&answer); err != nil {
		return false
	}
	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
}
