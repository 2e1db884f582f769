package cmd

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/memoryleak07/GFScraper/internal/clock/system"
	"github.com/memoryleak07/GFScraper/internal/engine"
	"github.com/memoryleak07/GFScraper/internal/fetcher/headless"
	"github.com/memoryleak07/GFScraper/internal/metrics"
	"github.com/memoryleak07/GFScraper/internal/runner"
	"github.com/memoryleak07/GFScraper/internal/store"
	"github.com/memoryleak07/GFScraper/internal/store/postgres"
)

func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Runs a full scrape of the configured search space",
		Long: `Enumerates every origin/destination/date combination from the
configuration, fetches each Google Flights page concurrently, and writes
results into a fresh folder under the results directory. Interrupting the
run (Ctrl-C) stops dispatching new searches; searches already in flight
finish and their results are kept.`,
		RunE: runScrapeCommand,
	}
}

func runScrapeCommand(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Search.FirstDeparture == "" || cfg.Search.LastDeparture == "" {
		return fmt.Errorf("search.first_departure and search.last_departure are required")
	}
	spec, err := cfg.Search.Spec()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		metrics.Init()
		startMetricsListener(cfg.Metrics.Addr, logger)
	}

	clk := system.New()
	runID := uuid.NewString()

	fileStore, err := store.New(store.Config{
		BaseDir: cfg.Storage.ResultsDir,
		Fields:  headless.Fields(),
	}, clk, logger)
	if err != nil {
		return fmt.Errorf("init result store: %w", err)
	}
	logger.Info("results folder ready", zap.String("dir", fileStore.Dir()))

	sinks := []engine.Sink{fileStore}
	if cfg.Storage.Postgres.DSN != "" {
		pg, err := postgres.NewSink(ctx, postgres.Config{
			DSN:          cfg.Storage.Postgres.DSN,
			OutcomeTable: cfg.Storage.Postgres.OutcomeTable,
			SummaryTable: cfg.Storage.Postgres.SummaryTable,
		}, runID)
		if err != nil {
			return fmt.Errorf("init postgres sink: %w", err)
		}
		defer pg.Close()
		sinks = append(sinks, pg)
	}

	factory := headless.NewFactory(headless.Config{
		Headless:          cfg.Scraper.Headless,
		UserAgent:         cfg.Scraper.UserAgent,
		ChromePath:        cfg.Scraper.ChromePath,
		NavigationTimeout: cfg.Scraper.NavTimeout(),
	}, logger)
	defer factory.Close()

	r := runner.New(runID, spec, factory, clk, sinks, engine.Config{
		Workers:     cfg.Scraper.Concurrency,
		MaxAttempts: cfg.Scraper.MaxAttempts,
		Backoff:     cfg.Scraper.Backoff(),
	}, logger)

	if _, err := r.Run(ctx); err != nil {
		return fmt.Errorf("run scrape: %w", err)
	}
	return nil
}

func startMetricsListener(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics listener started", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics listener stopped", zap.Error(err))
		}
	}()
}
