// Package runner coordinates a full scrape run: enumerate the search
// space, execute it, and fan outcomes out to the configured sinks.
package runner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/memoryleak07/GFScraper/internal/engine"
	"github.com/memoryleak07/GFScraper/internal/flights"
	"github.com/memoryleak07/GFScraper/internal/metrics"
)

// Runner drives one run end to end.
type Runner struct {
	runID   string
	spec    flights.SearchSpec
	factory engine.FetcherFactory
	clock   engine.Clock
	sinks   []engine.Sink
	cfg     engine.Config
	logger  *zap.Logger
}

// New assembles a Runner. Sinks are invoked in the order given. An empty
// runID gets a fresh UUID so callers that do not share the ID with other
// components can leave it blank.
func New(runID string, spec flights.SearchSpec, factory engine.FetcherFactory, clock engine.Clock, sinks []engine.Sink, cfg engine.Config, logger *zap.Logger) *Runner {
	if runID == "" {
		runID = uuid.NewString()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		runID:   runID,
		spec:    spec,
		factory: factory,
		clock:   clock,
		sinks:   sinks,
		cfg:     cfg,
		logger:  logger,
	}
}

// Run executes the whole search space and returns the run summary.
// Cancellation via ctx truncates the run; outcomes already produced are
// still persisted and summarized. Sink failures are logged and skipped
// so a broken sink cannot lose the rest of the run.
func (r *Runner) Run(ctx context.Context) (engine.Summary, error) {
	logger := r.logger.With(zap.String("run_id", r.runID))

	queries := flights.BuildQueries(r.spec)
	if len(queries) == 0 {
		logger.Info("search space is empty, nothing to do")
		return engine.Summary{}, nil
	}

	logger.Info("starting run",
		zap.Int("total_urls", len(queries)),
		zap.Int("workers", r.cfg.Workers),
		zap.Int("max_attempts", r.cfg.MaxAttempts),
		zap.Duration("backoff", r.cfg.Backoff),
		zap.Strings("from", r.spec.From),
		zap.Strings("to", r.spec.To),
	)

	exec := engine.NewExecutor(&meteredFactory{inner: r.factory}, r.clock, r.cfg, logger)

	var acc engine.Accumulator
	for outcome := range exec.Run(ctx, queries) {
		r.record(ctx, outcome, logger)
		acc.Add(outcome)
		metrics.ObserveTask(string(outcome.Status), outcome.Attempts, outcome.Duration)
	}

	summary := acc.Summary()
	for _, sink := range r.sinks {
		if err := sink.RecordSummary(ctx, summary); err != nil {
			logger.Warn("record summary failed", zap.Error(err))
		}
	}

	logger.Info("run finished",
		zap.Int("total_urls", summary.TotalURLs),
		zap.Int("successful", summary.Successful),
		zap.Int("failed", summary.Failed),
		zap.Float64("total_duration_seconds", summary.TotalDuration),
		zap.Float64("average_time_per_url", summary.AverageDuration),
	)

	if summary.TotalURLs < len(queries) {
		logger.Warn("run truncated before all urls were dispatched",
			zap.Int("dispatched", summary.TotalURLs),
			zap.Int("planned", len(queries)))
	}

	return summary, nil
}

func (r *Runner) record(ctx context.Context, outcome engine.Outcome, logger *zap.Logger) {
	for _, sink := range r.sinks {
		if err := sink.RecordOutcome(ctx, outcome); err != nil {
			logger.Warn("record outcome failed",
				zap.String("url", outcome.URL),
				zap.Error(err))
		}
	}
}

// meteredFactory tracks open fetch sessions in the active workers gauge.
type meteredFactory struct {
	inner engine.FetcherFactory
}

func (f *meteredFactory) New(ctx context.Context) (engine.Fetcher, error) {
	fetcher, err := f.inner.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("open fetch session: %w", err)
	}
	metrics.IncActiveWorkers()
	return &meteredFetcher{Fetcher: fetcher}, nil
}

type meteredFetcher struct {
	engine.Fetcher
}

func (f *meteredFetcher) Close() error {
	metrics.DecActiveWorkers()
	return f.Fetcher.Close()
}
