package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/memoryleak07/GFScraper/internal/flights"
)

// Config controls Executor behavior.
type Config struct {
	// Workers is the number of queries in flight at any instant.
	Workers int
	// MaxAttempts is the per-query attempt budget.
	MaxAttempts int
	// Backoff is the fixed wait between attempts of the same query.
	Backoff time.Duration
}

// Executor fans queries out to a fixed pool of workers. Each worker owns one
// fetch session per task; sessions are never shared or migrated.
type Executor struct {
	factory FetcherFactory
	clock   Clock
	cfg     Config
	logger  *zap.Logger
}

// NewExecutor constructs an Executor with defaults filled in.
func NewExecutor(factory FetcherFactory, clock Clock, cfg Config, logger *zap.Logger) *Executor {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		factory: factory,
		clock:   clock,
		cfg:     cfg,
		logger:  logger,
	}
}

// Run starts the worker pool and returns the outcome stream. The channel
// closes once every dispatched query has produced its outcome. Completion
// order is unrelated to submission order.
//
// When ctx is canceled, queries not yet dispatched are abandoned and produce
// no outcome; tasks already in flight finish their current attempt and emit
// whatever partial outcome exists.
func (e *Executor) Run(ctx context.Context, queries []flights.Query) <-chan Outcome {
	jobs := make(chan flights.Query)
	outcomes := make(chan Outcome)

	var wg sync.WaitGroup
	for i := 0; i < e.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.work(ctx, jobs, outcomes)
		}()
	}

	go func() {
		defer close(jobs)
		for i, q := range queries {
			select {
			case <-ctx.Done():
				e.logger.Warn("run canceled, abandoning undispatched queries",
					zap.Int("dispatched", i),
					zap.Int("abandoned", len(queries)-i),
				)
				return
			case jobs <- q:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	return outcomes
}

func (e *Executor) work(ctx context.Context, jobs <-chan flights.Query, outcomes chan<- Outcome) {
	for {
		select {
		case <-ctx.Done():
			return
		case q, ok := <-jobs:
			if !ok {
				return
			}
			// A query handed over in the same instant the run was canceled
			// counts as undispatched: no fetch may begin past this point.
			if ctx.Err() != nil {
				return
			}
			outcomes <- e.runTask(ctx, q)
		}
	}
}

func (e *Executor) runTask(ctx context.Context, q flights.Query) Outcome {
	start := e.clock.Now()
	outcome := Outcome{
		Status:    StatusFailed,
		URL:       q.URL,
		From:      q.From,
		To:        q.To,
		Outbound:  q.OutboundDate(),
		Inbound:   q.InboundDate(),
		Timestamp: start,
	}

	fetcher, err := e.factory.New(ctx)
	if err != nil {
		outcome.Error = fmt.Sprintf("acquire fetch session: %v", err)
		outcome.Duration = e.clock.Now().Sub(start).Seconds()
		e.logger.Error("fetch session unavailable", zap.String("url", q.URL), zap.Error(err))
		return outcome
	}
	defer func() {
		if cerr := fetcher.Close(); cerr != nil {
			e.logger.Warn("close fetch session", zap.String("url", q.URL), zap.Error(cerr))
		}
	}()

	for outcome.Attempts < e.cfg.MaxAttempts {
		if ctx.Err() != nil {
			e.logger.Warn("task canceled mid-flight",
				zap.String("url", q.URL),
				zap.Int("attempts", outcome.Attempts),
			)
			break
		}

		outcome.Attempts++
		data, err := fetcher.Fetch(ctx, q.URL)
		if err == nil {
			outcome.Status = StatusSuccess
			outcome.Data = data
			outcome.Error = ""
			break
		}

		if recoverable(err) {
			e.logger.Warn("fetch attempt failed",
				zap.String("url", q.URL),
				zap.Int("attempt", outcome.Attempts),
				zap.Int("max_attempts", e.cfg.MaxAttempts),
				zap.Error(err),
			)
		} else {
			outcome.Error = err.Error()
			e.logger.Error("unexpected fetch error",
				zap.String("url", q.URL),
				zap.Int("attempt", outcome.Attempts),
				zap.Error(err),
			)
		}

		if outcome.Attempts < e.cfg.MaxAttempts && !e.backoff(ctx) {
			break
		}
	}

	outcome.Duration = e.clock.Now().Sub(start).Seconds()
	return outcome
}

// backoff waits the configured interval between attempts. Returns false if
// the run was canceled while waiting.
func (e *Executor) backoff(ctx context.Context) bool {
	t := time.NewTimer(e.cfg.Backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
