package runner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/memoryleak07/GFScraper/internal/engine"
	"github.com/memoryleak07/GFScraper/internal/flights"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type stubFetcher struct {
	err error
}

func (f *stubFetcher) Fetch(_ context.Context, _ string) (engine.FieldMap, error) {
	if f.err != nil {
		return nil, f.err
	}
	return engine.FieldMap{"prices": {"100"}}, nil
}

func (f *stubFetcher) Close() error { return nil }

type stubFactory struct {
	mu     sync.Mutex
	opened int
	err    error
}

func (f *stubFactory) New(_ context.Context) (engine.Fetcher, error) {
	f.mu.Lock()
	f.opened++
	f.mu.Unlock()
	return &stubFetcher{err: f.err}, nil
}

type memorySink struct {
	mu        sync.Mutex
	outcomes  []engine.Outcome
	summaries []engine.Summary
	fail      bool
}

func (s *memorySink) RecordOutcome(_ context.Context, o engine.Outcome) error {
	if s.fail {
		return errors.New("sink down")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, o)
	return nil
}

func (s *memorySink) RecordSummary(_ context.Context, sum engine.Summary) error {
	if s.fail {
		return errors.New("sink down")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = append(s.summaries, sum)
	return nil
}

func testSpec(to ...string) flights.SearchSpec {
	day := time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)
	return flights.SearchSpec{
		From:           []string{"FCO"},
		To:             to,
		FirstDeparture: day,
		LastDeparture:  day,
		StayDays:       7,
	}
}

func TestRunnerRecordsOutcomesAndSummary(t *testing.T) {
	factory := &stubFactory{}
	sink := &memorySink{}
	r := New("", testSpec("MDE", "BOG"), factory, &stepClock{}, []engine.Sink{sink},
		engine.Config{Workers: 2, MaxAttempts: 1}, zap.NewNop())

	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, summary.TotalURLs)
	require.Equal(t, 2, summary.Successful)
	require.Equal(t, 0, summary.Failed)

	require.Len(t, sink.outcomes, 2)
	require.Len(t, sink.summaries, 1)
	require.Equal(t, summary, sink.summaries[0])
	require.Equal(t, 2, factory.opened)
}

func TestRunnerEmptySearchSpace(t *testing.T) {
	factory := &stubFactory{}
	sink := &memorySink{}
	r := New("", testSpec(), factory, &stepClock{}, []engine.Sink{sink},
		engine.Config{Workers: 1, MaxAttempts: 1}, zap.NewNop())

	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, engine.Summary{}, summary)
	require.Zero(t, factory.opened)
	require.Empty(t, sink.outcomes)
	require.Empty(t, sink.summaries)
}

func TestRunnerSinkFailureDoesNotAbort(t *testing.T) {
	factory := &stubFactory{}
	broken := &memorySink{fail: true}
	good := &memorySink{}
	r := New("", testSpec("MDE"), factory, &stepClock{}, []engine.Sink{broken, good},
		engine.Config{Workers: 1, MaxAttempts: 1}, zap.NewNop())

	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.TotalURLs)
	require.Len(t, good.outcomes, 1)
	require.Len(t, good.summaries, 1)
}

func TestRunnerRecordsFailedOutcomes(t *testing.T) {
	factory := &stubFactory{err: errors.New("tab crashed")}
	sink := &memorySink{}
	r := New("", testSpec("MDE"), factory, &stepClock{}, []engine.Sink{sink},
		engine.Config{Workers: 1, MaxAttempts: 1}, zap.NewNop())

	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Failed)
	require.Len(t, sink.outcomes, 1)
	require.Equal(t, engine.StatusFailed, sink.outcomes[0].Status)
	require.Contains(t, sink.outcomes[0].Error, "tab crashed")
}
