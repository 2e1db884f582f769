package engine

import (
	"context"
	"time"
)

// Fetcher performs one navigation+extraction against a URL. A Fetcher is an
// exclusive session: it is owned by a single task for its whole attempt loop
// and must be closed on every exit path.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FieldMap, error)
	Close() error
}

// FetcherFactory acquires an isolated fetch session for one task.
type FetcherFactory interface {
	New(ctx context.Context) (Fetcher, error)
}

// Sink durably records individual outcomes and the end-of-run summary.
// Implementations are not required to be safe for concurrent use; the run
// coordinator serializes all calls.
type Sink interface {
	RecordOutcome(ctx context.Context, outcome Outcome) error
	RecordSummary(ctx context.Context, summary Summary) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
