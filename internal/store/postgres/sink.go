// Package postgres provides a Postgres-backed outcome sink.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/memoryleak07/GFScraper/internal/engine"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool used for outcome rows.
type Config struct {
	DSN             string
	OutcomeTable    string
	SummaryTable    string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// Sink writes outcomes and the run summary into Postgres, keyed by run ID.
// It implements engine.Sink alongside the filesystem store.
type Sink struct {
	pool         execCloser
	runID        string
	outcomeTable string
	summaryTable string
}

// NewSink creates a Postgres-backed Sink using the provided config.
func NewSink(ctx context.Context, cfg Config, runID string) (*Sink, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("storage.postgres.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return newSink(pool, runID, cfg.OutcomeTable, cfg.SummaryTable)
}

// NewSinkWithPool constructs a Sink from an existing pool (primarily for testing).
func NewSinkWithPool(pool execCloser, runID, outcomeTable, summaryTable string) (*Sink, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return newSink(pool, runID, outcomeTable, summaryTable)
}

func newSink(pool execCloser, runID, outcomeTable, summaryTable string) (*Sink, error) {
	if runID == "" {
		return nil, fmt.Errorf("run id is required")
	}
	if outcomeTable == "" {
		outcomeTable = "flight_outcomes"
	}
	if summaryTable == "" {
		summaryTable = "run_summaries"
	}
	for _, table := range []string{outcomeTable, summaryTable} {
		if !validTableName.MatchString(table) {
			return nil, fmt.Errorf("invalid table name %q", table)
		}
	}
	return &Sink{
		pool:         pool,
		runID:        runID,
		outcomeTable: outcomeTable,
		summaryTable: summaryTable,
	}, nil
}

// Close releases the underlying pool resources.
func (s *Sink) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// RecordOutcome inserts one outcome row.
func (s *Sink) RecordOutcome(ctx context.Context, outcome engine.Outcome) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("postgres sink is not configured")
	}
	var dataJSON []byte
	if outcome.Data != nil {
		var err error
		dataJSON, err = json.Marshal(outcome.Data)
		if err != nil {
			return fmt.Errorf("marshal outcome data: %w", err)
		}
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	run_id,
	status,
	url,
	origin,
	destination,
	outbound,
	inbound,
	started_at,
	duration_seconds,
	attempts,
	data,
	error_text
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
)`, s.outcomeTable)

	args := []any{
		s.runID,
		string(outcome.Status),
		outcome.URL,
		outcome.From,
		outcome.To,
		outcome.Outbound,
		outcome.Inbound,
		outcome.Timestamp,
		outcome.Duration,
		outcome.Attempts,
		dataJSON,
		outcome.Error,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

// RecordSummary upserts the run's aggregate row.
func (s *Sink) RecordSummary(ctx context.Context, summary engine.Summary) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("postgres sink is not configured")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	run_id,
	total_urls,
	successful,
	failed,
	total_duration_seconds,
	average_time_per_url
) VALUES (
	$1,$2,$3,$4,$5,$6
)
ON CONFLICT (run_id) DO UPDATE SET
	total_urls = EXCLUDED.total_urls,
	successful = EXCLUDED.successful,
	failed = EXCLUDED.failed,
	total_duration_seconds = EXCLUDED.total_duration_seconds,
	average_time_per_url = EXCLUDED.average_time_per_url`, s.summaryTable)

	args := []any{
		s.runID,
		summary.TotalURLs,
		summary.Successful,
		summary.Failed,
		summary.TotalDuration,
		summary.AverageDuration,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}
	return nil
}
