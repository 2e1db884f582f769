// Package engine executes flight queries through a bounded worker pool with
// per-task retry and cooperative cancellation.
package engine

import (
	"errors"
	"time"
)

// Status is the terminal state of one query attempt sequence.
type Status string

// Outcome status values persisted in the result store.
const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// FieldMap holds extracted values as parallel arrays keyed by field name.
// One fetch of a listing page yields many rows of several fields each; row i
// across fields is associated by index. Lengths are not guaranteed equal.
type FieldMap map[string][]string

// Outcome is the terminal result of attempting one query. Data is non-nil
// only when Status is StatusSuccess; Error is populated only when the final
// attempt hit an unexpected fault (as opposed to an empty extraction).
type Outcome struct {
	Status    Status    `json:"status"`
	URL       string    `json:"url"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Outbound  string    `json:"outbound"`
	Inbound   string    `json:"inbound"`
	Timestamp time.Time `json:"timestamp"`
	Duration  float64   `json:"duration"`
	Attempts  int       `json:"attempts"`
	Data      FieldMap  `json:"data"`
	Error     string    `json:"error"`
}

// Summary aggregates all outcomes of one run.
type Summary struct {
	TotalURLs       int     `json:"total_urls"`
	Successful      int     `json:"successful"`
	Failed          int     `json:"failed"`
	TotalDuration   float64 `json:"total_duration_seconds"`
	AverageDuration float64 `json:"average_time_per_url"`
}

// Recoverable fetch failures: retried up to the attempt budget, reported as
// StatusFailed with an empty Error field. Anything else that a Fetcher
// returns is treated as unexpected and lands in Outcome.Error.
var (
	// ErrNavigation reports that page navigation did not complete.
	ErrNavigation = errors.New("navigation failed")
	// ErrNoResults reports that navigation succeeded but extraction found nothing.
	ErrNoResults = errors.New("no results extracted")
)

func recoverable(err error) bool {
	return errors.Is(err, ErrNavigation) || errors.Is(err, ErrNoResults)
}
