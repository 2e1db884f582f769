package engine

// Accumulator reduces outcomes into a run summary. Not safe for concurrent
// use; the run coordinator feeds it from a single goroutine.
type Accumulator struct {
	total         int
	successful    int
	totalDuration float64
}

// Add folds one outcome into the running totals.
func (a *Accumulator) Add(outcome Outcome) {
	a.total++
	if outcome.Status == StatusSuccess {
		a.successful++
	}
	a.totalDuration += outcome.Duration
}

// Summary finalizes the aggregate. Average is zero for an empty run.
func (a *Accumulator) Summary() Summary {
	s := Summary{
		TotalURLs:     a.total,
		Successful:    a.successful,
		Failed:        a.total - a.successful,
		TotalDuration: a.totalDuration,
	}
	if a.total > 0 {
		s.AverageDuration = a.totalDuration / float64(a.total)
	}
	return s
}
