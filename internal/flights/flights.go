// Package flights enumerates the round-trip query search space for a run.
package flights

import (
	"sort"
	"strings"
	"time"
)

// DateLayout is the wire format for departure and return dates.
const DateLayout = "2006-01-02"

// BaseURL is the Google Flights query template. The four placeholders are
// substituted with the airport codes and the YYYY-MM-DD date pair.
const BaseURL = "https://www.google.com/travel/flights?q=Flights%20to%20{TO}%20from%20{FROM}%20on%20{OUTBOUND}%20through%20{INBOUND}"

// SearchSpec is the compact description of the search space, supplied once
// per run. Departure bounds are inclusive.
type SearchSpec struct {
	From           []string  `json:"from" mapstructure:"from"`
	To             []string  `json:"to" mapstructure:"to"`
	FirstDeparture time.Time `json:"first_departure" mapstructure:"-"`
	LastDeparture  time.Time `json:"last_departure" mapstructure:"-"`
	StayDays       int       `json:"stay_days" mapstructure:"stay_days"`
	FlexDays       int       `json:"flex_days" mapstructure:"flex_days"`
	WeekendOnly    bool      `json:"weekend_only" mapstructure:"weekend_only"`
}

// Query is one fully specified flight search. Immutable once built.
type Query struct {
	From     string    `json:"from"`
	To       string    `json:"to"`
	Outbound time.Time `json:"outbound"`
	Inbound  time.Time `json:"inbound"`
	URL      string    `json:"url"`
}

// OutboundDate returns the departure date in wire format.
func (q Query) OutboundDate() string { return q.Outbound.Format(DateLayout) }

// InboundDate returns the return date in wire format.
func (q Query) InboundDate() string { return q.Inbound.Format(DateLayout) }

// BuildURL substitutes the route and date pair into the query template.
func BuildURL(from, to string, outbound, inbound time.Time) string {
	r := strings.NewReplacer(
		"{FROM}", from,
		"{TO}", to,
		"{OUTBOUND}", outbound.Format(DateLayout),
		"{INBOUND}", inbound.Format(DateLayout),
	)
	return r.Replace(BaseURL)
}

// BuildQueries expands spec into the ordered, deduplicated query list.
//
// Anchor days are walked from FirstDeparture to LastDeparture inclusive;
// the weekend filter applies to anchors only, before flexibility expansion.
// Each anchor expands to the ±FlexDays window, expanded days outside the
// departure bounds are dropped, and the union is sorted ascending. Return
// dates are departure+StayDays and are never clipped. Ordering is
// origin-major, then destination, then ascending departure date, so two
// calls with the same spec yield identical output.
func BuildQueries(spec SearchSpec) []Query {
	days := departureDays(spec)
	if len(days) == 0 || len(spec.From) == 0 || len(spec.To) == 0 {
		return nil
	}

	queries := make([]Query, 0, len(spec.From)*len(spec.To)*len(days))
	for _, from := range spec.From {
		for _, to := range spec.To {
			for _, outbound := range days {
				inbound := outbound.AddDate(0, 0, spec.StayDays)
				queries = append(queries, Query{
					From:     from,
					To:       to,
					Outbound: outbound,
					Inbound:  inbound,
					URL:      BuildURL(from, to, outbound, inbound),
				})
			}
		}
	}
	return queries
}

func departureDays(spec SearchSpec) []time.Time {
	first := truncateToDay(spec.FirstDeparture)
	last := truncateToDay(spec.LastDeparture)
	if first.After(last) {
		return nil
	}

	var anchors []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if spec.WeekendOnly && !isWeekend(d) {
			continue
		}
		anchors = append(anchors, d)
	}

	seen := make(map[time.Time]struct{})
	for _, anchor := range anchors {
		for flex := -spec.FlexDays; flex <= spec.FlexDays; flex++ {
			d := anchor.AddDate(0, 0, flex)
			if d.Before(first) || d.After(last) {
				continue
			}
			seen[d] = struct{}{}
		}
	}

	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
