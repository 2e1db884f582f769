package flights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func baseSpec() SearchSpec {
	return SearchSpec{
		From:           []string{"FCO", "NAP"},
		To:             []string{"MDE", "BOG", "CTG"},
		FirstDeparture: day("2025-08-02"),
		LastDeparture:  day("2025-08-10"),
		StayDays:       15,
		FlexDays:       2,
	}
}

func TestBuildQueriesDeterministic(t *testing.T) {
	t.Parallel()

	spec := baseSpec()
	first := BuildQueries(spec)
	second := BuildQueries(spec)
	require.Equal(t, first, second)
}

func TestBuildQueriesClipsFlexToWindow(t *testing.T) {
	t.Parallel()

	spec := SearchSpec{
		From:           []string{"FCO"},
		To:             []string{"MDE"},
		FirstDeparture: day("2025-08-02"),
		LastDeparture:  day("2025-08-03"),
		StayDays:       7,
		FlexDays:       5,
	}

	queries := BuildQueries(spec)
	require.Len(t, queries, 2)
	require.Equal(t, "2025-08-02", queries[0].OutboundDate())
	require.Equal(t, "2025-08-03", queries[1].OutboundDate())
}

func TestBuildQueriesWeekendFilterPrecedesExpansion(t *testing.T) {
	t.Parallel()

	// 2025-08-09 is a Saturday; the window holds exactly one weekend anchor
	// plus weekdays reachable only through flex expansion.
	spec := SearchSpec{
		From:           []string{"FCO"},
		To:             []string{"MDE"},
		FirstDeparture: day("2025-08-06"),
		LastDeparture:  day("2025-08-09"),
		StayDays:       3,
		FlexDays:       3,
	}
	spec.WeekendOnly = true

	queries := BuildQueries(spec)
	got := make([]string, 0, len(queries))
	for _, q := range queries {
		got = append(got, q.OutboundDate())
	}
	require.Equal(t, []string{"2025-08-06", "2025-08-07", "2025-08-08", "2025-08-09"}, got)
}

func TestBuildQueriesWeekendOnlyZeroFlex(t *testing.T) {
	t.Parallel()

	spec := SearchSpec{
		From:           []string{"FCO"},
		To:             []string{"MDE"},
		FirstDeparture: day("2025-08-04"),
		LastDeparture:  day("2025-08-10"),
		WeekendOnly:    true,
	}

	queries := BuildQueries(spec)
	require.Len(t, queries, 2)
	require.Equal(t, "2025-08-09", queries[0].OutboundDate())
	require.Equal(t, "2025-08-10", queries[1].OutboundDate())
}

func TestBuildQueriesCartesianCount(t *testing.T) {
	t.Parallel()

	spec := baseSpec()
	spec.FlexDays = 0

	// 9 departure days, 2 origins, 3 destinations.
	queries := BuildQueries(spec)
	require.Len(t, queries, 2*3*9)

	// Origin-major, then destination, then ascending date.
	require.Equal(t, "FCO", queries[0].From)
	require.Equal(t, "MDE", queries[0].To)
	require.Equal(t, "2025-08-02", queries[0].OutboundDate())
	require.Equal(t, "NAP", queries[len(queries)-1].From)
	require.Equal(t, "CTG", queries[len(queries)-1].To)
	require.Equal(t, "2025-08-10", queries[len(queries)-1].OutboundDate())
}

func TestBuildQueriesReturnDateNotClipped(t *testing.T) {
	t.Parallel()

	spec := baseSpec()
	queries := BuildQueries(spec)
	require.NotEmpty(t, queries)
	for _, q := range queries {
		require.Equal(t, q.Outbound.AddDate(0, 0, spec.StayDays), q.Inbound)
		require.False(t, q.Inbound.Before(q.Outbound))
	}
}

func TestBuildQueriesEmptyInputs(t *testing.T) {
	t.Parallel()

	spec := baseSpec()
	spec.From = nil
	require.Empty(t, BuildQueries(spec))

	spec = baseSpec()
	spec.To = nil
	require.Empty(t, BuildQueries(spec))

	spec = baseSpec()
	spec.FirstDeparture, spec.LastDeparture = spec.LastDeparture, spec.FirstDeparture
	require.Empty(t, BuildQueries(spec))
}

func TestBuildURL(t *testing.T) {
	t.Parallel()

	got := BuildURL("NAP", "VIE", day("2025-08-04"), day("2025-08-07"))
	require.Equal(t,
		"https://www.google.com/travel/flights?q=Flights%20to%20VIE%20from%20NAP%20on%202025-08-04%20through%202025-08-07",
		got)
}
