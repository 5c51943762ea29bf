package daterange

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := Parse(value)
	require.NoError(t, err)
	return d
}

func TestOverlaps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		startA, endA string
		startB, endB string
		expected     bool
	}{
		{name: "identical ranges", startA: "2025-06-01", endA: "2025-06-03", startB: "2025-06-01", endB: "2025-06-03", expected: true},
		{name: "back to back", startA: "2025-06-01", endA: "2025-06-03", startB: "2025-06-03", endB: "2025-06-05", expected: false},
		{name: "one day shared", startA: "2025-06-01", endA: "2025-06-03", startB: "2025-06-02", endB: "2025-06-04", expected: true},
		{name: "nested", startA: "2025-06-01", endA: "2025-06-10", startB: "2025-06-04", endB: "2025-06-05", expected: true},
		{name: "disjoint", startA: "2025-06-01", endA: "2025-06-02", startB: "2025-07-01", endB: "2025-07-02", expected: false},
		{name: "empty range never overlaps itself", startA: "2025-06-01", endA: "2025-06-01", startB: "2025-06-01", endB: "2025-06-01", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a1, a2 := date(t, tt.startA), date(t, tt.endA)
			b1, b2 := date(t, tt.startB), date(t, tt.endB)

			require.Equal(t, tt.expected, Overlaps(a1, a2, b1, b2))
			require.Equal(t, tt.expected, Overlaps(b1, b2, a1, a2), "overlap must be symmetric")
		})
	}
}

func TestContains(t *testing.T) {
	t.Parallel()

	start, end := date(t, "2025-06-01"), date(t, "2025-06-03")

	require.True(t, Contains(start, end, start))
	require.True(t, Contains(start, end, date(t, "2025-06-02")))
	require.False(t, Contains(start, end, end), "checkout day is free")
	require.False(t, Contains(start, end, date(t, "2025-05-31")))

	withClock := time.Date(2025, 6, 2, 18, 30, 0, 0, time.UTC)
	require.True(t, Contains(start, end, withClock), "time of day is ignored")
}

func TestNights(t *testing.T) {
	t.Parallel()

	require.Equal(t, 2, Nights(date(t, "2025-06-01"), date(t, "2025-06-03")))
	require.Equal(t, 0, Nights(date(t, "2025-06-01"), date(t, "2025-06-01")))
	require.Equal(t, 0, Nights(date(t, "2025-06-03"), date(t, "2025-06-01")))
	require.Equal(t, 31, Nights(date(t, "2025-03-01"), date(t, "2025-04-01")))

	prague, err := time.LoadLocation("Europe/Prague")
	if err == nil {
		// DST change weekend still counts whole nights.
		s := time.Date(2025, 3, 29, 0, 0, 0, 0, prague)
		e := time.Date(2025, 3, 31, 0, 0, 0, 0, prague)
		require.Equal(t, 2, Nights(s, e))
	}
}

func TestDates(t *testing.T) {
	t.Parallel()

	start, end := date(t, "2025-06-29"), date(t, "2025-07-02")
	got := slices.Collect(Dates(start, end))

	require.Equal(t, []time.Time{
		date(t, "2025-06-29"),
		date(t, "2025-06-30"),
		date(t, "2025-07-01"),
	}, got)

	// restartable
	require.Equal(t, got, slices.Collect(Dates(start, end)))

	require.Empty(t, slices.Collect(Dates(start, start)))
	require.Empty(t, slices.Collect(Dates(end, start)))

	count := 0
	for range Dates(start, end) {
		count++
		break
	}
	require.Equal(t, 1, count)
}
