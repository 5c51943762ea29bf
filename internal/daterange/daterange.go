// Package daterange implements half-open calendar date intervals.
//
// Dates are civil days represented as time.Time values at midnight UTC. A
// range [Start, End) contains Start and excludes End, so a stay ending on a day
// and another starting on the same day never overlap.
package daterange

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"
)

// Layout is the wire format for calendar dates.
const Layout = time.DateOnly

const day = 24 * time.Hour

// ErrInvalidDate is returned when a date string cannot be parsed.
var ErrInvalidDate = errors.New("daterange: invalid date")

// Day truncates t to its calendar day (in t's own location) expressed as midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Parse reads a YYYY-MM-DD date.
func Parse(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}
	t, err := time.ParseInLocation(Layout, trimmed, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t, nil
}

// Format renders a date as YYYY-MM-DD.
func Format(t time.Time) string {
	return Day(t).Format(Layout)
}

// Overlaps reports whether [startA, endA) and [startB, endB) share at least one day.
// It is the only overlap primitive in the module; everything else builds on it.
func Overlaps(startA, endA, startB, endB time.Time) bool {
	return Day(startA).Before(Day(endB)) && Day(startB).Before(Day(endA))
}

// Contains reports whether date falls inside [start, end).
func Contains(start, end, date time.Time) bool {
	d := Day(date)
	return Overlaps(start, end, d, d.Add(day))
}

// Nights returns the number of days between start and end; never negative.
func Nights(start, end time.Time) int {
	diff := Day(end).Sub(Day(start))
	if diff <= 0 {
		return 0
	}
	return int(diff / day)
}

// Dates yields every date in [start, end) in ascending order. The sequence is
// finite and may be ranged over any number of times.
func Dates(start, end time.Time) iter.Seq[time.Time] {
	from, to := Day(start), Day(end)
	return func(yield func(time.Time) bool) {
		for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
			if !yield(d) {
				return
			}
		}
	}
}
