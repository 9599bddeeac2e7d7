package tracker

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used for completions and stats queries.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date. The result is noon UTC on that
// day so day arithmetic never crosses a DST boundary.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d.Add(12 * time.Hour), nil
}

// calendarDay returns the civil date of t in t's own location, as noon UTC.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

// FormatDate formats the civil date of t in t's own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
