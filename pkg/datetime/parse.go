// Package datetime provides calendar-month utility functions.
//
// All month arithmetic here works on the year and month fields directly
// rather than on elapsed durations, so results never depend on the process
// time zone or on daylight-saving transitions.
package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/capacity-forecast/pkg/constants"
)

const (
	// DateTimeLayout is the format expected in config files and API payloads.
	DateTimeLayout = constants.DateTimeLayout
)

// Month is a calendar month with no time-of-day or location attached.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month of t as observed in t's own location.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// CurrentMonth returns the current calendar month in UTC.
func CurrentMonth() Month {
	return MonthOf(time.Now().UTC())
}

// ParseMonth parses a "2006-01" formatted string.
func ParseMonth(value string) (Month, error) {
	t, err := time.Parse(DateTimeLayout, value)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", value, err)
	}
	return MonthOf(t), nil
}

// AddMonths advances m by n calendar months (n may be negative).
func (m Month) AddMonths(n int) Month {
	idx := m.Year*constants.MonthsPerYear + int(m.Month) - 1 + n
	year := idx / constants.MonthsPerYear
	month := idx % constants.MonthsPerYear
	if month < 0 {
		month += constants.MonthsPerYear
		year--
	}
	return Month{Year: year, Month: time.Month(month + 1)}
}

// IsZero reports whether m is the zero Month, which callers use to mean
// "no start month given".
func (m Month) IsZero() bool {
	return m == Month{}
}

// OrCurrent returns m, or the current UTC month when m is zero.
func (m Month) OrCurrent() Month {
	if m.IsZero() {
		return CurrentMonth()
	}
	return m
}

// Label formats m as an abbreviated month and four-digit year, e.g. "Oct 2024".
// Month fields outside 1-12 are carried into the year first.
func (m Month) Label() string {
	n := m.AddMonths(0)
	return time.Date(n.Year, n.Month, 1, 0, 0, 0, 0, time.UTC).Format(constants.MonthLabelLayout)
}

// String formats m in DateTimeLayout.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// MonthLabel returns the label of the month that lies offset months after start.
func MonthLabel(start Month, offset int) string {
	return start.AddMonths(offset).Label()
}
