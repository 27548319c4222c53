package monthgrid

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidYearMonth is returned when a "YYYY-MM" string cannot be parsed.
var ErrInvalidYearMonth = errors.New("invalid year-month")

const yearMonthLayout = "2006-01"

// MonthRef identifies a viewed month. MonthIndex is zero based (0 = January).
type MonthRef struct {
	Year       int `json:"year"`
	MonthIndex int `json:"monthIndex"`
}

// NewMonthRef returns a normalized MonthRef. Month indexes outside 0..11 carry
// into the year the same way calendar arithmetic does, so (2025, 12) is
// January 2026 and (2025, -1) is December 2024.
func NewMonthRef(year, monthIndex int) MonthRef {
	return MonthRefOf(time.Date(year, time.Month(monthIndex+1), 1, 0, 0, 0, 0, time.UTC))
}

// MonthRefOf returns the month that contains t, in t's own location.
func MonthRefOf(t time.Time) MonthRef {
	return MonthRef{Year: t.Year(), MonthIndex: int(t.Month()) - 1}
}

// ParseYearMonth parses a "YYYY-MM" string.
func ParseYearMonth(s string) (MonthRef, error) {
	t, err := time.Parse(yearMonthLayout, s)
	if err != nil {
		return MonthRef{}, fmt.Errorf("%w %q: %w", ErrInvalidYearMonth, s, err)
	}
	return MonthRefOf(t), nil
}

// FirstDay returns the first day of the month at midnight UTC.
func (r MonthRef) FirstDay() time.Time {
	return time.Date(r.Year, time.Month(r.MonthIndex+1), 1, 0, 0, 0, 0, time.UTC)
}

// Month returns the month as a time.Month after normalization.
func (r MonthRef) Month() time.Month {
	return r.FirstDay().Month()
}

// AddMonths returns the month n months away from r.
func (r MonthRef) AddMonths(n int) MonthRef {
	return NewMonthRef(r.Year, r.MonthIndex+n)
}

// YearMonth formats the month as "YYYY-MM", the form event sources expect.
func (r MonthRef) YearMonth() string {
	return r.FirstDay().Format(yearMonthLayout)
}

// Bounds returns [first day, first day of next month) in loc.
func (r MonthRef) Bounds(loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	start := time.Date(r.Year, time.Month(r.MonthIndex+1), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

func (r MonthRef) String() string {
	return r.YearMonth()
}
