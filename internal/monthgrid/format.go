package monthgrid

import (
	"fmt"
	"time"
)

// DefaultLabel is shown for events that have neither a title nor a start time.
const DefaultLabel = "Event"

// Formatter renders labels for one locale, display time zone and event
// provider. The zero value is not usable; call NewFormatter.
type Formatter struct {
	Locale   Locale
	Location *time.Location
	// Provider is the name used in the "Open in ..." tooltip hint.
	Provider string
}

// NewFormatter returns a Formatter. A nil location means UTC and an empty
// provider name means "Google".
func NewFormatter(locale Locale, loc *time.Location, provider string) *Formatter {
	if loc == nil {
		loc = time.UTC
	}
	if provider == "" {
		provider = "Google"
	}
	if locale.TimeLayout == "" {
		locale = DefaultLocale()
	}
	return &Formatter{Locale: locale, Location: loc, Provider: provider}
}

// FormatTimeRange formats the start as a localized hour:minute label.
//
// Only the start is shown even when an end is known. Zero values are treated
// as absent; without a start the result is DefaultLabel.
func (f *Formatter) FormatTimeRange(start, end time.Time) string {
	if start.IsZero() {
		return DefaultLabel
	}
	// TODO: decide whether the end time belongs in the range label; callers currently pass it but it is not rendered.
	return start.In(f.Location).Format(f.Locale.TimeLayout)
}

// FormatTooltip returns the time range, followed by an "Open in <provider>"
// hint when the event has a link.
func (f *Formatter) FormatTooltip(start, end time.Time, link string) string {
	rng := f.FormatTimeRange(start, end)
	if link == "" {
		return rng
	}
	return rng + " • " + fmt.Sprintf(f.Locale.OpenInFormat, f.Provider)
}

// FormatMonthLabel returns the localized "Month YYYY" label for the month,
// e.g. "March 2025". Out-of-range month indexes are normalized first.
func (f *Formatter) FormatMonthLabel(year, monthIndex int) string {
	ref := NewMonthRef(year, monthIndex)
	return fmt.Sprintf(f.Locale.MonthLabelFormat, f.Locale.Months[ref.MonthIndex], ref.Year)
}
