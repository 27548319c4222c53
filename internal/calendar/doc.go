// Package calendar fetches a user's Google Calendar events for one month and
// converts them to the raw event records the month grid consumes.
//
// Example usage:
//
//	src := calendar.NewSource(auth, calendar.SourceConfig{CalendarID: "primary", Location: loc})
//	events, err := src.FetchMonthlyEvents(ctx, "jane", "2025-02")
package calendar
