package calendar

import (
	calendar "google.golang.org/api/calendar/v3"

	"github.com/teemow/calview/internal/monthgrid"
)

// toRawEvent converts a Google Calendar event to a RawEvent. Timestamps are
// passed through as sent: RFC 3339 for timed events, YYYY-MM-DD for all-day
// events.
func toRawEvent(event *calendar.Event) monthgrid.RawEvent {
	if event == nil {
		return monthgrid.RawEvent{}
	}

	raw := monthgrid.RawEvent{
		EventID:  event.Id,
		Label:    event.Summary,
		HTMLLink: event.HtmlLink,
	}

	if event.Start != nil {
		switch {
		case event.Start.DateTime != "":
			raw.EventStartTime = event.Start.DateTime
		case event.Start.Date != "":
			raw.EventStartTime = event.Start.Date
			raw.IsAllDay = true
		}
	}

	if event.End != nil {
		if event.End.DateTime != "" {
			raw.EventEndTime = event.End.DateTime
		} else {
			raw.EventEndTime = event.End.Date
		}
	}

	return raw
}

// isCancelled reports whether the event instance was cancelled.
func isCancelled(event *calendar.Event) bool {
	return event != nil && event.Status == "cancelled"
}
