package monthgrid

import (
	"strings"
	"time"
)

// Layouts carrying their own offset. The parsed instant is converted to the
// display location.
var absoluteLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04Z07:00",
}

// Layouts without an offset are read as wall-clock time in the display location.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	isoLayout,
}

// ParseTimestamp parses an event timestamp in the forms event sources emit.
// The result is expressed in loc. ok is false for empty or unparseable input.
func ParseTimestamp(s string, loc *time.Location) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(loc), true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// GroupEventsByDay converts raw events into display events keyed by the ISO
// date of their start in the formatter's location.
//
// Events without a usable start time are skipped. Within a day the input
// order is kept as is; nothing is sorted. A nil slice yields an empty map.
func (f *Formatter) GroupEventsByDay(events []RawEvent) map[string][]DisplayEvent {
	byDay := make(map[string][]DisplayEvent)
	for _, ev := range events {
		start, ok := ParseTimestamp(ev.EventStartTime, f.Location)
		if !ok {
			continue
		}
		end, _ := ParseTimestamp(ev.EventEndTime, f.Location)
		key := ISODate(start)

		id := ev.EventID
		if id == "" {
			id = key
		}

		byDay[key] = append(byDay[key], DisplayEvent{
			EventID:  id,
			HTMLLink: ev.HTMLLink,
			Label:    f.eventLabel(ev, start, end),
			Tooltip:  f.FormatTooltip(start, end, ev.HTMLLink),
			IsAllDay: ev.IsAllDay,
		})
	}
	return byDay
}

// SkippedEvents counts the events GroupEventsByDay would drop.
func (f *Formatter) SkippedEvents(events []RawEvent) int {
	n := 0
	for _, ev := range events {
		if _, ok := ParseTimestamp(ev.EventStartTime, f.Location); !ok {
			n++
		}
	}
	return n
}

func (f *Formatter) eventLabel(ev RawEvent, start, end time.Time) string {
	if ev.IsAllDay {
		if ev.Label == "" {
			return DefaultLabel
		}
		return ev.Label
	}
	label := strings.TrimSpace(f.FormatTimeRange(start, end) + " " + ev.Label)
	if label == "" {
		return DefaultLabel
	}
	return label
}
