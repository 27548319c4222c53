package ics

import (
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"
)

// maxOccurrencesPerEvent caps the expansion of a single recurring event.
const maxOccurrencesPerEvent = 1000

// occurrence is one concrete instance of a VEVENT.
type occurrence struct {
	ID     string
	Event  vevent
	Start  time.Time
	End    time.Time
	AllDay bool
}

// expand returns the instances of events that overlap [from, to), ordered
// by start time. Cancelled instances are dropped. Recurrence rules that do
// not parse are reported in errs and the event is skipped.
func expand(events []vevent, from, to time.Time) (out []occurrence, errs []error) {
	overrides := make(map[string][]vevent)
	var bases []vevent
	for _, ev := range events {
		if ev.Recurrence != nil {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
			continue
		}
		bases = append(bases, ev)
	}

	for _, ev := range bases {
		if ev.RRule == "" {
			if !ev.Cancelled && overlaps(ev.Start, ev.End, from, to) {
				out = append(out, occurrence{ID: ev.UID, Event: ev, Start: ev.Start, End: ev.End, AllDay: ev.AllDay})
			}
			continue
		}

		occ, err := expandRecurring(ev, overrides[ev.UID], from, to)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, occ...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out, errs
}

func expandRecurring(ev vevent, overrides []vevent, from, to time.Time) ([]occurrence, error) {
	r, err := rrule.StrToRRule(ev.RRule)
	if err != nil {
		return nil, fmt.Errorf("invalid RRULE for %s: %w", ev.UID, err)
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	dur := ev.End.Sub(ev.Start)
	loc := ev.Start.Location()
	starts := set.Between(from.Add(-dur).In(loc), to.In(loc), true)
	if len(starts) > maxOccurrencesPerEvent {
		starts = starts[:maxOccurrencesPerEvent]
	}

	var out []occurrence
	for _, start := range starts {
		inst := occurrence{
			ID:     instanceID(ev.UID, start),
			Event:  ev,
			Start:  start,
			End:    start.Add(dur),
			AllDay: ev.AllDay,
		}
		if ov, ok := findOverride(overrides, start); ok {
			if ov.Cancelled {
				continue
			}
			inst.Event = ov
			inst.Start, inst.End = ov.Start, ov.End
			inst.AllDay = ov.AllDay
		}
		if overlaps(inst.Start, inst.End, from, to) {
			out = append(out, inst)
		}
	}
	return out, nil
}

func findOverride(overrides []vevent, start time.Time) (vevent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence != nil && ov.Recurrence.Equal(start) {
			return ov, true
		}
	}
	return vevent{}, false
}

// instanceID derives a stable id for one instance of a recurring event.
func instanceID(uid string, start time.Time) string {
	return uid + "_" + start.UTC().Format(icsUTCLayout)
}

// overlaps reports whether [start, end) intersects [from, to). Zero-length
// events count when they start inside the window.
func overlaps(start, end, from, to time.Time) bool {
	if !start.Before(to) {
		return false
	}
	if end.After(start) {
		return end.After(from)
	}
	return !start.Before(from)
}
