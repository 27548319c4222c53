package ics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utc(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	from, to := utc(2025, 3, 1, 0, 0), utc(2025, 4, 1, 0, 0)
	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"inside", utc(2025, 3, 5, 9, 0), utc(2025, 3, 5, 10, 0), true},
		{"spans start", utc(2025, 2, 28, 23, 0), utc(2025, 3, 1, 1, 0), true},
		{"ends at window start", utc(2025, 2, 28, 23, 0), utc(2025, 3, 1, 0, 0), false},
		{"starts at window end", utc(2025, 4, 1, 0, 0), utc(2025, 4, 1, 1, 0), false},
		{"zero length inside", utc(2025, 3, 5, 9, 0), utc(2025, 3, 5, 9, 0), true},
		{"zero length at window start", from, from, true},
		{"before", utc(2025, 2, 1, 9, 0), utc(2025, 2, 1, 10, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, overlaps(tt.start, tt.end, from, to))
		})
	}
}

func TestExpand_Daily(t *testing.T) {
	ev := vevent{
		UID:   "daily",
		Start: utc(2025, 2, 27, 8, 0),
		End:   utc(2025, 2, 27, 9, 0),
		RRule: "FREQ=DAILY;COUNT=5",
		ExDates: []time.Time{
			utc(2025, 3, 2, 8, 0),
		},
	}

	occ, errs := expand([]vevent{ev}, utc(2025, 3, 1, 0, 0), utc(2025, 4, 1, 0, 0))
	require.Empty(t, errs)

	var ids []string
	for _, o := range occ {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []string{"daily_20250301T080000Z", "daily_20250303T080000Z"}, ids)
}

func TestExpand_CancelledOverride(t *testing.T) {
	rid := utc(2025, 3, 10, 9, 0)
	events := []vevent{
		{UID: "w", Start: utc(2025, 3, 3, 9, 0), End: utc(2025, 3, 3, 10, 0), RRule: "FREQ=WEEKLY;COUNT=3"},
		{UID: "w", Start: rid, End: rid.Add(time.Hour), Recurrence: &rid, Cancelled: true},
	}

	occ, errs := expand(events, utc(2025, 3, 1, 0, 0), utc(2025, 4, 1, 0, 0))
	require.Empty(t, errs)
	require.Len(t, occ, 2)
	assert.Equal(t, utc(2025, 3, 3, 9, 0), occ[0].Start)
	assert.Equal(t, utc(2025, 3, 17, 9, 0), occ[1].Start)
}

func TestExpand_InvalidRule(t *testing.T) {
	events := []vevent{
		{UID: "bad", Start: utc(2025, 3, 3, 9, 0), End: utc(2025, 3, 3, 10, 0), RRule: "FREQ=SOMETIMES"},
		{UID: "ok", Start: utc(2025, 3, 4, 9, 0), End: utc(2025, 3, 4, 10, 0)},
	}

	occ, errs := expand(events, utc(2025, 3, 1, 0, 0), utc(2025, 4, 1, 0, 0))
	require.Len(t, errs, 1)
	require.Len(t, occ, 1)
	assert.Equal(t, "ok", occ[0].ID)
}

func TestParseICSTime(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"20250317T090000Z", utc(2025, 3, 17, 9, 0)},
		{"20250317T090000", time.Date(2025, 3, 17, 9, 0, 0, 0, berlin)},
		{"20250317", time.Date(2025, 3, 17, 0, 0, 0, 0, berlin)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseICSTime(tt.in, berlin)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}

	_, err = parseICSTime("  ", berlin)
	assert.Error(t, err)
}

func TestParseFeed(t *testing.T) {
	events, skipped, err := parseFeed([]byte(crlf(testFeed)), time.UTC)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Len(t, events, 6)

	_, _, err = parseFeed(nil, time.UTC)
	assert.Error(t, err)
}

func TestParseFeed_SkipsEventsWithoutUID(t *testing.T) {
	feed := `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
DTSTART:20250305T140000Z
SUMMARY:No UID
END:VEVENT
BEGIN:VEVENT
UID:x
DTSTART:20250305T140000Z
SUMMARY:Fine
END:VEVENT
END:VCALENDAR
`
	events, skipped, err := parseFeed([]byte(crlf(feed)), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, events, 1)
	assert.Equal(t, "Fine", events[0].Summary)
}
