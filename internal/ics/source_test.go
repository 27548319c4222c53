package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calview/internal/logging"
	"github.com/teemow/calview/internal/monthgrid"
)

const testFeed = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//calview//test//EN
BEGIN:VEVENT
UID:single-1
DTSTAMP:20250101T000000Z
DTSTART:20250305T140000Z
DTEND:20250305T150000Z
SUMMARY:Sync
URL:https://example.com/e/single-1
END:VEVENT
BEGIN:VEVENT
UID:holiday-1
DTSTAMP:20250101T000000Z
DTSTART;VALUE=DATE:20250317
DTEND;VALUE=DATE:20250318
SUMMARY:Holiday
END:VEVENT
BEGIN:VEVENT
UID:weekly-1
DTSTAMP:20250101T000000Z
DTSTART:20250303T090000Z
DTEND:20250303T093000Z
RRULE:FREQ=WEEKLY;COUNT=10
EXDATE:20250310T090000Z
SUMMARY:Standup
END:VEVENT
BEGIN:VEVENT
UID:weekly-1
DTSTAMP:20250101T000000Z
RECURRENCE-ID:20250317T090000Z
DTSTART:20250317T110000Z
DTEND:20250317T113000Z
SUMMARY:Standup (moved)
END:VEVENT
BEGIN:VEVENT
UID:cancelled-1
DTSTAMP:20250101T000000Z
DTSTART:20250320T090000Z
DTEND:20250320T100000Z
STATUS:CANCELLED
SUMMARY:Dropped
END:VEVENT
BEGIN:VEVENT
UID:april-1
DTSTAMP:20250101T000000Z
DTSTART:20250410T090000Z
DTEND:20250410T100000Z
SUMMARY:April
END:VEVENT
END:VCALENDAR
`

func crlf(s string) string {
	return strings.ReplaceAll(s, "\n", "\r\n")
}

type fakeFeed struct {
	mu       sync.Mutex
	body     string
	etag     string
	fail     bool
	requests int
	notMod   int
}

func (f *fakeFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++

	if f.fail {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}
	if f.etag != "" && r.Header.Get("If-None-Match") == f.etag {
		f.notMod++
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if f.etag != "" {
		w.Header().Set("ETag", f.etag)
	}
	w.Header().Set("Content-Type", "text/calendar")
	_, _ = w.Write([]byte(crlf(f.body)))
}

func (f *fakeFeed) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func newTestSource(t *testing.T, url, cacheDir string) *Source {
	t.Helper()
	src, err := NewSource(Config{
		URL:      url,
		CacheDir: cacheDir,
		Location: time.UTC,
		Logger:   logging.Discard(),
	})
	require.NoError(t, err)
	return src
}

func TestSource_FetchMonthlyEvents(t *testing.T) {
	feed := &fakeFeed{body: testFeed}
	srv := httptest.NewServer(feed)
	defer srv.Close()

	src := newTestSource(t, srv.URL+"/cal.ics", "")
	events, err := src.FetchMonthlyEvents(context.Background(), "anyone", "2025-03")
	require.NoError(t, err)

	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.EventID)
	}
	assert.Equal(t, []string{
		"weekly-1_20250303T090000Z",
		"single-1",
		"holiday-1",
		"weekly-1_20250317T090000Z",
		"weekly-1_20250324T090000Z",
		"weekly-1_20250331T090000Z",
	}, ids)

	assert.Equal(t, monthgrid.RawEvent{
		EventID:        "single-1",
		EventStartTime: "2025-03-05T14:00:00Z",
		EventEndTime:   "2025-03-05T15:00:00Z",
		Label:          "Sync",
		HTMLLink:       "https://example.com/e/single-1",
	}, events[1])

	holiday := events[2]
	assert.True(t, holiday.IsAllDay)
	assert.Equal(t, "2025-03-17", holiday.EventStartTime)
	assert.Equal(t, "Holiday", holiday.Label)

	moved := events[3]
	assert.Equal(t, "Standup (moved)", moved.Label)
	assert.Equal(t, "2025-03-17T11:00:00Z", moved.EventStartTime)
}

func TestSource_GroupsIntoGrid(t *testing.T) {
	srv := httptest.NewServer(&fakeFeed{body: testFeed})
	defer srv.Close()

	src := newTestSource(t, srv.URL, "")
	events, err := src.FetchMonthlyEvents(context.Background(), "", "2025-03")
	require.NoError(t, err)

	f := monthgrid.NewFormatter(monthgrid.DefaultLocale(), time.UTC, "Google")
	byDay := f.GroupEventsByDay(events)
	require.Len(t, byDay["2025-03-17"], 2)
	assert.Equal(t, "Holiday", byDay["2025-03-17"][0].Label)
	assert.Empty(t, byDay["2025-03-10"])
	assert.Empty(t, byDay["2025-03-20"])
}

func TestSource_ConditionalRequests(t *testing.T) {
	feed := &fakeFeed{body: testFeed, etag: `"v1"`}
	srv := httptest.NewServer(feed)
	defer srv.Close()

	src := newTestSource(t, srv.URL, "")
	ctx := context.Background()

	first, err := src.FetchMonthlyEvents(ctx, "", "2025-03")
	require.NoError(t, err)
	second, err := src.FetchMonthlyEvents(ctx, "", "2025-03")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, feed.requests)
	assert.Equal(t, 1, feed.notMod)
}

func TestSource_FallsBackToCache(t *testing.T) {
	feed := &fakeFeed{body: testFeed}
	srv := httptest.NewServer(feed)
	defer srv.Close()

	src := newTestSource(t, srv.URL, "")
	ctx := context.Background()
	require.NoError(t, src.Refresh(ctx))

	feed.setFail(true)
	events, err := src.FetchMonthlyEvents(ctx, "", "2025-03")
	require.NoError(t, err)
	assert.Len(t, events, 6)
}

func TestSource_ErrorWithoutCache(t *testing.T) {
	feed := &fakeFeed{body: testFeed, fail: true}
	srv := httptest.NewServer(feed)
	defer srv.Close()

	src := newTestSource(t, srv.URL, "")
	_, err := src.FetchMonthlyEvents(context.Background(), "", "2025-03")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestSource_DiskCache(t *testing.T) {
	feed := &fakeFeed{body: testFeed, etag: `"v1"`}
	srv := httptest.NewServer(feed)
	defer srv.Close()

	dir := t.TempDir()
	ctx := context.Background()
	require.NoError(t, newTestSource(t, srv.URL, dir).Refresh(ctx))

	feed.setFail(true)
	restarted := newTestSource(t, srv.URL, dir)
	events, err := restarted.FetchMonthlyEvents(ctx, "", "2025-03")
	require.NoError(t, err)
	assert.Len(t, events, 6)
}

func TestSource_InvalidMonth(t *testing.T) {
	src := newTestSource(t, "https://example.com/cal.ics", "")
	_, err := src.FetchMonthlyEvents(context.Background(), "", "2025-13")
	assert.ErrorIs(t, err, monthgrid.ErrInvalidYearMonth)
}

func TestNewSource(t *testing.T) {
	_, err := NewSource(Config{})
	assert.Error(t, err)

	src, err := NewSource(Config{URL: "webcal://example.com/feed.ics"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/feed.ics", src.url)
	assert.Equal(t, SourceName, src.Name())
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://calendar.example.com/private/abc123/basic.ics", "https://calendar.example.com/...(redacted)"},
		{"http://host:8080/feed?token=secret", "http://host:8080/...(redacted)"},
		{"not a url", "ics://...(redacted)"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, redactURL(tt.in))
		})
	}
}
