package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/calview/internal/logging"
	"github.com/teemow/calview/internal/monthgrid"
)

type staticClients struct {
	client *http.Client
	err    error
}

func (s staticClients) HTTPClient(_ context.Context, _ string) (*http.Client, error) {
	return s.client, s.err
}

type fakeCalendarAPI struct {
	mu      sync.Mutex
	queries []map[string]string
	pages   map[string]*calendar.Events
	status  int
}

func (f *fakeCalendarAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, "/events") {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()

	f.mu.Lock()
	f.queries = append(f.queries, map[string]string{
		"path":         r.URL.Path,
		"timeMin":      q.Get("timeMin"),
		"timeMax":      q.Get("timeMax"),
		"singleEvents": q.Get("singleEvents"),
		"orderBy":      q.Get("orderBy"),
		"pageToken":    q.Get("pageToken"),
	})
	f.mu.Unlock()

	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"quota exceeded"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(f.pages[q.Get("pageToken")])
}

func newTestSource(t *testing.T, api *fakeCalendarAPI, loc *time.Location) *Source {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	return NewSource(staticClients{client: srv.Client()}, SourceConfig{
		Location:      loc,
		ClientOptions: []option.ClientOption{option.WithEndpoint(srv.URL + "/")},
	})
}

func TestSource_FetchMonthlyEvents(t *testing.T) {
	api := &fakeCalendarAPI{pages: map[string]*calendar.Events{
		"": {
			Items: []*calendar.Event{
				{
					Id:       "evt-1",
					Summary:  "Sync",
					HtmlLink: "https://www.google.com/calendar/event?eid=1",
					Start:    &calendar.EventDateTime{DateTime: "2025-02-03T14:30:00Z"},
					End:      &calendar.EventDateTime{DateTime: "2025-02-03T15:00:00Z"},
				},
				{
					Id:     "evt-cancelled",
					Status: "cancelled",
					Start:  &calendar.EventDateTime{DateTime: "2025-02-04T09:00:00Z"},
				},
			},
			NextPageToken: "page-2",
		},
		"page-2": {
			Items: []*calendar.Event{
				{
					Id:      "evt-2",
					Summary: "Holiday",
					Start:   &calendar.EventDateTime{Date: "2025-02-17"},
					End:     &calendar.EventDateTime{Date: "2025-02-18"},
				},
			},
		},
	}}
	src := newTestSource(t, api, time.UTC)

	events, err := src.FetchMonthlyEvents(context.Background(), "jane", "2025-02")
	require.NoError(t, err)

	assert.Equal(t, []monthgrid.RawEvent{
		{
			EventID:        "evt-1",
			Label:          "Sync",
			HTMLLink:       "https://www.google.com/calendar/event?eid=1",
			EventStartTime: "2025-02-03T14:30:00Z",
			EventEndTime:   "2025-02-03T15:00:00Z",
		},
		{
			EventID:        "evt-2",
			Label:          "Holiday",
			IsAllDay:       true,
			EventStartTime: "2025-02-17",
			EventEndTime:   "2025-02-18",
		},
	}, events)

	require.Len(t, api.queries, 2)
	first := api.queries[0]
	assert.Equal(t, "/calendars/primary/events", first["path"])
	assert.Equal(t, "2025-02-01T00:00:00Z", first["timeMin"])
	assert.Equal(t, "2025-03-01T00:00:00Z", first["timeMax"])
	assert.Equal(t, "true", first["singleEvents"])
	assert.Equal(t, "startTime", first["orderBy"])
	assert.Equal(t, "page-2", api.queries[1]["pageToken"])
}

func TestSource_MonthWindowUsesLocation(t *testing.T) {
	api := &fakeCalendarAPI{pages: map[string]*calendar.Events{"": {}}}
	berlin := time.FixedZone("CET", 60*60)
	src := newTestSource(t, api, berlin)

	_, err := src.FetchMonthlyEvents(context.Background(), "jane", "2024-12")
	require.NoError(t, err)

	require.Len(t, api.queries, 1)
	assert.Equal(t, "2024-12-01T00:00:00+01:00", api.queries[0]["timeMin"])
	assert.Equal(t, "2025-01-01T00:00:00+01:00", api.queries[0]["timeMax"])
}

func TestSource_Errors(t *testing.T) {
	t.Run("invalid month", func(t *testing.T) {
		src := newTestSource(t, &fakeCalendarAPI{}, time.UTC)
		_, err := src.FetchMonthlyEvents(context.Background(), "jane", "February")
		assert.ErrorIs(t, err, monthgrid.ErrInvalidYearMonth)
	})

	t.Run("no token", func(t *testing.T) {
		errNoToken := errors.New("no token")
		src := NewSource(staticClients{err: errNoToken}, SourceConfig{})
		_, err := src.FetchMonthlyEvents(context.Background(), "jane", "2025-02")
		assert.ErrorIs(t, err, errNoToken)
	})

	t.Run("api error", func(t *testing.T) {
		src := newTestSource(t, &fakeCalendarAPI{status: http.StatusForbidden}, time.UTC)
		_, err := src.FetchMonthlyEvents(context.Background(), "jane", "2025-02")
		require.Error(t, err)
		assert.ErrorContains(t, err, "failed to list events for "+logging.AnonymizeUser("jane"))
		assert.NotContains(t, err.Error(), "jane")
	})
}

func TestSource_LogsOperation(t *testing.T) {
	srv := httptest.NewServer(&fakeCalendarAPI{pages: map[string]*calendar.Events{"": {}}})
	t.Cleanup(srv.Close)

	var buf bytes.Buffer
	src := NewSource(staticClients{client: srv.Client()}, SourceConfig{
		Location:      time.UTC,
		ClientOptions: []option.ClientOption{option.WithEndpoint(srv.URL + "/")},
		Logger:        slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})

	events, err := src.FetchMonthlyEvents(context.Background(), "jane", "2025-02")
	require.NoError(t, err)
	assert.Empty(t, events)

	out := buf.String()
	assert.Contains(t, out, `"operation":"`+OperationFetchMonthly+`"`)
	assert.Contains(t, out, `"component":"google_calendar"`)
	assert.NotContains(t, out, "jane")
}

func TestToRawEvent(t *testing.T) {
	assert.Equal(t, monthgrid.RawEvent{}, toRawEvent(nil))

	raw := toRawEvent(&calendar.Event{Id: "x"})
	assert.Equal(t, "x", raw.EventID)
	assert.Empty(t, raw.EventStartTime, "events without a start stay startless and are dropped by the grid")
	assert.False(t, raw.IsAllDay)
}

func TestSource_Name(t *testing.T) {
	assert.Equal(t, "google", NewSource(staticClients{}, SourceConfig{}).Name())
}
