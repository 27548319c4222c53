package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/calview/internal/instrumentation"
	"github.com/teemow/calview/internal/logging"
	"github.com/teemow/calview/internal/monthgrid"
)

// SourceName identifies this event source in logs and metrics.
const SourceName = "google"

// HTTPClientProvider returns an HTTP client authorized for an account.
// google.Authenticator implements it.
type HTTPClientProvider interface {
	HTTPClient(ctx context.Context, account string) (*http.Client, error)
}

// SourceConfig configures a Source.
type SourceConfig struct {
	// CalendarID defaults to "primary".
	CalendarID string
	// Location is the display time zone that month windows are computed in.
	Location *time.Location
	// ClientOptions are appended to every Calendar service. Used by tests to
	// point the client at a fake API.
	ClientOptions []option.ClientOption

	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
}

// OperationFetchMonthly is the operation name attached to fetch logs.
const OperationFetchMonthly = "calendar.fetch_monthly_events"

// Source fetches monthly events from Google Calendar.
type Source struct {
	clients HTTPClientProvider
	cfg     SourceConfig
	logger  *slog.Logger
}

// NewSource creates a Google Calendar event source.
func NewSource(clients HTTPClientProvider, cfg SourceConfig) *Source {
	if cfg.CalendarID == "" {
		cfg.CalendarID = "primary"
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		clients: clients,
		cfg:     cfg,
		logger:  logging.WithComponent(logger, "google_calendar"),
	}
}

// Name returns SourceName.
func (s *Source) Name() string {
	return SourceName
}

// FetchMonthlyEvents returns the events of user's calendar that overlap the
// month yearMonth ("YYYY-MM"), in API order. Cancelled instances are dropped.
func (s *Source) FetchMonthlyEvents(ctx context.Context, user, yearMonth string) ([]monthgrid.RawEvent, error) {
	ref, err := monthgrid.ParseYearMonth(yearMonth)
	if err != nil {
		return nil, err
	}
	timeMin, timeMax := ref.Bounds(s.cfg.Location)

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, instrumentation.OperationList,
		instrumentation.NewSpanAttributeBuilder().WithUser(user).WithMonth(yearMonth).Build()...)
	defer span.End()

	start := time.Now()
	events, err := s.list(ctx, user, timeMin, timeMax)
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	s.cfg.Metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, instrumentation.OperationList, status, time.Since(start))
	if err != nil {
		return nil, err
	}

	raw := make([]monthgrid.RawEvent, 0, len(events))
	for _, ev := range events {
		if isCancelled(ev) {
			continue
		}
		raw = append(raw, toRawEvent(ev))
	}

	logging.WithOperation(s.logger, OperationFetchMonthly).DebugContext(ctx, "Fetched calendar events",
		logging.UserHash(user),
		logging.Month(yearMonth),
		slog.Int("count", len(raw)),
		slog.Duration(logging.KeyDuration, time.Since(start)))
	return raw, nil
}

func (s *Source) list(ctx context.Context, user string, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	httpClient, err := s.clients.HTTPClient(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth client for %s: %w", logging.AnonymizeUser(user), err)
	}

	client, err := NewClient(ctx, user, httpClient, s.cfg.ClientOptions...)
	if err != nil {
		return nil, err
	}
	events, err := client.ListEvents(ctx, s.cfg.CalendarID, timeMin, timeMax)
	if err != nil {
		return nil, fmt.Errorf("failed to list events for %s: %w", logging.AnonymizeUser(client.Account()), err)
	}
	return events, nil
}
