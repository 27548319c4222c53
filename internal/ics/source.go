package ics

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/teemow/calview/internal/instrumentation"
	"github.com/teemow/calview/internal/logging"
	"github.com/teemow/calview/internal/monthgrid"
)

// SourceName identifies this event source in logs and metrics.
const SourceName = "ics"

// DefaultTimeout bounds a single feed request.
const DefaultTimeout = 15 * time.Second

// Config configures a Source.
type Config struct {
	// URL is the ICS subscription URL. webcal:// is rewritten to https://.
	URL string
	// CacheDir persists the last good feed body across restarts. Empty
	// keeps the cache in memory only.
	CacheDir string
	// HTTPClient defaults to a client with DefaultTimeout.
	HTTPClient *http.Client
	// Location is the display time zone. Floating and all-day values are
	// read in it.
	Location *time.Location

	Metrics *instrumentation.Metrics
	Logger  logging.Logger
}

// Source serves monthly events from one ICS subscription. The feed is
// shared by every user.
type Source struct {
	url      string
	cacheDir string
	client   *http.Client
	loc      *time.Location
	metrics  *instrumentation.Metrics
	logger   logging.Logger

	mu   sync.Mutex
	meta cacheMeta
	body []byte
}

// NewSource creates an ICS event source.
func NewSource(cfg Config) (*Source, error) {
	if cfg.URL == "" {
		return nil, errors.New("ICS URL is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewSlogAdapter(nil, "ics_source")
	}
	return &Source{
		url:      normalizeFeedURL(cfg.URL),
		cacheDir: cfg.CacheDir,
		client:   client,
		loc:      loc,
		metrics:  cfg.Metrics,
		logger:   logger,
	}, nil
}

// Name returns SourceName.
func (s *Source) Name() string {
	return SourceName
}

// FetchMonthlyEvents returns the feed's event instances that overlap the
// month yearMonth ("YYYY-MM"), ordered by start time. user is ignored.
func (s *Source) FetchMonthlyEvents(ctx context.Context, user, yearMonth string) ([]monthgrid.RawEvent, error) {
	ref, err := monthgrid.ParseYearMonth(yearMonth)
	if err != nil {
		return nil, err
	}
	from, to := ref.Bounds(s.loc)

	ctx, span := instrumentation.StartSpan(ctx, "ics.fetch_monthly_events",
		instrumentation.NewSpanAttributeBuilder().WithSource(SourceName).WithMonth(yearMonth).Build()...)
	defer span.End()

	body, err := s.fetch(ctx)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}

	events, skipped, err := parseFeed(body, s.loc)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}
	if skipped > 0 {
		s.logger.Warn("ics events skipped", "url", redactURL(s.url), "skipped", skipped)
		s.metrics.RecordEventsSkipped(ctx, SourceName, skipped)
	}

	occ, errs := expand(events, from, to)
	for _, e := range errs {
		s.logger.Warn("ics recurrence expansion failed", "url", redactURL(s.url), "error", e.Error())
	}

	raw := make([]monthgrid.RawEvent, 0, len(occ))
	for _, o := range occ {
		raw = append(raw, s.toRawEvent(o))
	}

	instrumentation.SetSpanSuccess(span)
	s.logger.Debug("ics monthly events", "month", yearMonth, "count", len(raw))
	return raw, nil
}

// Refresh fetches the feed into the cache so that later month loads can be
// served without waiting on the network.
func (s *Source) Refresh(ctx context.Context) error {
	_, err := s.fetch(ctx)
	return err
}

func (s *Source) toRawEvent(o occurrence) monthgrid.RawEvent {
	ev := monthgrid.RawEvent{
		EventID:  o.ID,
		Label:    o.Event.Summary,
		HTMLLink: o.Event.URL,
		IsAllDay: o.AllDay,
	}
	if o.AllDay {
		ev.EventStartTime = o.Start.In(s.loc).Format(time.DateOnly)
		ev.EventEndTime = o.End.In(s.loc).Format(time.DateOnly)
	} else {
		ev.EventStartTime = o.Start.In(s.loc).Format(time.RFC3339)
		ev.EventEndTime = o.End.In(s.loc).Format(time.RFC3339)
	}
	return ev
}

func normalizeFeedURL(u string) string {
	const webcal = "webcal://"
	if rest, ok := strings.CutPrefix(u, webcal); ok {
		return "https://" + rest
	}
	return u
}
