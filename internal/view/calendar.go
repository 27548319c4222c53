package view

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/teemow/calview/internal/instrumentation"
	"github.com/teemow/calview/internal/logging"
	"github.com/teemow/calview/internal/monthgrid"
)

// MonthView is a render-ready snapshot of the month calendar.
type MonthView struct {
	Month      string                        `json:"month"`
	Year       int                           `json:"year"`
	MonthIndex int                           `json:"monthIndex"`
	Label      string                        `json:"label"`
	Weekdays   [monthgrid.DaysPerWeek]string `json:"weekdays"`
	Weeks      []monthgrid.Week              `json:"weeks"`
	Loading    bool                          `json:"loading"`
	Failed     bool                          `json:"failed"`
	Skipped    int                           `json:"skipped,omitempty"`
}

// MonthCalendarConfig configures a MonthCalendar.
type MonthCalendarConfig struct {
	Source    EventSource
	Formatter *monthgrid.Formatter
	// UserID is passed to the event source on every load.
	UserID string
	// Now defaults to time.Now.
	Now func() time.Time

	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
}

// MonthCalendar is the month view. Every navigation starts a new
// fetch-and-render cycle; a cycle that completes after a newer one started
// is discarded.
type MonthCalendar struct {
	source  EventSource
	srcName string
	format  *monthgrid.Formatter
	userID  string
	now     func() time.Time
	metrics *instrumentation.Metrics
	logger  *slog.Logger

	mu      sync.Mutex
	gen     uint64
	current monthgrid.MonthRef
	view    MonthView
}

// NewMonthCalendar creates a month calendar. Nothing is fetched until Load
// or one of the navigation methods is called.
func NewMonthCalendar(cfg MonthCalendarConfig) *MonthCalendar {
	format := cfg.Formatter
	if format == nil {
		format = monthgrid.NewFormatter(monthgrid.DefaultLocale(), time.Local, "")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &MonthCalendar{
		source:  cfg.Source,
		srcName: sourceName(cfg.Source),
		format:  format,
		userID:  cfg.UserID,
		now:     now,
		metrics: cfg.Metrics,
		logger:  logging.WithComponent(logger, "month_calendar"),
	}
	c.current = c.today()
	c.view = c.emptyView(c.current)
	return c
}

// Load loads the current month. It is the entry point called once the
// calendar is shown.
func (c *MonthCalendar) Load(ctx context.Context) MonthView {
	return c.LoadMonth(ctx, c.today())
}

// Today navigates to the current month.
func (c *MonthCalendar) Today(ctx context.Context) MonthView {
	return c.LoadMonth(ctx, c.today())
}

// Prev navigates to the previous month.
func (c *MonthCalendar) Prev(ctx context.Context) MonthView {
	return c.LoadMonth(ctx, c.Current().AddMonths(-1))
}

// Next navigates to the next month.
func (c *MonthCalendar) Next(ctx context.Context) MonthView {
	return c.LoadMonth(ctx, c.Current().AddMonths(1))
}

// Current returns the most recently requested month.
func (c *MonthCalendar) Current() monthgrid.MonthRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// View returns the current snapshot.
func (c *MonthCalendar) View() MonthView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// LoadMonth fetches and renders ref. On fetch failure the view keeps its
// label but has no weeks. The returned view is the calendar's state after
// the call, which is the newer month's state when another load overtook this
// one.
func (c *MonthCalendar) LoadMonth(ctx context.Context, ref monthgrid.MonthRef) MonthView {
	ref = monthgrid.NewMonthRef(ref.Year, ref.MonthIndex)
	yearMonth := ref.YearMonth()

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.current = ref
	c.view.Loading = true
	c.mu.Unlock()

	ctx, span := instrumentation.StartSpan(ctx, "calendar.load_month",
		instrumentation.NewSpanAttributeBuilder().
			WithUser(c.userID).
			WithMonth(yearMonth).
			WithSource(c.srcName).
			Build()...)
	defer span.End()

	start := time.Now()
	next, err := c.render(ctx, ref)
	result := instrumentation.LoadResultSuccess
	if err != nil {
		result = instrumentation.LoadResultDegraded
		instrumentation.SetSpanError(span, err)
		c.logger.WarnContext(ctx, "Failed to load calendar",
			logging.UserHash(c.userID),
			logging.Month(yearMonth),
			logging.Source(c.srcName),
			logging.Err(err))
	} else {
		instrumentation.SetSpanSuccess(span)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.metrics.RecordCalendarLoad(ctx, c.srcName, instrumentation.LoadResultStale, time.Since(start))
		c.logger.DebugContext(ctx, "Discarding superseded calendar load", logging.Month(yearMonth))
		return c.view
	}
	c.metrics.RecordCalendarLoad(ctx, c.srcName, result, time.Since(start))
	c.view = next
	return c.view
}

func (c *MonthCalendar) render(ctx context.Context, ref monthgrid.MonthRef) (MonthView, error) {
	view := c.emptyView(ref)

	if c.source == nil {
		view.Failed = true
		return view, errNoSource
	}

	events, err := c.source.FetchMonthlyEvents(ctx, c.userID, ref.YearMonth())
	if err != nil {
		view.Failed = true
		return view, err
	}

	if skipped := c.format.SkippedEvents(events); skipped > 0 {
		view.Skipped = skipped
		c.metrics.RecordEventsSkipped(ctx, c.srcName, skipped)
		c.logger.DebugContext(ctx, "Skipped events without a start time",
			logging.Month(ref.YearMonth()), slog.Int("skipped", skipped))
	}

	byDay := c.format.GroupEventsByDay(events)
	view.Weeks = monthgrid.BuildMonthGrid(ref.Year, ref.MonthIndex, byDay)
	return view, nil
}

func (c *MonthCalendar) emptyView(ref monthgrid.MonthRef) MonthView {
	return MonthView{
		Month:      ref.YearMonth(),
		Year:       ref.Year,
		MonthIndex: ref.MonthIndex,
		Label:      c.format.FormatMonthLabel(ref.Year, ref.MonthIndex),
		Weekdays:   c.format.Locale.WeekdayHeaders(),
		Weeks:      []monthgrid.Week{},
	}
}

func (c *MonthCalendar) today() monthgrid.MonthRef {
	return monthgrid.MonthRefOf(c.now().In(c.format.Location))
}

// EventLink returns the link to open when an event is clicked, or "" when
// the event has no usable link. Only http and https links are opened.
func EventLink(link string) string {
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	return link
}
