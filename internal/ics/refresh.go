package ics

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/teemow/calview/internal/logging"
)

// DefaultRefreshSchedule refreshes the feed every fifteen minutes.
const DefaultRefreshSchedule = "*/15 * * * *"

// Refresher keeps a Source's cache warm on a cron schedule.
type Refresher struct {
	cron    *cron.Cron
	source  *Source
	timeout time.Duration
	logger  logging.Logger
}

// NewRefresher schedules source.Refresh according to the standard five-field
// cron expression schedule, evaluated in loc.
func NewRefresher(source *Source, schedule string, loc *time.Location, logger logging.Logger) (*Refresher, error) {
	if schedule == "" {
		schedule = DefaultRefreshSchedule
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = logging.NewSlogAdapter(nil, "ics_refresh")
	}

	r := &Refresher{
		cron:    cron.New(cron.WithLocation(loc)),
		source:  source,
		timeout: DefaultTimeout,
		logger:  logger,
	}
	if _, err := r.cron.AddFunc(schedule, r.run); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	return r, nil
}

// Start warms the cache once and starts the schedule.
func (r *Refresher) Start() {
	go r.run()
	r.cron.Start()
	r.logger.Info("ics refresher started", "entries", len(r.cron.Entries()))
}

// Stop stops the schedule and waits for a running refresh to finish or ctx
// to expire.
func (r *Refresher) Stop(ctx context.Context) {
	done := r.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	r.logger.Info("ics refresher stopped")
}

func (r *Refresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	start := time.Now()
	if err := r.source.Refresh(ctx); err != nil {
		r.logger.Warn("ics refresh failed", "url", redactURL(r.source.url), "error", err.Error())
		return
	}
	r.logger.Debug("ics refresh complete", "duration", time.Since(start).String())
}
