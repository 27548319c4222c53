package cmd

import (
	"fmt"
	"log/slog"

	"github.com/teemow/calview/internal/calendar"
	"github.com/teemow/calview/internal/config"
	"github.com/teemow/calview/internal/google"
	"github.com/teemow/calview/internal/ics"
	"github.com/teemow/calview/internal/instrumentation"
	"github.com/teemow/calview/internal/logging"
	"github.com/teemow/calview/internal/monthgrid"
	"github.com/teemow/calview/internal/view"
)

// newFormatter builds the label formatter for cfg's locale and time zone.
func newFormatter(cfg *config.Config) (*monthgrid.Formatter, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return monthgrid.NewFormatter(monthgrid.ResolveLocale(cfg.Locale), loc, cfg.ProviderName), nil
}

// newAuthenticator builds the Google sign-in flow from cfg.
func newAuthenticator(cfg *config.Config, logger *slog.Logger) *google.Authenticator {
	return google.NewAuthenticator(google.OAuthConfig{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
		Scopes:       cfg.Google.Scopes,
	}, google.NewFileTokenStore(cfg.Google.TokenDir), logger)
}

// eventSource is the event source selected by the config, plus the ICS
// source itself when that is the one in use.
type eventSource struct {
	view.EventSource
	ics *ics.Source
}

// newEventSource builds the event source named by cfg.EventSource.
func newEventSource(cfg *config.Config, auth *google.Authenticator, metrics *instrumentation.Metrics, logger *slog.Logger) (eventSource, error) {
	loc, err := cfg.Location()
	if err != nil {
		return eventSource{}, err
	}

	switch cfg.EventSource {
	case config.EventSourceGoogle:
		return eventSource{EventSource: calendar.NewSource(auth, calendar.SourceConfig{
			CalendarID: cfg.Google.CalendarID,
			Location:   loc,
			Metrics:    metrics,
			Logger:     logger,
		})}, nil

	case config.EventSourceICS:
		src, err := ics.NewSource(ics.Config{
			URL:      cfg.ICS.URL,
			CacheDir: cfg.ICS.CacheDir,
			Location: loc,
			Metrics:  metrics,
			Logger:   logging.NewSlogAdapter(logger, "ics_source"),
		})
		if err != nil {
			return eventSource{}, err
		}
		return eventSource{EventSource: src, ics: src}, nil

	default:
		return eventSource{}, fmt.Errorf("unknown event source %q", cfg.EventSource)
	}
}
