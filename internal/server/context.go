package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/teemow/calview/internal/google"
	"github.com/teemow/calview/internal/instrumentation"
	"github.com/teemow/calview/internal/monthgrid"
	"github.com/teemow/calview/internal/view"
)

// CodeExchanger completes an OAuth consent round trip and returns the
// account the new token belongs to.
type CodeExchanger interface {
	Exchange(ctx context.Context, state, code string) (string, error)
}

// Authenticator is everything the web UI needs from the Google sign-in flow.
// google.Authenticator implements it.
type Authenticator interface {
	view.AuthURLProvider
	view.SignInChecker
	CodeExchanger
}

// Dependencies are the collaborators shared by every request.
type Dependencies struct {
	Source    view.EventSource
	Auth      Authenticator
	Formatter *monthgrid.Formatter
	// SignInNotRequired makes every user count as signed in. Set for event
	// sources that do not use Google sign-in.
	SignInNotRequired bool
	// DefaultUser is used when a request does not name a user.
	DefaultUser string
	LogoURL     string
	// Now defaults to time.Now.
	Now func() time.Time

	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
}

// ServerContext holds the shared dependencies of the web UI and its
// shutdown state.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc
	deps   Dependencies

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context.
func NewServerContext(ctx context.Context, deps Dependencies) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	if deps.Formatter == nil {
		deps.Formatter = monthgrid.NewFormatter(monthgrid.DefaultLocale(), time.Local, "")
	}
	if deps.DefaultUser == "" {
		deps.DefaultUser = google.DefaultAccount
	}
	if deps.LogoURL == "" {
		deps.LogoURL = DefaultLogoURL
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		deps:   deps,
	}
}

// Context returns the server context. It is cancelled on Shutdown.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// DefaultUser returns the user assumed when a request names none.
func (sc *ServerContext) DefaultUser() string {
	return sc.deps.DefaultUser
}

// LogoURL returns the login screen logo.
func (sc *ServerContext) LogoURL() string {
	return sc.deps.LogoURL
}

// Formatter returns the shared label formatter.
func (sc *ServerContext) Formatter() *monthgrid.Formatter {
	return sc.deps.Formatter
}

// Metrics returns the metrics recorder. It may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.deps.Metrics
}

// Logger returns the base logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.deps.Logger
}

// Exchanger returns the OAuth code exchanger, or nil if sign-in is not wired.
func (sc *ServerContext) Exchanger() CodeExchanger {
	if sc.deps.Auth == nil {
		return nil
	}
	return sc.deps.Auth
}

// HasEventSource reports whether an event source is configured.
func (sc *ServerContext) HasEventSource() bool {
	return sc.deps.Source != nil
}

// EventSourceName returns the configured event source's name.
func (sc *ServerContext) EventSourceName() string {
	if n, ok := sc.deps.Source.(view.NamedSource); ok {
		return n.Name()
	}
	return ""
}

// NewMonthCalendar returns a month calendar for userID.
func (sc *ServerContext) NewMonthCalendar(userID string) *view.MonthCalendar {
	return view.NewMonthCalendar(view.MonthCalendarConfig{
		Source:    sc.deps.Source,
		Formatter: sc.deps.Formatter,
		UserID:    userID,
		Now:       sc.deps.Now,
		Metrics:   sc.deps.Metrics,
		Logger:    sc.deps.Logger,
	})
}

// NewLoginScreen returns a login screen bound to the sign-in provider.
func (sc *ServerContext) NewLoginScreen() *view.LoginScreen {
	var provider view.AuthURLProvider
	if sc.deps.Auth != nil {
		provider = sc.deps.Auth
	}
	return view.NewLoginScreen(provider, sc.deps.LogoURL, sc.deps.Logger)
}

// NewCalendarTab returns a calendar tab bound to the sign-in checker.
func (sc *ServerContext) NewCalendarTab() *view.CalendarTab {
	var checker view.SignInChecker
	switch {
	case sc.deps.SignInNotRequired:
		checker = view.StaticSignIn(true)
	case sc.deps.Auth != nil:
		checker = sc.deps.Auth
	}
	return view.NewCalendarTab(checker, sc.deps.Logger)
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
