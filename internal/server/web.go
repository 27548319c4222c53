package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/teemow/calview/internal/google"
	"github.com/teemow/calview/internal/instrumentation"
	"github.com/teemow/calview/internal/logging"
	"github.com/teemow/calview/internal/monthgrid"
	"github.com/teemow/calview/internal/view"
)

const (
	// DefaultWebAddr is the default listen address of the web UI.
	DefaultWebAddr = "127.0.0.1:8080"

	// DefaultLogoURL is the embedded Google logo.
	DefaultLogoURL = "/static/google_logo.svg"

	// UserIDHeader carries the CRM user id of the viewer.
	UserIDHeader = "X-User-Id"

	defaultWebReadTimeout  = 10 * time.Second
	defaultWebWriteTimeout = 30 * time.Second
	defaultWebIdleTimeout  = 120 * time.Second
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var knownRoutes = []string{
	"/",
	"/login",
	"/login/google",
	"/oauth2/callback",
	"/api/status",
	"/api/calendar",
	"/healthz",
	"/readyz",
	"/healthz/detailed",
	DefaultLogoURL,
}

// WebServerConfig configures the web UI server.
type WebServerConfig struct {
	Addr   string
	Health *HealthChecker
}

// WebServer serves the login screen, the calendar tab and their JSON API.
type WebServer struct {
	sc        *ServerContext
	addr      string
	health    *HealthChecker
	templates *template.Template
	logger    *slog.Logger
	handler   http.Handler

	mu         sync.Mutex
	httpServer *http.Server
	listenAddr string
}

type pageData struct {
	Lang    string
	Title   string
	LogoURL string
	View    view.MonthView
}

// NewWebServer creates the web UI server.
func NewWebServer(sc *ServerContext, config WebServerConfig) (*WebServer, error) {
	if sc == nil {
		return nil, errors.New("server context is required")
	}
	if config.Addr == "" {
		config.Addr = DefaultWebAddr
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"eventLink": view.EventLink,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &WebServer{
		sc:        sc,
		addr:      config.Addr,
		health:    config.Health,
		templates: tmpl,
		logger:    logging.WithComponent(sc.Logger(), "web"),
	}
	s.handler = s.instrument(s.routes())
	return s, nil
}

func (s *WebServer) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /login", s.handleLogin)
	mux.HandleFunc("GET /login/google", s.handleGoogleLogin)
	mux.HandleFunc("GET /oauth2/callback", s.handleOAuthCallback)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/calendar", s.handleCalendar)

	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	if s.health != nil {
		s.health.RegisterHealthEndpoints(mux)
	}
	return mux
}

// Handler returns the instrumented handler of the web UI.
func (s *WebServer) Handler() http.Handler {
	return s.handler
}

// Start serves until Shutdown.
func (s *WebServer) Start() error {
	return s.StartWithReadySignal(nil)
}

// StartWithReadySignal binds the listener, closes ready (if not nil) once
// connections are accepted, then serves until Shutdown.
func (s *WebServer) StartWithReadySignal(ready chan<- struct{}) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: defaultWebReadTimeout,
		WriteTimeout:      defaultWebWriteTimeout,
		IdleTimeout:       defaultWebIdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return s.sc.Context() },
	}

	s.mu.Lock()
	s.httpServer = srv
	s.listenAddr = ln.Addr().String()
	s.mu.Unlock()

	s.logger.Info("starting web server", "addr", s.ListenAddr())
	if ready != nil {
		close(ready)
	}
	return srv.Serve(ln)
}

// Shutdown gracefully shuts down the web server.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	s.logger.Info("shutting down web server")
	return srv.Shutdown(ctx)
}

// ListenAddr returns the bound address once listening, else the configured one.
func (s *WebServer) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listenAddr != "" {
		return s.listenAddr
	}
	return s.addr
}

func (s *WebServer) userID(r *http.Request) string {
	if u := strings.TrimSpace(r.Header.Get(UserIDHeader)); u != "" {
		return u
	}
	return s.sc.DefaultUser()
}

func (s *WebServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := s.userID(r)

	tab := s.sc.NewCalendarTab().Check(ctx, user)
	if !tab.SignedIn {
		s.renderLogin(w)
		return
	}

	cal := s.sc.NewMonthCalendar(user)
	mv, err := navigate(ctx, cal, r.URL.Query().Get("month"), r.URL.Query().Get("nav"))
	if err != nil {
		mv = cal.Load(ctx)
	}
	s.render(w, "calendar.html", pageData{Title: mv.Label, View: mv})
}

func (s *WebServer) handleLogin(w http.ResponseWriter, _ *http.Request) {
	s.renderLogin(w)
}

func (s *WebServer) renderLogin(w http.ResponseWriter) {
	s.render(w, "login.html", pageData{Title: "Google Calendar", LogoURL: s.sc.LogoURL()})
}

func (s *WebServer) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := google.ContextWithAccount(r.Context(), s.userID(r))

	screen := s.sc.NewLoginScreen()
	screen.Init(ctx)
	authURL, ok := screen.Login()
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (s *WebServer) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	if e := q.Get("error"); e != "" {
		s.logger.WarnContext(ctx, "OAuth consent was not granted", "oauth_error", e)
		s.sc.Metrics().RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	exchanger := s.sc.Exchanger()
	if exchanger == nil {
		http.Error(w, "sign-in is not configured", http.StatusNotFound)
		return
	}

	account, err := exchanger.Exchange(ctx, q.Get("state"), q.Get("code"))
	if err != nil {
		s.logger.WarnContext(ctx, "OAuth code exchange failed", logging.Err(err))
		s.sc.Metrics().RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		status := http.StatusBadGateway
		if errors.Is(err, google.ErrInvalidState) {
			status = http.StatusBadRequest
		}
		http.Error(w, "sign-in failed, please try again", status)
		return
	}

	s.sc.Metrics().RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)
	s.logger.InfoContext(ctx, "Google sign-in completed", logging.UserHash(account))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	tab := s.sc.NewCalendarTab().Check(r.Context(), s.userID(r))
	writeJSON(w, http.StatusOK, map[string]bool{"signedIn": tab.SignedIn})
}

func (s *WebServer) handleCalendar(w http.ResponseWriter, r *http.Request) {
	cal := s.sc.NewMonthCalendar(s.userID(r))
	mv, err := navigate(r.Context(), cal, r.URL.Query().Get("month"), r.URL.Query().Get("nav"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, mv)
}

// navigate loads month ("YYYY-MM", empty for the current month) shifted by
// nav ("prev", "next", "today" or empty).
func navigate(ctx context.Context, cal *view.MonthCalendar, month, nav string) (view.MonthView, error) {
	ref := cal.Current()
	if month != "" {
		var err error
		if ref, err = monthgrid.ParseYearMonth(month); err != nil {
			return view.MonthView{}, err
		}
	}

	switch nav {
	case "":
	case "prev":
		ref = ref.AddMonths(-1)
	case "next":
		ref = ref.AddMonths(1)
	case "today":
		return cal.Today(ctx), nil
	default:
		return view.MonthView{}, fmt.Errorf("invalid nav %q", nav)
	}
	return cal.LoadMonth(ctx, ref), nil
}

func (s *WebServer) render(w http.ResponseWriter, name string, data pageData) {
	data.Lang = s.sc.Formatter().Locale.Tag.String()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("Failed to render template", "template", name, logging.Err(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument records a server span and the request metrics for every request.
func (s *WebServer) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := instrumentation.NormalizeRoute(r.URL.Path, knownRoutes)
		ctx, span := instrumentation.StartServerSpan(r.Context(), r.Method, route)
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))
		duration := time.Since(start)

		if rec.status >= http.StatusInternalServerError {
			instrumentation.SetSpanError(span, fmt.Errorf("http status %d", rec.status))
		}
		s.sc.Metrics().RecordHTTPRequest(ctx, r.Method, route, rec.status, duration)
		s.logger.DebugContext(ctx, "HTTP request",
			"method", r.Method,
			"route", route,
			"status", rec.status,
			slog.Duration(logging.KeyDuration, duration))
	})
}
