package view

import (
	"context"
	"log/slog"
	"sync"

	"github.com/teemow/calview/internal/logging"
)

// LoginScreen is the "connect your calendar" screen.
type LoginScreen struct {
	provider AuthURLProvider
	logoURL  string
	logger   *slog.Logger

	mu          sync.Mutex
	initialized bool
	authURL     string
}

// NewLoginScreen creates a login screen that shows logoURL and sends the
// user to the consent URL returned by provider.
func NewLoginScreen(provider AuthURLProvider, logoURL string, logger *slog.Logger) *LoginScreen {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginScreen{
		provider: provider,
		logoURL:  logoURL,
		logger:   logging.WithComponent(logger, "login_screen"),
	}
}

// Init fetches the consent URL. Only the first call reaches the provider.
// A failing provider leaves the URL empty.
func (s *LoginScreen) Init(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return
	}
	s.initialized = true

	if s.provider == nil {
		return
	}
	u, err := s.provider.AuthURL(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to get OAuth URL", logging.Err(err))
		return
	}
	s.authURL = u
}

// Login returns the URL to open for sign-in. ok is false when no URL is
// configured; the click is then a no-op.
func (s *LoginScreen) Login() (authURL string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.authURL == "" {
		s.logger.Error("OAuth URL not configured")
		return "", false
	}
	return s.authURL, true
}

// AuthURL returns the cached consent URL, possibly empty.
func (s *LoginScreen) AuthURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authURL
}

// LogoURL returns the logo shown on the screen.
func (s *LoginScreen) LogoURL() string {
	return s.logoURL
}
