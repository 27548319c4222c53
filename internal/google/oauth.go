package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/teemow/calview/internal/logging"
)

// OAuthConfig holds the Google OAuth client settings.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	// Endpoint overrides google.Endpoint. Used by tests.
	Endpoint *oauth2.Endpoint
}

// NewOAuth2Config returns the oauth2.Config for cfg.
func NewOAuth2Config(cfg OAuthConfig) *oauth2.Config {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultOAuthScopes
	}
	endpoint := google.Endpoint
	if cfg.Endpoint != nil {
		endpoint = *cfg.Endpoint
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     endpoint,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       scopes,
	}
}

// Authenticator runs the OAuth2 authorization code flow against Google and
// hands out tokens for stored accounts.
type Authenticator struct {
	conf   *oauth2.Config
	tokens TokenStore
	states *StateStore
	logger *slog.Logger
}

var _ TokenProvider = (*Authenticator)(nil)

// NewAuthenticator creates an Authenticator. A nil store uses the default
// file token store.
func NewAuthenticator(cfg OAuthConfig, tokens TokenStore, logger *slog.Logger) *Authenticator {
	if tokens == nil {
		tokens = NewFileTokenStore("")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logging.WithComponent(logger, "google_oauth")
	return &Authenticator{
		conf:   NewOAuth2Config(cfg),
		tokens: tokens,
		states: NewStateStore(DefaultStateTTL, logger),
		logger: logger,
	}
}

// Configured reports whether a client id is set.
func (a *Authenticator) Configured() bool {
	return a.conf.ClientID != ""
}

// AuthURL returns the consent URL for the account found in ctx (see
// ContextWithAccount). It returns an empty string when no OAuth client is
// configured, which turns the login button into a no-op.
func (a *Authenticator) AuthURL(ctx context.Context) (string, error) {
	if !a.Configured() {
		return "", nil
	}

	account := AccountFromContext(ctx)
	if err := validateAccountName(account); err != nil {
		return "", err
	}

	state := a.states.Create(account)
	a.logger.DebugContext(ctx, "Created consent URL", logging.UserHash(account))

	return a.conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

// Exchange completes the flow started by AuthURL: it consumes state, trades
// code for a token and stores it. It returns the account the token belongs to.
func (a *Authenticator) Exchange(ctx context.Context, state, code string) (string, error) {
	account, err := a.states.Consume(state)
	if err != nil {
		return "", err
	}
	if err := a.ExchangeForAccount(ctx, account, code); err != nil {
		return "", err
	}
	return account, nil
}

// ExchangeForAccount trades code for a token and stores it under account.
// The CLI uses it directly since it has no state round trip.
func (a *Authenticator) ExchangeForAccount(ctx context.Context, account, code string) error {
	if code == "" {
		return fmt.Errorf("authorization code cannot be empty")
	}

	tok, err := a.conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}
	if err := a.tokens.Save(account, tok); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	a.logger.InfoContext(ctx, "Stored Google token",
		logging.UserHash(account),
		"access_token", logging.SanitizeToken(tok.AccessToken))
	return nil
}

// AuthCodeURLForAccount is the CLI variant of AuthURL.
func (a *Authenticator) AuthCodeURLForAccount(account string) (string, error) {
	return a.AuthURL(ContextWithAccount(context.Background(), account))
}

// GetTokenForAccount returns a valid token, refreshing and persisting it
// when the stored one has expired.
func (a *Authenticator) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	stored, err := a.tokens.Load(account)
	if err != nil {
		return nil, err
	}

	tok, err := a.conf.TokenSource(ctx, stored).Token()
	if err != nil {
		return nil, fmt.Errorf("cached token is invalid: %w", err)
	}

	if tok.AccessToken != stored.AccessToken {
		if err := a.tokens.Save(account, tok); err != nil {
			a.logger.WarnContext(ctx, "Failed to persist refreshed token", logging.UserHash(account), logging.Err(err))
		}
	}
	return tok, nil
}

// HasTokenForAccount checks if a token is stored for account.
func (a *Authenticator) HasTokenForAccount(account string) bool {
	return a.tokens.Has(account)
}

// IsSignedIn reports whether account has a usable token. A missing token is
// not an error.
func (a *Authenticator) IsSignedIn(ctx context.Context, account string) (bool, error) {
	if !a.tokens.Has(account) {
		return false, nil
	}
	if _, err := a.GetTokenForAccount(ctx, account); err != nil {
		if errors.Is(err, ErrNoToken) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// HTTPClient returns an HTTP client authorized as account.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors.
func (a *Authenticator) HTTPClient(ctx context.Context, account string) (*http.Client, error) {
	tok, err := a.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	client := oauth2.NewClient(ctx, a.conf.TokenSource(ctx, tok))

	// Force HTTP/1.1 by disabling HTTP/2
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: false,
		}
	}
	return client, nil
}

// GetAuthenticationErrorMessage returns the hint shown when account has no token.
func GetAuthenticationErrorMessage(account string) string {
	return fmt.Sprintf("Google OAuth token not found for account %q. Sign in through the web UI or run 'calview auth --user %s'.", account, account)
}
