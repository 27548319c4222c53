package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/oauth2"
)

// ErrNoToken is returned when no token is stored for an account.
var ErrNoToken = errors.New("no google oauth token for account")

// TokenProvider is an interface for providing OAuth tokens for Google APIs.
type TokenProvider interface {
	// GetTokenForAccount retrieves a valid OAuth token for the specified account
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)

	// HasTokenForAccount checks if a token exists for the specified account
	HasTokenForAccount(account string) bool
}

// TokenStore persists tokens per account.
type TokenStore interface {
	Load(account string) (*oauth2.Token, error)
	Save(account string, token *oauth2.Token) error
	Has(account string) bool
}

// FileTokenStore keeps one JSON token file per account in Dir.
type FileTokenStore struct {
	Dir string
}

// NewFileTokenStore creates a file token store. An empty dir means the
// user's cache directory.
func NewFileTokenStore(dir string) *FileTokenStore {
	if dir == "" {
		dir = DefaultTokenDir()
	}
	return &FileTokenStore{Dir: dir}
}

// DefaultTokenDir returns <user cache dir>/calview.
func DefaultTokenDir() string {
	return filepath.Join(userCacheDir(), "calview")
}

func (s *FileTokenStore) tokenFilePath(account string) string {
	return filepath.Join(s.Dir, fmt.Sprintf("google-%s.token", account))
}

// Load reads the token for account. It returns ErrNoToken when none is stored.
func (s *FileTokenStore) Load(account string) (*oauth2.Token, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.tokenFilePath(account))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w %q", ErrNoToken, account)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid token file for account %q: %w", account, err)
	}
	return &tok, nil
}

// Save writes the token for account with owner-only permissions.
func (s *FileTokenStore) Save(account string, token *oauth2.Token) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	path := s.tokenFilePath(account)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	return nil
}

// Has reports whether a token file exists for account.
func (s *FileTokenStore) Has(account string) bool {
	if err := validateAccountName(account); err != nil {
		return false
	}
	_, err := os.Stat(s.tokenFilePath(account))
	return err == nil
}

func userCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}
	if runtime.GOOS == "windows" {
		return os.TempDir()
	}
	return filepath.Join(os.Getenv("HOME"), ".cache")
}
