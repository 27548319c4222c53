package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Event source names.
const (
	EventSourceGoogle = "google"
	EventSourceICS    = "ics"
)

// ErrEmptyPath is returned when no configuration path is given.
var ErrEmptyPath = errors.New("config path is empty")

// Default listen addresses.
const (
	DefaultListenAddr  = "127.0.0.1:8080"
	DefaultMetricsAddr = ":9090"
)

const (
	defaultLocale     = "en-US"
	defaultProvider   = "Google"
	defaultUser       = "default"
	defaultCalendarID = "primary"
	defaultRefresh    = "*/15 * * * *"
	defaultLogLevel   = "info"
	defaultLogFormat  = "text"
)

// GoogleConfig configures Google sign-in and the Calendar event source.
type GoogleConfig struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	RedirectURL  string   `yaml:"redirect_url"`
	CalendarID   string   `yaml:"calendar_id"`
	TokenDir     string   `yaml:"token_dir,omitempty"`
	Scopes       []string `yaml:"scopes,omitempty"`
}

// ICSConfig configures the ICS subscription event source.
type ICSConfig struct {
	URL      string `yaml:"url"`
	CacheDir string `yaml:"cache_dir,omitempty"`
	// RefreshSchedule is a five-field cron expression for background refresh.
	RefreshSchedule string `yaml:"refresh_schedule"`
}

// MetricsConfig configures the dedicated metrics server.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address of the web UI.
	Listen string `yaml:"listen"`
	// Timezone is the IANA zone events are displayed in. Empty means the
	// host's local zone.
	Timezone string `yaml:"timezone"`
	// Locale is a BCP 47 tag for month names and time formats.
	Locale string `yaml:"locale"`
	// ProviderName is shown in event tooltips ("Open in Google").
	ProviderName string `yaml:"provider_name"`
	// DefaultUser is the CRM user id used when a request carries none.
	DefaultUser string `yaml:"default_user"`
	// EventSource selects where events come from: "google" or "ics".
	EventSource string `yaml:"event_source"`
	// LogoURL is the image shown on the login screen.
	LogoURL string `yaml:"logo_url,omitempty"`

	Google  GoogleConfig  `yaml:"google"`
	ICS     ICSConfig     `yaml:"ics"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	c := &Config{}
	c.Normalize()
	return c
}

// Normalize fills in zero values with defaults.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = DefaultListenAddr
	}
	if c.Locale == "" {
		c.Locale = defaultLocale
	}
	if c.ProviderName == "" {
		c.ProviderName = defaultProvider
	}
	if c.DefaultUser == "" {
		c.DefaultUser = defaultUser
	}
	c.EventSource = strings.ToLower(strings.TrimSpace(c.EventSource))
	if c.EventSource == "" {
		c.EventSource = EventSourceGoogle
	}
	if c.Google.CalendarID == "" {
		c.Google.CalendarID = defaultCalendarID
	}
	if c.ICS.RefreshSchedule == "" {
		c.ICS.RefreshSchedule = defaultRefresh
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = DefaultMetricsAddr
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = defaultLogFormat
	}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch c.EventSource {
	case EventSourceGoogle:
	case EventSourceICS:
		if c.ICS.URL == "" {
			return errors.New("event_source is \"ics\" but ics.url is empty")
		}
	default:
		return fmt.Errorf("unknown event_source %q (expected %q or %q)", c.EventSource, EventSourceGoogle, EventSourceICS)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone. An empty Timezone yields time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DefaultPath returns the default configuration file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "calview.yaml"
	}
	return filepath.Join(dir, "calview", "config.yaml")
}

// Load reads the YAML configuration at path. When the file does not exist a
// default configuration is written there and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, fmt.Errorf("failed to write default config: %w", err)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes cfg to path atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return ErrEmptyPath
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".calview-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
