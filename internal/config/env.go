package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv loads the given .env files into the process environment. Missing
// files are ignored; variables that are already set are kept. With no
// arguments ".env" in the working directory is tried.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ApplyEnv overrides cfg with the environment variables that are set.
func (c *Config) ApplyEnv() {
	setString(&c.Listen, "CALVIEW_LISTEN")
	setString(&c.Timezone, "CALVIEW_TIMEZONE")
	setString(&c.Locale, "CALVIEW_LOCALE")
	setString(&c.ProviderName, "CALVIEW_PROVIDER_NAME")
	setString(&c.DefaultUser, "CALVIEW_DEFAULT_USER")
	setString(&c.EventSource, "CALVIEW_EVENT_SOURCE")
	setString(&c.LogoURL, "CALVIEW_LOGO_URL")

	setString(&c.Google.ClientID, "GOOGLE_CLIENT_ID")
	setString(&c.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&c.Google.RedirectURL, "GOOGLE_REDIRECT_URL")
	setString(&c.Google.CalendarID, "GOOGLE_CALENDAR_ID")
	setString(&c.Google.TokenDir, "GOOGLE_TOKEN_DIR")
	if v := os.Getenv("GOOGLE_SCOPES"); v != "" {
		c.Google.Scopes = parseCommaSeparatedList(v)
	}

	setString(&c.ICS.URL, "CALVIEW_ICS_URL")
	setString(&c.ICS.CacheDir, "CALVIEW_ICS_CACHE_DIR")
	setString(&c.ICS.RefreshSchedule, "CALVIEW_ICS_REFRESH")

	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Metrics.Enabled = b
		}
	}
	setString(&c.Metrics.Addr, "METRICS_ADDR")

	setString(&c.Log.Level, "CALVIEW_LOG_LEVEL")
	setString(&c.Log.Format, "CALVIEW_LOG_FORMAT")

	c.Normalize()
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// parseCommaSeparatedList splits a comma-separated list, trimming whitespace
// and dropping empty entries. An empty input yields nil.
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
