package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnv(t *testing.T) {
	t.Setenv("CALVIEW_LISTEN", ":8081")
	t.Setenv("CALVIEW_TIMEZONE", "Europe/Paris")
	t.Setenv("CALVIEW_EVENT_SOURCE", "ics")
	t.Setenv("CALVIEW_ICS_URL", "https://example.com/cal.ics")
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_SCOPES", "openid, email ,")
	t.Setenv("METRICS_ENABLED", "true")
	t.Setenv("METRICS_ADDR", ":9191")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	assert.Equal(t, ":8081", cfg.Listen)
	assert.Equal(t, "Europe/Paris", cfg.Timezone)
	assert.Equal(t, EventSourceICS, cfg.EventSource)
	assert.Equal(t, "https://example.com/cal.ics", cfg.ICS.URL)
	assert.Equal(t, "client-id", cfg.Google.ClientID)
	assert.Equal(t, []string{"openid", "email"}, cfg.Google.Scopes)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9191", cfg.Metrics.Addr)
}

func TestApplyEnv_IgnoresInvalidBool(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "maybe")

	cfg := DefaultConfig()
	cfg.Metrics.Enabled = true
	cfg.ApplyEnv()
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("CALVIEW_TEST_LOADENV=from-file\n"), 0o600))
	t.Setenv("CALVIEW_TEST_LOADENV", "")
	require.NoError(t, os.Unsetenv("CALVIEW_TEST_LOADENV"))

	require.NoError(t, LoadEnv(envFile, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("CALVIEW_TEST_LOADENV"))
}

func TestParseCommaSeparatedList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty string", input: "", expected: nil},
		{name: "single value", input: "openid", expected: []string{"openid"}},
		{name: "multiple values", input: "openid,email", expected: []string{"openid", "email"}},
		{name: "values with spaces around comma", input: "openid, email", expected: []string{"openid", "email"}},
		{name: "trailing comma", input: "openid,email,", expected: []string{"openid", "email"}},
		{name: "multiple consecutive commas", input: "openid,,email", expected: []string{"openid", "email"}},
		{name: "only commas and spaces", input: ",  , , ", expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseCommaSeparatedList(tt.input)

			if tt.expected == nil {
				if result != nil {
					t.Errorf("parseCommaSeparatedList(%q) = %v, want nil", tt.input, result)
				}
				return
			}

			if len(result) != len(tt.expected) {
				t.Errorf("parseCommaSeparatedList(%q) = %v (len %d), want %v (len %d)",
					tt.input, result, len(result), tt.expected, len(tt.expected))
				return
			}
			for i, v := range result {
				if v != tt.expected[i] {
					t.Errorf("parseCommaSeparatedList(%q)[%d] = %q, want %q", tt.input, i, v, tt.expected[i])
				}
			}
		})
	}
}
