package instrumentation

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, ctx context.Context) *Provider {
	t.Helper()
	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return provider
}

func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	rec := httptest.NewRecorder()
	provider.PrometheusHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func TestMetrics_Exported(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider := newTestProvider(t, ctx)
	m := provider.Metrics()

	m.RecordHTTPRequest(ctx, http.MethodGet, "/api/calendar", 200, 100*time.Millisecond)
	m.RecordGoogleAPIOperation(ctx, ServiceCalendar, OperationList, StatusSuccess, 200*time.Millisecond)
	m.RecordOAuthAuth(ctx, OAuthResultSuccess)
	m.RecordCalendarLoad(ctx, "google", LoadResultDegraded, 50*time.Millisecond)
	m.RecordEventsSkipped(ctx, "google", 2)
	m.RecordICSFetch(ctx, FetchResultNotModified)

	out := scrape(t, provider)
	for _, name := range []string{
		"http_requests_total",
		"http_request_duration_seconds",
		"google_api_operations_total",
		"oauth_auth_total",
		"calendar_loads_total",
		"calendar_load_duration_seconds",
		"calendar_events_skipped_total",
		"ics_fetch_total",
	} {
		if !strings.Contains(out, name) {
			t.Errorf("expected %s in scrape output", name)
		}
	}
	if !strings.Contains(out, `result="degraded"`) {
		t.Error("expected degraded load result label")
	}
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	ctx := context.Background()
	a := newTestProvider(t, ctx)
	b := newTestProvider(t, ctx)

	a.Metrics().RecordOAuthAuth(ctx, OAuthResultFailure)

	if !strings.Contains(scrape(t, a), "oauth_auth_total") {
		t.Error("expected oauth_auth_total in first provider")
	}
	if strings.Contains(scrape(t, b), "oauth_auth_total") {
		t.Error("second provider should not see the first provider's metrics")
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	var nilMetrics *Metrics
	nilMetrics.RecordHTTPRequest(ctx, http.MethodGet, "/", 200, time.Millisecond)
	nilMetrics.RecordEventsSkipped(ctx, "ics", 3)

	empty := &Metrics{}
	empty.RecordGoogleAPIOperation(ctx, ServiceCalendar, OperationList, StatusError, time.Millisecond)
	empty.RecordOAuthAuth(ctx, OAuthResultFailure)
	empty.RecordCalendarLoad(ctx, "ics", LoadResultSuccess, time.Millisecond)
	empty.RecordICSFetch(ctx, FetchResultError)
}

func TestNormalizeRoute(t *testing.T) {
	known := []string{"/", "/login", "/api/calendar"}

	tests := []struct {
		path string
		want string
	}{
		{"/", "/"},
		{"", "/"},
		{"/login", "/login"},
		{"/login/", "/login"},
		{"/api/calendar", "/api/calendar"},
		{"/wp-admin", RouteOther},
		{"/api/calendar/2025-02", RouteOther},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := NormalizeRoute(tt.path, known); got != tt.want {
				t.Errorf("NormalizeRoute(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
