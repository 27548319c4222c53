package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrMethod    = "method"
	attrRoute     = "route"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrResult    = "result"
	attrSource    = "source"
)

// Metrics records calview's metrics. The zero value is a no-op recorder.
type Metrics struct {
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	googleAPIOperationsTotal   metric.Int64Counter
	googleAPIOperationDuration metric.Float64Histogram

	oauthAuthTotal metric.Int64Counter

	calendarLoadsTotal    metric.Int64Counter
	calendarLoadDuration  metric.Float64Histogram
	calendarEventsSkipped metric.Int64Counter

	icsFetchTotal metric.Int64Counter
}

// NewMetrics creates all instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.googleAPIOperationsTotal, err = meter.Int64Counter(
		"google_api_operations_total",
		metric.WithDescription("Total number of Google API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operations_total counter: %w", err)
	}

	m.googleAPIOperationDuration, err = meter.Float64Histogram(
		"google_api_operation_duration_seconds",
		metric.WithDescription("Google API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operation_duration_seconds histogram: %w", err)
	}

	m.oauthAuthTotal, err = meter.Int64Counter(
		"oauth_auth_total",
		metric.WithDescription("Total number of OAuth code exchanges"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_auth_total counter: %w", err)
	}

	m.calendarLoadsTotal, err = meter.Int64Counter(
		"calendar_loads_total",
		metric.WithDescription("Total number of month view loads"),
		metric.WithUnit("{load}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_loads_total counter: %w", err)
	}

	m.calendarLoadDuration, err = meter.Float64Histogram(
		"calendar_load_duration_seconds",
		metric.WithDescription("Month view fetch-and-render duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_load_duration_seconds histogram: %w", err)
	}

	m.calendarEventsSkipped, err = meter.Int64Counter(
		"calendar_events_skipped_total",
		metric.WithDescription("Events dropped from the grid because they had no usable start time"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_events_skipped_total counter: %w", err)
	}

	m.icsFetchTotal, err = meter.Int64Counter(
		"ics_fetch_total",
		metric.WithDescription("Total number of ICS feed fetches"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ics_fetch_total counter: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request. route must be a normalized
// route pattern, never the raw path.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrRoute, route),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordGoogleAPIOperation records a Google API call.
//
// Parameters:
//   - service: Google service name (calendar)
//   - operation: Operation type (list)
//   - status: "success" or "error"
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.googleAPIOperationsTotal == nil || m.googleAPIOperationDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
	m.googleAPIOperationsTotal.Add(ctx, 1, attrs)
	m.googleAPIOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordOAuthAuth records an OAuth code exchange with result "success" or "failure".
func (m *Metrics) RecordOAuthAuth(ctx context.Context, result string) {
	if m == nil || m.oauthAuthTotal == nil {
		return
	}
	m.oauthAuthTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordCalendarLoad records one month load. result is one of the
// LoadResult constants.
func (m *Metrics) RecordCalendarLoad(ctx context.Context, source, result string, duration time.Duration) {
	if m == nil || m.calendarLoadsTotal == nil || m.calendarLoadDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrSource, source),
		attribute.String(attrResult, result),
	)
	m.calendarLoadsTotal.Add(ctx, 1, attrs)
	m.calendarLoadDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordEventsSkipped adds n dropped events. Zero is ignored.
func (m *Metrics) RecordEventsSkipped(ctx context.Context, source string, n int) {
	if m == nil || m.calendarEventsSkipped == nil || n <= 0 {
		return
	}
	m.calendarEventsSkipped.Add(ctx, int64(n), metric.WithAttributes(attribute.String(attrSource, source)))
}

// RecordICSFetch records an ICS feed fetch with one of the FetchResult constants.
func (m *Metrics) RecordICSFetch(ctx context.Context, result string) {
	if m == nil || m.icsFetchTotal == nil {
		return
	}
	m.icsFetchTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}
