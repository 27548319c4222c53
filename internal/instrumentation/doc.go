// Package instrumentation provides OpenTelemetry metrics and tracing for calview.
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, route, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//
// OAuth Metrics:
//   - oauth_auth_total: Counter of OAuth code exchanges by result
//
// Calendar Metrics:
//   - calendar_loads_total: Counter of month loads by event source and result
//   - calendar_load_duration_seconds: Histogram of fetch-and-render durations
//   - calendar_events_skipped_total: Counter of events dropped for lacking a start time
//   - ics_fetch_total: Counter of ICS feed fetches by result (fetched, not_modified, error)
//
// Users and months are never used as metric labels; they go to logs and spans.
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: calview)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordCalendarLoad(ctx, "google", instrumentation.LoadResultSuccess, time.Since(start))
package instrumentation
