// Package server hosts the calview web UI and its operational endpoints.
//
// # Key Components
//
// ServerContext holds the collaborators every request needs (event source,
// Google sign-in, formatter, metrics) and builds per-request view components
// from them.
//
// WebServer serves:
//   - GET /                 the calendar tab (month view or login screen)
//   - GET /login            the login screen
//   - GET /login/google     redirect to the Google consent URL
//   - GET /oauth2/callback  OAuth code exchange
//   - GET /api/status       {"signedIn": bool}
//   - GET /api/calendar     the month view as JSON (?month=YYYY-MM&nav=prev|next|today)
//
// The viewer is identified by the X-User-Id header, falling back to the
// configured default user. The header is trusted as is: the server must sit
// behind the CRM or a proxy that authenticates the viewer and sets it,
// overwriting any value sent by the client. Exposed directly, any caller can
// read another user's calendar or start a sign-in bound to their account.
//
// HealthChecker provides Kubernetes liveness and readiness probes, and
// MetricsServer exposes Prometheus metrics on a dedicated port.
package server
