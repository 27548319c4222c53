package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
	healthStatusMissing      = "missing"
)

// HealthChecker serves the /healthz, /readyz and /healthz/detailed probes.
type HealthChecker struct {
	ready     atomic.Bool
	sc        *ServerContext
	startTime time.Time
	version   string
}

// NewHealthChecker creates a HealthChecker that starts out ready. sc may be
// nil in tests.
func NewHealthChecker(sc *ServerContext, version string) *HealthChecker {
	h := &HealthChecker{
		sc:        sc,
		startTime: time.Now(),
		version:   version,
	}
	h.ready.Store(true)
	return h
}

// SetReady sets the readiness state. serve clears it before shutting down.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports the readiness state set with SetReady.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse adds uptime and the configured event source.
type DetailedHealthResponse struct {
	Status      string            `json:"status"`
	Checks      map[string]string `json:"checks,omitempty"`
	Uptime      string            `json:"uptime"`
	Version     string            `json:"version,omitempty"`
	EventSource string            `json:"event_source,omitempty"`
	SignIn      bool              `json:"sign_in_configured"`
}

// readiness runs the readiness checks. The overall status is the first
// failing check, in the order ready, shutdown, event_source.
func (h *HealthChecker) readiness() (status string, checks map[string]string) {
	checks = map[string]string{
		"ready":    healthStatusOK,
		"shutdown": healthStatusOK,
	}
	status = healthStatusOK
	fail := func(check, value, overall string) {
		checks[check] = value
		if status == healthStatusOK {
			status = overall
		}
	}

	if !h.ready.Load() {
		fail("ready", healthStatusNotReady, healthStatusNotReady)
	}
	if h.sc == nil {
		return status, checks
	}
	if h.sc.IsShutdown() {
		fail("shutdown", healthStatusShuttingDown, healthStatusShuttingDown)
	}
	if h.sc.HasEventSource() {
		checks["event_source"] = healthStatusOK
	} else {
		fail("event_source", healthStatusMissing, healthStatusNotReady)
	}
	return status, checks
}

// LivenessHandler returns the /healthz handler. It only reports that the
// process is serving.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler returns the /readyz handler.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status, checks := h.readiness()
		writeHealth(w, statusCode(status), HealthResponse{Status: status, Checks: checks})
	})
}

// DetailedHealthHandler returns the /healthz/detailed handler.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status, checks := h.readiness()
		resp := DetailedHealthResponse{
			Status:  status,
			Checks:  checks,
			Uptime:  time.Since(h.startTime).Truncate(time.Second).String(),
			Version: h.version,
		}
		if h.sc != nil {
			resp.EventSource = h.sc.EventSourceName()
			resp.SignIn = h.sc.Exchanger() != nil
		}
		writeHealth(w, statusCode(status), resp)
	})
}

// RegisterHealthEndpoints registers the health endpoints on mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("GET /healthz", h.LivenessHandler())
	mux.Handle("GET /readyz", h.ReadinessHandler())
	mux.Handle("GET /healthz/detailed", h.DetailedHealthHandler())
}

func statusCode(status string) int {
	if status == healthStatusOK {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

func writeHealth(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
