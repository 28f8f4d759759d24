package handler

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// readinessTimeout bounds all dependency pings of one /readyz call.
const readinessTimeout = 5 * time.Second

// HealthChecker is anything /readyz can ping: the store and the Redis cache.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	deps []dependency
}

type dependency struct {
	name    string
	checker HealthChecker
}

// NewHealthHandler creates a HealthHandler.
// Pass a nil cache when Redis is not configured; it is reported, not probed.
func NewHealthHandler(store, cache HealthChecker) *HealthHandler {
	return &HealthHandler{deps: []dependency{
		{name: "store", checker: store},
		{name: "redis", checker: cache},
	}}
}

// HealthResponse is the body of both probes.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz reports that the process is serving.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz pings every configured dependency in parallel and answers 503 if any fails.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	results := make([]string, len(h.deps))
	var wg sync.WaitGroup
	for i, dep := range h.deps {
		if dep.checker == nil {
			results[i] = "not configured"
			continue
		}
		wg.Add(1)
		i, dep := i, dep
		go func() {
			defer wg.Done()
			if err := dep.checker.Ping(ctx); err != nil {
				results[i] = "error: " + err.Error()
				return
			}
			results[i] = "ok"
		}()
	}
	wg.Wait()

	resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(h.deps))}
	code := http.StatusOK
	for i, dep := range h.deps {
		resp.Checks[dep.name] = results[i]
		if results[i] != "ok" && results[i] != "not configured" {
			resp.Status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, resp)
}
