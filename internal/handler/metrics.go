package handler

import (
	"net/http"
)

// MetricsHandler exposes the Prometheus registry.
type MetricsHandler struct {
	exposition http.Handler
}

// NewMetricsHandler creates a new MetricsHandler. A nil exposition
// handler makes the endpoint report 503.
func NewMetricsHandler(exposition http.Handler) *MetricsHandler {
	return &MetricsHandler{exposition: exposition}
}

// Metrics returns metrics in Prometheus exposition format.
// GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.exposition == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	h.exposition.ServeHTTP(w, r)
}
