// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/itemledger/itemledger/internal/handler/dto"
)

// Handler serves the service-level endpoints.
type Handler struct {
	name    string
	version string
}

// New creates a new Handler instance.
func New(name, version string) *Handler {
	return &Handler{name: name, version: version}
}

// Root describes the service.
// GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.RootResponse{
		Message: h.name + " API",
		Version: h.version,
		Docs:    "/openapi.yaml",
	})
}

// Health is the legacy liveness endpoint.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.StatusResponse{Status: "healthy"})
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
}

// writeJSON writes data with the given status code. The body is encoded
// before the header goes out, so an unencodable value becomes a 500.
func writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.Default().Error("failed to encode response", "error", err, "status", status)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(dto.ErrorResponse{Detail: "Internal server error", ErrorCode: "INTERNAL_ERROR"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// writeError writes a {detail, error_code} body.
func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, dto.ErrorResponse{Detail: detail, ErrorCode: code})
}
