package handler

import (
	"net/http"

	"github.com/itemledger/itemledger/api"
)

// OpenAPI serves the embedded API description.
// GET /openapi.yaml
func (h *Handler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(api.Spec)
}
