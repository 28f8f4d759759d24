package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/itemledger/itemledger/internal/handler/dto"
)

// writeError writes the API error body from inside a middleware.
func writeError(w http.ResponseWriter, status int, code, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.ErrorResponse{Detail: detail, ErrorCode: code})
}
