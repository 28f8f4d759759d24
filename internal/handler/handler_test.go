package handler

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/itemledger/itemledger/internal/handler/dto"
	"github.com/itemledger/itemledger/internal/metrics"
	"github.com/itemledger/itemledger/internal/repository"
	"github.com/itemledger/itemledger/internal/service"
	"github.com/itemledger/itemledger/internal/testutil"
)

// newTestRouter wires every handler against a fresh memory store.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store := repository.NewMemoryStore()
	rec := metrics.NewInMemory()
	logger := testutil.DiscardLogger()

	routes := Routes{
		Root:    New("itemledger", "0.1.0"),
		Health:  NewHealthHandler(store, nil),
		Users:   NewUserHandler(service.NewUserService(store, rec, logger), logger),
		Items:   NewItemHandler(service.NewItemService(store, rec, logger), logger),
		Reports: NewReportHandler(service.NewReportService(store, rec, logger), logger),
	}

	r := chi.NewRouter()
	routes.Register(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) dto.ErrorResponse {
	t.Helper()

	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	resp := decode[dto.ErrorResponse](t, rec)
	if resp.ErrorCode != code {
		t.Errorf("expected error_code %s, got %s", code, resp.ErrorCode)
	}
	if resp.Detail == "" {
		t.Error("expected non-empty detail")
	}
	return resp
}

func TestHandler_Root(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestRouter(t), http.MethodGet, "/", "")

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	resp := decode[dto.RootResponse](t, rec)
	if resp.Version != "0.1.0" || resp.Docs != "/openapi.yaml" || resp.Message == "" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestHandler_Health(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestRouter(t), http.MethodGet, "/health", "")
	if got := decode[dto.StatusResponse](t, rec); got.Status != "healthy" {
		t.Errorf("status = %s, want healthy", got.Status)
	}
}

func TestHandler_OpenAPI(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestRouter(t), http.MethodGet, "/openapi.yaml", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), "openapi: 3.0") {
		t.Errorf("unexpected body prefix: %.40s", rec.Body.String())
	}
}

func TestHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	assertError(t, do(t, h, http.MethodGet, "/nonexistent", ""), http.StatusNotFound, "NOT_FOUND")
	assertError(t, do(t, h, http.MethodGet, "/api/v1/nope", ""), http.StatusNotFound, "NOT_FOUND")
	assertError(t, do(t, h, http.MethodPatch, "/api/v1/users/1", "{}"), http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED")
}

func TestWriteJSON_UnencodableValueIs500(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data any
	}{
		{"nan", map[string]float64{"average_price": math.NaN()}},
		{"inf", struct {
			Total float64 `json:"total_value"`
		}{math.Inf(1)}},
		{"channel", map[string]any{"ch": make(chan int)}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			writeJSON(rec, http.StatusOK, tt.data)

			resp := assertError(t, rec, http.StatusInternalServerError, "INTERNAL_ERROR")
			if resp.Detail != "Internal server error" {
				t.Errorf("detail = %q", resp.Detail)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}

func TestWriteJSON_Status(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusCreated, map[string]int{"id": 7})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if got := rec.Body.String(); got != "{\"id\":7}\n" {
		t.Errorf("body = %q", got)
	}
}
