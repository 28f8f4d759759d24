package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"

	"github.com/itemledger/itemledger/api"
)

// loadSpec loads and validates the embedded OpenAPI document.
func loadSpec(t *testing.T) (*openapi3.T, routers.Router) {
	t.Helper()

	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromData(api.Spec)
	if err != nil {
		t.Fatalf("failed to load OpenAPI spec: %v", err)
	}
	if err := spec.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI spec validation failed: %v", err)
	}

	router, err := gorillamux.NewRouter(spec)
	if err != nil {
		t.Fatalf("failed to create router from spec: %v", err)
	}
	return spec, router
}

func TestOpenAPISpecValid(t *testing.T) {
	t.Parallel()

	spec, _ := loadSpec(t)

	expectedPaths := []string{
		"/api/v1/users",
		"/api/v1/users/{user_id}",
		"/api/v1/items",
		"/api/v1/items/user/{user_id}",
		"/api/v1/items/{item_id}",
		"/api/v1/reports/users-summary",
		"/api/v1/reports/items-summary",
		"/api/v1/reports/user/{user_id}",
		"/api/v1/reports/system-overview",
		"/api/v1/reports/items-by-price-range",
		"/healthz",
		"/readyz",
	}
	for _, path := range expectedPaths {
		if spec.Paths.Find(path) == nil {
			t.Errorf("expected path %s not found in spec", path)
		}
	}
}

// TestResponsesMatchSpec drives the live router through a scripted session
// and validates every response against the document.
func TestResponsesMatchSpec(t *testing.T) {
	t.Parallel()

	_, specRouter := loadSpec(t)
	h := newTestRouter(t)

	steps := []struct {
		name   string
		method string
		target string
		body   string
		status int
	}{
		{"root", http.MethodGet, "/", "", http.StatusOK},
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"healthz", http.MethodGet, "/healthz", "", http.StatusOK},
		{"readyz", http.MethodGet, "/readyz", "", http.StatusOK},
		{"empty items summary", http.MethodGet, "/api/v1/reports/items-summary", "", http.StatusOK},
		{"create user", http.MethodPost, "/api/v1/users", `{"email":"a@example.com","full_name":"Alice"}`, http.StatusCreated},
		{"create second user", http.MethodPost, "/api/v1/users", `{"email":"b@example.com","full_name":"Bob"}`, http.StatusCreated},
		{"duplicate user", http.MethodPost, "/api/v1/users", `{"email":"a@example.com","full_name":"Again"}`, http.StatusBadRequest},
		{"invalid user", http.MethodPost, "/api/v1/users", `{"email":"bad","full_name":"X"}`, http.StatusUnprocessableEntity},
		{"list users", http.MethodGet, "/api/v1/users", "", http.StatusOK},
		{"get user", http.MethodGet, "/api/v1/users/1", "", http.StatusOK},
		{"missing user", http.MethodGet, "/api/v1/users/99", "", http.StatusNotFound},
		{"update user", http.MethodPut, "/api/v1/users/2", `{"full_name":"Robert"}`, http.StatusOK},
		{"create item", http.MethodPost, "/api/v1/items?owner_id=1", `{"title":"Lamp","description":"brass","price":19.99}`, http.StatusCreated},
		{"create orphan item", http.MethodPost, "/api/v1/items?owner_id=42", `{"title":"Chair","price":45}`, http.StatusCreated},
		{"invalid item", http.MethodPost, "/api/v1/items?owner_id=1", `{"title":"Free","price":0}`, http.StatusUnprocessableEntity},
		{"list items", http.MethodGet, "/api/v1/items?skip=0&limit=10", "", http.StatusOK},
		{"list owner items", http.MethodGet, "/api/v1/items/user/1", "", http.StatusOK},
		{"get item", http.MethodGet, "/api/v1/items/1", "", http.StatusOK},
		{"update item", http.MethodPut, "/api/v1/items/1", `{"price":21.5}`, http.StatusOK},
		{"missing item", http.MethodGet, "/api/v1/items/99", "", http.StatusNotFound},
		{"users summary", http.MethodGet, "/api/v1/reports/users-summary", "", http.StatusOK},
		{"items summary", http.MethodGet, "/api/v1/reports/items-summary", "", http.StatusOK},
		{"user detail", http.MethodGet, "/api/v1/reports/user/1", "", http.StatusOK},
		{"user detail without items", http.MethodGet, "/api/v1/reports/user/2", "", http.StatusOK},
		{"missing user detail", http.MethodGet, "/api/v1/reports/user/99", "", http.StatusNotFound},
		{"system overview", http.MethodGet, "/api/v1/reports/system-overview", "", http.StatusOK},
		{"price range", http.MethodGet, "/api/v1/reports/items-by-price-range?min_price=20", "", http.StatusOK},
		{"open price range", http.MethodGet, "/api/v1/reports/items-by-price-range", "", http.StatusOK},
		{"delete item", http.MethodDelete, "/api/v1/items/2", "", http.StatusNoContent},
		{"delete user", http.MethodDelete, "/api/v1/users/2", "", http.StatusNoContent},
	}

	for _, step := range steps {
		var reqBody io.Reader
		if step.body != "" {
			reqBody = strings.NewReader(step.body)
		}
		req := httptest.NewRequest(step.method, step.target, reqBody)
		if step.body != "" {
			req.Header.Set("Content-Type", "application/json")
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != step.status {
			t.Fatalf("%s: expected status %d, got %d: %s", step.name, step.status, rec.Code, rec.Body.String())
		}

		route, pathParams, err := specRouter.FindRoute(req)
		if err != nil {
			t.Fatalf("%s: could not find route in spec: %v", step.name, err)
		}

		input := &openapi3filter.ResponseValidationInput{
			RequestValidationInput: &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: pathParams,
				Route:      route,
			},
			Status:  rec.Code,
			Header:  rec.Header(),
			Body:    io.NopCloser(bytes.NewReader(rec.Body.Bytes())),
			Options: &openapi3filter.Options{IncludeResponseStatus: true},
		}
		if err := openapi3filter.ValidateResponse(context.Background(), input); err != nil {
			t.Errorf("%s: response validation failed: %v", step.name, err)
		}
	}
}
