package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/itemledger/itemledger/internal/model"
)

func TestItemHandler_CRUD(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/v1/items?owner_id=7", `{"title":"Lamp","price":19.99}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	item := decode[model.Item](t, rec)
	if item.ID != 1 || item.OwnerID != 7 || item.Description != nil {
		t.Errorf("unexpected item: %+v", item)
	}

	rec = do(t, h, http.MethodPut, "/api/v1/items/1", `{"description":"brass","price":25}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	item = decode[model.Item](t, rec)
	if item.Title != "Lamp" || item.Price != 25 || item.Description == nil || *item.Description != "brass" {
		t.Errorf("unexpected item: %+v", item)
	}

	if rec := do(t, h, http.MethodDelete, "/api/v1/items/1", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}

	resp := assertError(t, do(t, h, http.MethodGet, "/api/v1/items/1", ""), http.StatusNotFound, "ITEM_NOT_FOUND")
	if resp.Detail != "Item with ID 1 not found" {
		t.Errorf("detail = %q", resp.Detail)
	}
}

func TestItemHandler_ListPagination(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)
	for i := 1; i <= 5; i++ {
		owner := 1 + i%2
		body := fmt.Sprintf(`{"title":"item %d","price":%d}`, i, i)
		if rec := do(t, h, http.MethodPost, fmt.Sprintf("/api/v1/items?owner_id=%d", owner), body); rec.Code != http.StatusCreated {
			t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
		}
	}

	tests := []struct {
		name    string
		target  string
		wantIDs []int64
	}{
		{"defaults", "/api/v1/items", []int64{1, 2, 3, 4, 5}},
		{"window", "/api/v1/items?skip=1&limit=2", []int64{2, 3}},
		{"skip past end", "/api/v1/items?skip=10", []int64{}},
		{"by owner", "/api/v1/items/user/2", []int64{1, 3, 5}},
		{"by owner window", "/api/v1/items/user/2?skip=1&limit=1", []int64{3}},
		{"unknown owner", "/api/v1/items/user/99", []int64{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			items := decode[[]model.Item](t, rec)
			if len(items) != len(tt.wantIDs) {
				t.Fatalf("got %d items, want %d", len(items), len(tt.wantIDs))
			}
			for i, it := range items {
				if it.ID != tt.wantIDs[i] {
					t.Errorf("items[%d].ID = %d, want %d", i, it.ID, tt.wantIDs[i])
				}
			}
		})
	}
}

func TestItemHandler_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		code   string
	}{
		{"missing owner", http.MethodPost, "/api/v1/items", `{"title":"x","price":1}`, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"bad owner", http.MethodPost, "/api/v1/items?owner_id=x", `{"title":"x","price":1}`, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"zero price", http.MethodPost, "/api/v1/items?owner_id=1", `{"title":"x","price":0}`, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"missing price", http.MethodPost, "/api/v1/items?owner_id=1", `{"title":"x"}`, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"missing title", http.MethodPost, "/api/v1/items?owner_id=1", `{"price":2}`, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"negative skip", http.MethodGet, "/api/v1/items?skip=-1", "", http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"negative limit", http.MethodGet, "/api/v1/items?limit=-1", "", http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"bad limit", http.MethodGet, "/api/v1/items?limit=many", "", http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"update unknown", http.MethodPut, "/api/v1/items/9", `{"price":3}`, http.StatusNotFound, "ITEM_NOT_FOUND"},
		{"delete unknown", http.MethodDelete, "/api/v1/items/9", "", http.StatusNotFound, "ITEM_NOT_FOUND"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assertError(t, do(t, newTestRouter(t), tt.method, tt.target, tt.body), tt.status, tt.code)
		})
	}
}
