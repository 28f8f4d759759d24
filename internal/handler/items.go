package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/itemledger/itemledger/internal/handler/dto"
	"github.com/itemledger/itemledger/internal/service"
)

// ItemHandler handles HTTP requests for item operations.
type ItemHandler struct {
	svc  *service.ItemService
	errs errorResponder
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(svc *service.ItemService, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{svc: svc, errs: errorResponder{logger: logger.With("component", "item_handler")}}
}

// Create handles POST /api/v1/items?owner_id={id}.
// The owner is not required to exist.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	rawOwner := r.URL.Query().Get("owner_id")
	if rawOwner == "" {
		h.errs.validation(w, "owner_id: field required")
		return
	}
	ownerID, err := strconv.ParseInt(rawOwner, 10, 64)
	if err != nil {
		h.errs.validation(w, "owner_id: must be an integer")
		return
	}

	var req dto.CreateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errs.validation(w, err.Error())
		return
	}

	input, err := req.ToNewItem(ownerID)
	if err != nil {
		h.errs.serviceError(w, r, err, 0)
		return
	}

	item, err := h.svc.CreateItem(r.Context(), input)
	if err != nil {
		h.errs.serviceError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// List handles GET /api/v1/items.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r)
	if err != nil {
		h.errs.validation(w, err.Error())
		return
	}

	items, err := h.svc.ListItems(r.Context(), page)
	if err != nil {
		h.errs.serviceError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ListByOwner handles GET /api/v1/items/user/{user_id}.
func (h *ItemHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "user_id")
	if err != nil {
		h.errs.validation(w, err.Error())
		return
	}
	page, err := pageParams(r)
	if err != nil {
		h.errs.validation(w, err.Error())
		return
	}

	items, err := h.svc.ListItemsByOwner(r.Context(), ownerID, page)
	if err != nil {
		h.errs.serviceError(w, r, err, ownerID)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Get handles GET /api/v1/items/{item_id}.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "item_id")
	if err != nil {
		h.errs.validation(w, err.Error())
		return
	}

	item, err := h.svc.GetItem(r.Context(), id)
	if err != nil {
		h.errs.serviceError(w, r, err, id)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Update handles PUT /api/v1/items/{item_id}.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "item_id")
	if err != nil {
		h.errs.validation(w, err.Error())
		return
	}

	var req dto.UpdateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errs.validation(w, err.Error())
		return
	}

	item, err := h.svc.UpdateItem(r.Context(), id, req.ToPatch())
	if err != nil {
		h.errs.serviceError(w, r, err, id)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /api/v1/items/{item_id}.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "item_id")
	if err != nil {
		h.errs.validation(w, err.Error())
		return
	}

	if err := h.svc.DeleteItem(r.Context(), id); err != nil {
		h.errs.serviceError(w, r, err, id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
