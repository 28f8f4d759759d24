package handler

import (
	"log/slog"
	"net/http"

	"github.com/itemledger/itemledger/internal/handler/dto"
	"github.com/itemledger/itemledger/internal/service"
)

// UserHandler handles HTTP requests for user operations.
type UserHandler struct {
	svc  *service.UserService
	errs errorResponder
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, errs: errorResponder{logger: logger.With("component", "user_handler")}}
}

// Create handles POST /api/v1/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errs.validation(w, err.Error())
		return
	}

	input, err := req.ToNewUser()
	if err != nil {
		h.errs.serviceError(w, r, err, 0)
		return
	}

	user, err := h.svc.CreateUser(r.Context(), input)
	if err != nil {
		h.errs.serviceError(w, r, err, 0)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// List handles GET /api/v1/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.errs.serviceError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Get handles GET /api/v1/users/{user_id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user_id")
	if err != nil {
		h.errs.validation(w, err.Error())
		return
	}

	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		h.errs.serviceError(w, r, err, id)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Update handles PUT /api/v1/users/{user_id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user_id")
	if err != nil {
		h.errs.validation(w, err.Error())
		return
	}

	var req dto.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errs.validation(w, err.Error())
		return
	}

	user, err := h.svc.UpdateUser(r.Context(), id, req.ToPatch())
	if err != nil {
		h.errs.serviceError(w, r, err, id)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /api/v1/users/{user_id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user_id")
	if err != nil {
		h.errs.validation(w, err.Error())
		return
	}

	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		h.errs.serviceError(w, r, err, id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
