package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/itemledger/itemledger/internal/handler/dto"
	"github.com/itemledger/itemledger/internal/middleware"
	"github.com/itemledger/itemledger/internal/model"
	"github.com/itemledger/itemledger/internal/service"
)

const codeValidation = "VALIDATION_ERROR"

// errorResponder maps service errors onto HTTP responses.
type errorResponder struct {
	logger *slog.Logger
}

func (e errorResponder) validation(w http.ResponseWriter, detail string) {
	writeError(w, http.StatusUnprocessableEntity, codeValidation, detail)
}

// serviceError maps err to a status and error code. id names the
// resource the request addressed and is only used in not-found details.
func (e errorResponder) serviceError(w http.ResponseWriter, r *http.Request, err error, id int64) {
	var verr *model.ValidationError
	var ferr *dto.FieldError

	switch {
	case errors.As(err, &verr):
		e.validation(w, verr.Error())
	case errors.As(err, &ferr):
		e.validation(w, ferr.Error())
	case errors.Is(err, service.ErrInvalidPagination):
		e.validation(w, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", fmt.Sprintf("User with ID %d not found", id))
	case errors.Is(err, service.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "ITEM_NOT_FOUND", fmt.Sprintf("Item with ID %d not found", id))
	case errors.Is(err, service.ErrEmailExists):
		writeError(w, http.StatusBadRequest, "EMAIL_EXISTS", "Email already registered")
	default:
		e.logger.Error("request failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
