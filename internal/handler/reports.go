package handler

import (
	"log/slog"
	"net/http"

	"github.com/itemledger/itemledger/internal/service"
)

// ReportHandler serves the aggregation reports.
type ReportHandler struct {
	svc  *service.ReportService
	errs errorResponder
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(svc *service.ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{svc: svc, errs: errorResponder{logger: logger.With("component", "report_handler")}}
}

// UsersSummary handles GET /api/v1/reports/users-summary.
func (h *ReportHandler) UsersSummary(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.UsersSummary(r.Context())
	if err != nil {
		h.errs.serviceError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// ItemsSummary handles GET /api/v1/reports/items-summary.
func (h *ReportHandler) ItemsSummary(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.ItemsSummary(r.Context())
	if err != nil {
		h.errs.serviceError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// UserDetail handles GET /api/v1/reports/user/{user_id}.
func (h *ReportHandler) UserDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user_id")
	if err != nil {
		h.errs.validation(w, err.Error())
		return
	}

	rep, err := h.svc.UserDetail(r.Context(), id)
	if err != nil {
		h.errs.serviceError(w, r, err, id)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// SystemOverview handles GET /api/v1/reports/system-overview.
func (h *ReportHandler) SystemOverview(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.SystemOverview(r.Context())
	if err != nil {
		h.errs.serviceError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// ItemsByPriceRange handles GET /api/v1/reports/items-by-price-range.
func (h *ReportHandler) ItemsByPriceRange(w http.ResponseWriter, r *http.Request) {
	rng, err := priceRangeParams(r)
	if err != nil {
		h.errs.validation(w, err.Error())
		return
	}

	rep, err := h.svc.ItemsByPriceRange(r.Context(), rng)
	if err != nil {
		h.errs.serviceError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
