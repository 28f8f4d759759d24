package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/itemledger/itemledger/internal/report"
	"github.com/itemledger/itemledger/internal/service"
)

var errInvalidBody = errors.New("invalid JSON body")

// pathID parses an int64 URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: must be an integer", name)
	}
	return id, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: must be an integer", name)
	}
	return n, nil
}

// queryFloat parses an optional finite float query parameter. A missing value yields nil.
func queryFloat(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%s: must be a number", name)
	}
	return &f, nil
}

// pageParams reads skip and limit with the service defaults.
func pageParams(r *http.Request) (service.Page, error) {
	page := service.DefaultPage()

	skip, err := queryInt(r, "skip", page.Skip)
	if err != nil {
		return page, err
	}
	limit, err := queryInt(r, "limit", page.Limit)
	if err != nil {
		return page, err
	}

	page = service.Page{Skip: skip, Limit: limit}
	if err := page.Validate(); err != nil {
		return page, err
	}
	return page, nil
}

// priceRangeParams reads min_price and max_price.
func priceRangeParams(r *http.Request) (report.PriceRange, error) {
	lo, err := queryFloat(r, "min_price")
	if err != nil {
		return report.PriceRange{}, err
	}
	hi, err := queryFloat(r, "max_price")
	if err != nil {
		return report.PriceRange{}, err
	}
	return report.PriceRange{MinPrice: lo, MaxPrice: hi}, nil
}

// decodeJSON decodes the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidBody
	}
	return nil
}
