// Package service provides business logic for the application.
package service

import (
	"errors"
)

// Service errors.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrItemNotFound      = errors.New("item not found")
	ErrEmailExists       = errors.New("email already registered")
	ErrInvalidPagination = errors.New("skip and limit must be non-negative")
)

// DefaultLimit is the page size used when a listing does not specify one.
const DefaultLimit = 100

// Page selects a window of a listing with slice semantics.
type Page struct {
	Skip  int
	Limit int
}

// DefaultPage returns the first DefaultLimit records.
func DefaultPage() Page {
	return Page{Skip: 0, Limit: DefaultLimit}
}

// Validate rejects negative offsets and sizes.
func (p Page) Validate() error {
	if p.Skip < 0 || p.Limit < 0 {
		return ErrInvalidPagination
	}
	return nil
}

// paginate returns records[skip : skip+limit], clamped to the slice bounds.
func paginate[T any](records []T, p Page) []T {
	if p.Skip >= len(records) {
		return records[:0]
	}
	end := len(records)
	if p.Limit < end-p.Skip {
		end = p.Skip + p.Limit
	}
	return records[p.Skip:end]
}
