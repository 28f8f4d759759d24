// Package report computes read-only views over a snapshot of users and items:
// per-user summaries, global item statistics, single-user detail, a system
// overview with top-N rankings, and price range filtering.
//
// All functions are pure. Derived amounts (totals, averages, min, max) are
// rounded to two decimals, half away from zero; item prices are passed through
// untouched. Empty inputs produce zero values, never errors.
package report

import (
	"errors"

	"github.com/itemledger/itemledger/internal/model"
)

// TopN is the length cap for the system overview rankings.
const TopN = 5

// ErrUserNotFound is returned by UserDetail for an unknown user id.
var ErrUserNotFound = errors.New("user not found")

// UserStatistics describes one user's items.
type UserStatistics struct {
	TotalItems       int          `json:"total_items"`
	TotalValue       float64      `json:"total_value"`
	AverageItemPrice float64      `json:"average_item_price"`
	Items            []model.Item `json:"items"`
}

// UserSummary pairs a user with its statistics.
type UserSummary struct {
	User       model.User     `json:"user"`
	Statistics UserStatistics `json:"statistics"`
}

// UsersSummaryReport lists every user in store order.
type UsersSummaryReport struct {
	TotalUsers   int           `json:"total_users"`
	UsersSummary []UserSummary `json:"users_summary"`
}

// ItemsStatistics aggregates a set of items.
type ItemsStatistics struct {
	TotalItems   int     `json:"total_items"`
	TotalValue   float64 `json:"total_value"`
	AveragePrice float64 `json:"average_price"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
}

// ItemWithOwner is an item joined with its owner. Owner is nil when the
// owner id does not match an existing user.
type ItemWithOwner struct {
	Item  model.Item  `json:"item"`
	Owner *model.User `json:"owner"`
}

// ItemsSummaryReport covers every item.
type ItemsSummaryReport struct {
	Statistics ItemsStatistics `json:"statistics"`
	Items      []ItemWithOwner `json:"items"`
}

// UserReportStatistics aggregates one user's items.
type UserReportStatistics struct {
	TotalItems       int     `json:"total_items"`
	TotalValue       float64 `json:"total_value"`
	AverageItemPrice float64 `json:"average_item_price"`
	MinItemPrice     float64 `json:"min_item_price"`
	MaxItemPrice     float64 `json:"max_item_price"`
}

// UserDetailReport is the full view of a single user.
type UserDetailReport struct {
	User       model.User           `json:"user"`
	Items      []model.Item         `json:"items"`
	Statistics UserReportStatistics `json:"statistics"`
}

// OverviewStatistics holds system-wide totals.
type OverviewStatistics struct {
	TotalUsers       int     `json:"total_users"`
	TotalItems       int     `json:"total_items"`
	TotalValue       float64 `json:"total_value"`
	AverageItemPrice float64 `json:"average_item_price"`
}

// UserStats is the flattened per-user row used by the overview.
type UserStats struct {
	UserID     int64   `json:"user_id"`
	UserName   string  `json:"user_name"`
	UserEmail  string  `json:"user_email"`
	ItemCount  int     `json:"item_count"`
	TotalValue float64 `json:"total_value"`
}

// SystemOverviewReport summarizes the whole system.
type SystemOverviewReport struct {
	Overview             OverviewStatistics `json:"overview"`
	TopUsersByItemCount  []UserStats        `json:"top_users_by_item_count"`
	TopUsersByTotalValue []UserStats        `json:"top_users_by_total_value"`
	AllUserStatistics    []UserStats        `json:"all_user_statistics"`
}

// PriceRange bounds are inclusive; a nil bound is unbounded.
type PriceRange struct {
	MinPrice *float64 `json:"min_price"`
	MaxPrice *float64 `json:"max_price"`
}

// Contains reports whether price lies within the range.
func (r PriceRange) Contains(price float64) bool {
	if r.MinPrice != nil && price < *r.MinPrice {
		return false
	}
	if r.MaxPrice != nil && price > *r.MaxPrice {
		return false
	}
	return true
}

// PriceRangeReport lists items within a price range.
type PriceRangeReport struct {
	Filters    PriceRange      `json:"filters"`
	TotalItems int             `json:"total_items"`
	Items      []ItemWithOwner `json:"items"`
}
