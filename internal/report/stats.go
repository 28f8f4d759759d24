package report

import (
	"cmp"
	"math"
	"slices"

	"github.com/itemledger/itemledger/internal/model"
)

// roundLimit is where float64 stops carrying a cent digit; larger values
// are returned as is so x*100 cannot overflow.
const roundLimit = 1e15

// round2 rounds half away from zero to two decimals.
func round2(x float64) float64 {
	if math.IsNaN(x) || math.Abs(x) >= roundLimit {
		return x
	}
	return math.Round(x*100) / 100
}

// aggregate accumulates unrounded figures over a set of items.
type aggregate struct {
	count    int
	sum      float64
	min, max float64
}

func aggregateItems(items []model.Item) aggregate {
	var a aggregate
	for i, it := range items {
		if i == 0 || it.Price < a.min {
			a.min = it.Price
		}
		if i == 0 || it.Price > a.max {
			a.max = it.Price
		}
		a.sum += it.Price
		a.count++
	}
	return a
}

func (a aggregate) average() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}

func (a aggregate) itemsStatistics() ItemsStatistics {
	return ItemsStatistics{
		TotalItems:   a.count,
		TotalValue:   round2(a.sum),
		AveragePrice: round2(a.average()),
		MinPrice:     round2(a.min),
		MaxPrice:     round2(a.max),
	}
}

func (a aggregate) userReportStatistics() UserReportStatistics {
	return UserReportStatistics{
		TotalItems:       a.count,
		TotalValue:       round2(a.sum),
		AverageItemPrice: round2(a.average()),
		MinItemPrice:     round2(a.min),
		MaxItemPrice:     round2(a.max),
	}
}

// groupByOwner indexes items by owner id, keeping snapshot order per owner.
func groupByOwner(items []model.Item) map[int64][]model.Item {
	groups := make(map[int64][]model.Item)
	for _, it := range items {
		groups[it.OwnerID] = append(groups[it.OwnerID], it)
	}
	return groups
}

func joinOwners(items []model.Item, users map[int64]model.User) []ItemWithOwner {
	joined := make([]ItemWithOwner, 0, len(items))
	for _, it := range items {
		row := ItemWithOwner{Item: it}
		if owner, ok := users[it.OwnerID]; ok {
			row.Owner = &owner
		}
		joined = append(joined, row)
	}
	return joined
}

// rankDesc returns at most n rows ordered by key, highest first.
// The sort is stable so equal keys keep their input order.
func rankDesc[K cmp.Ordered](rows []UserStats, n int, key func(UserStats) K) []UserStats {
	ranked := slices.Clone(rows)
	slices.SortStableFunc(ranked, func(a, b UserStats) int {
		return cmp.Compare(key(b), key(a))
	})
	return ranked[:min(n, len(ranked))]
}

func nonNilItems(items []model.Item) []model.Item {
	if items == nil {
		return []model.Item{}
	}
	return items
}
