package report

import (
	"github.com/itemledger/itemledger/internal/model"
)

// UsersSummary reports item statistics for every user, in snapshot order.
func UsersSummary(snap *model.Snapshot) *UsersSummaryReport {
	byOwner := groupByOwner(snap.Items)

	summaries := make([]UserSummary, 0, len(snap.Users))
	for _, u := range snap.Users {
		owned := nonNilItems(byOwner[u.ID])
		agg := aggregateItems(owned)
		summaries = append(summaries, UserSummary{
			User: u,
			Statistics: UserStatistics{
				TotalItems:       agg.count,
				TotalValue:       round2(agg.sum),
				AverageItemPrice: round2(agg.average()),
				Items:            owned,
			},
		})
	}

	return &UsersSummaryReport{
		TotalUsers:   len(snap.Users),
		UsersSummary: summaries,
	}
}

// ItemsSummary reports global statistics and joins every item with its owner.
func ItemsSummary(snap *model.Snapshot) *ItemsSummaryReport {
	return &ItemsSummaryReport{
		Statistics: aggregateItems(snap.Items).itemsStatistics(),
		Items:      joinOwners(snap.Items, snap.UserIndex()),
	}
}

// UserDetail reports on a single user. It fails with ErrUserNotFound when the
// id is not in the snapshot.
func UserDetail(snap *model.Snapshot, userID int64) (*UserDetailReport, error) {
	user, ok := snap.UserIndex()[userID]
	if !ok {
		return nil, ErrUserNotFound
	}

	owned := []model.Item{}
	for _, it := range snap.Items {
		if it.OwnedBy(userID) {
			owned = append(owned, it)
		}
	}

	return &UserDetailReport{
		User:       user,
		Items:      owned,
		Statistics: aggregateItems(owned).userReportStatistics(),
	}, nil
}

// SystemOverview reports global totals, per-user rows in snapshot order and
// the TopN users by item count and by total value.
func SystemOverview(snap *model.Snapshot) *SystemOverviewReport {
	total := aggregateItems(snap.Items)
	byOwner := groupByOwner(snap.Items)

	rows := make([]UserStats, 0, len(snap.Users))
	for _, u := range snap.Users {
		agg := aggregateItems(byOwner[u.ID])
		rows = append(rows, UserStats{
			UserID:     u.ID,
			UserName:   u.FullName,
			UserEmail:  u.Email,
			ItemCount:  agg.count,
			TotalValue: round2(agg.sum),
		})
	}

	return &SystemOverviewReport{
		Overview: OverviewStatistics{
			TotalUsers:       len(snap.Users),
			TotalItems:       total.count,
			TotalValue:       round2(total.sum),
			AverageItemPrice: round2(total.average()),
		},
		TopUsersByItemCount:  rankDesc(rows, TopN, func(s UserStats) int { return s.ItemCount }),
		TopUsersByTotalValue: rankDesc(rows, TopN, func(s UserStats) float64 { return s.TotalValue }),
		AllUserStatistics:    rows,
	}
}

// ItemsByPriceRange keeps items whose price lies within r (inclusive) and
// joins them with their owners.
func ItemsByPriceRange(snap *model.Snapshot, r PriceRange) *PriceRangeReport {
	matched := []model.Item{}
	for _, it := range snap.Items {
		if r.Contains(it.Price) {
			matched = append(matched, it)
		}
	}

	return &PriceRangeReport{
		Filters:    r,
		TotalItems: len(matched),
		Items:      joinOwners(matched, snap.UserIndex()),
	}
}
