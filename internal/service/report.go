package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/itemledger/itemledger/internal/metrics"
	"github.com/itemledger/itemledger/internal/model"
	"github.com/itemledger/itemledger/internal/report"
)

// Report names used for metrics and logs.
const (
	ReportUsersSummary   = "users_summary"
	ReportItemsSummary   = "items_summary"
	ReportUserDetail     = "user_detail"
	ReportSystemOverview = "system_overview"
	ReportPriceRange     = "items_by_price_range"
)

// Snapshotter provides a consistent read of users and items.
type Snapshotter interface {
	Snapshot(ctx context.Context) (*model.Snapshot, error)
}

// ReportService takes one snapshot per request and hands it to the report package.
type ReportService struct {
	store   Snapshotter
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewReportService creates a new ReportService.
func NewReportService(store Snapshotter, recorder metrics.Recorder, logger *slog.Logger) *ReportService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		store:   store,
		metrics: recorder,
		logger:  logger.With("component", "report_service"),
		now:     time.Now,
	}
}

// generate runs build against a fresh snapshot and records timing.
func generate[T any](ctx context.Context, s *ReportService, name string, build func(*model.Snapshot) (T, error)) (T, error) {
	var zero T

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return zero, fmt.Errorf("failed to take snapshot for %s: %w", name, err)
	}
	s.metrics.ObserveSnapshotSize(len(snap.Users), len(snap.Items))

	start := s.now()
	result, err := build(snap)
	elapsed := s.now().Sub(start)
	if err != nil {
		return zero, err
	}

	s.metrics.ObserveReportDuration(name, elapsed)
	s.logger.Debug("report generated",
		"report", name,
		"snapshot_id", snap.ID,
		"users", len(snap.Users),
		"items", len(snap.Items),
		"duration_ms", elapsed.Milliseconds(),
	)
	return result, nil
}

// UsersSummary reports item statistics for every user.
func (s *ReportService) UsersSummary(ctx context.Context) (*report.UsersSummaryReport, error) {
	return generate(ctx, s, ReportUsersSummary, func(snap *model.Snapshot) (*report.UsersSummaryReport, error) {
		return report.UsersSummary(snap), nil
	})
}

// ItemsSummary reports global item statistics with owners attached.
func (s *ReportService) ItemsSummary(ctx context.Context) (*report.ItemsSummaryReport, error) {
	return generate(ctx, s, ReportItemsSummary, func(snap *model.Snapshot) (*report.ItemsSummaryReport, error) {
		return report.ItemsSummary(snap), nil
	})
}

// UserDetail reports on one user, or returns ErrUserNotFound.
func (s *ReportService) UserDetail(ctx context.Context, userID int64) (*report.UserDetailReport, error) {
	return generate(ctx, s, ReportUserDetail, func(snap *model.Snapshot) (*report.UserDetailReport, error) {
		r, err := report.UserDetail(snap, userID)
		if errors.Is(err, report.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return r, err
	})
}

// SystemOverview reports totals and top-N rankings.
func (s *ReportService) SystemOverview(ctx context.Context) (*report.SystemOverviewReport, error) {
	return generate(ctx, s, ReportSystemOverview, func(snap *model.Snapshot) (*report.SystemOverviewReport, error) {
		return report.SystemOverview(snap), nil
	})
}

// ItemsByPriceRange filters items by an inclusive, optionally open price range.
func (s *ReportService) ItemsByPriceRange(ctx context.Context, r report.PriceRange) (*report.PriceRangeReport, error) {
	return generate(ctx, s, ReportPriceRange, func(snap *model.Snapshot) (*report.PriceRangeReport, error) {
		return report.ItemsByPriceRange(snap, r), nil
	})
}
