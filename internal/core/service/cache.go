package service

import (
	"context"

	"github.com/civicportal/admin-api/internal/core/domain"
)

// StatsCache abstracts the dashboard cache (Redis). Entries are keyed by a
// generation that Invalidate bumps, so stats computed before a write can never
// be served after it. A miss is (nil, nil).
type StatsCache interface {
	Generation(ctx context.Context) (int64, error)
	GetDashboard(ctx context.Context, gen int64) (*domain.DashboardStats, error)
	SetDashboard(ctx context.Context, gen int64, stats *domain.DashboardStats) error
	Invalidate(ctx context.Context) error
}

// NoopStatsCache never stores anything.
type NoopStatsCache struct{}

func (NoopStatsCache) Generation(context.Context) (int64, error) { return 0, nil }
func (NoopStatsCache) GetDashboard(context.Context, int64) (*domain.DashboardStats, error) {
	return nil, nil
}
func (NoopStatsCache) SetDashboard(context.Context, int64, *domain.DashboardStats) error { return nil }
func (NoopStatsCache) Invalidate(context.Context) error                                 { return nil }
