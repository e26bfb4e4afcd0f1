package service

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/civicportal/admin-api/internal/core/domain"
	"github.com/civicportal/admin-api/internal/core/ports"
)

type AnalyticsService struct {
	issues ports.IssueStatsRepository
	users  ports.UserRepository
	cache  StatsCache
	log    zerolog.Logger
}

func NewAnalyticsService(issues ports.IssueStatsRepository, users ports.UserRepository, cache StatsCache, log zerolog.Logger) *AnalyticsService {
	if cache == nil {
		cache = NoopStatsCache{}
	}
	return &AnalyticsService{issues: issues, users: users, cache: cache, log: log}
}

// Dashboard returns the aggregate counters. A cached copy is served when
// present; every issue or user write drops it.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	// The generation is read before counting. A write landing mid-count bumps
	// it, so what we store below is filed under a key no reader will ask for.
	gen, err := s.cache.Generation(ctx)
	cacheable := err == nil
	if err != nil {
		s.log.Warn().Err(err).Msg("dashboard cache generation read failed, computing")
	} else if cached, err := s.cache.GetDashboard(ctx, gen); err != nil {
		s.log.Warn().Err(err).Msg("dashboard cache read failed, computing")
	} else if cached != nil {
		return cached, nil
	}

	stats := &domain.DashboardStats{}
	counters := []struct {
		status domain.IssueStatus
		dst    *int64
	}{
		{"", &stats.TotalIssues},
		{domain.StatusPending, &stats.PendingIssues},
		{domain.StatusInProgress, &stats.InProgressIssues},
		{domain.StatusResolved, &stats.ResolvedIssues},
	}
	for _, c := range counters {
		n, err := s.issues.CountByStatus(ctx, c.status)
		if err != nil {
			return nil, fmt.Errorf("count issues: %w", err)
		}
		*c.dst = n
	}

	avgHours, err := s.issues.AverageResolutionHours(ctx)
	if err != nil {
		return nil, fmt.Errorf("average response time: %w", err)
	}
	stats.AverageResponseTime = round1(avgHours)

	rating, err := s.issues.AverageRating(ctx)
	if err != nil {
		return nil, fmt.Errorf("citizen satisfaction: %w", err)
	}
	stats.CitizenSatisfaction = round1(rating)

	officers, err := s.users.CountActiveOfficers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count officers: %w", err)
	}
	stats.ActiveOfficers = officers

	if cacheable {
		if err := s.cache.SetDashboard(ctx, gen, stats); err != nil {
			s.log.Warn().Err(err).Msg("dashboard cache write failed")
		}
	}
	return stats, nil
}

// CategoryBreakdown counts issues per category. Categories with no issues are
// reported with a zero count.
func (s *AnalyticsService) CategoryBreakdown(ctx context.Context) ([]domain.CategoryCount, error) {
	counts, err := s.issues.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[domain.IssueCategory]int64, len(counts))
	for _, c := range counts {
		byCategory[c.Category] = c.Count
	}

	out := make([]domain.CategoryCount, 0, len(domain.IssueCategories))
	for _, cat := range domain.IssueCategories {
		out = append(out, domain.CategoryCount{Category: cat, Count: byCategory[cat]})
	}
	return out, nil
}

func (s *AnalyticsService) DepartmentPerformance(ctx context.Context) ([]domain.DepartmentPerformance, error) {
	return s.issues.DepartmentPerformance(ctx)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
