package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/civicportal/admin-api/internal/api/metrics"
	"github.com/civicportal/admin-api/internal/core/domain"
)

const (
	dashboardKeyPrefix = "dashboard:stats:"
	dashboardGenKey    = "dashboard:gen"
)

func dashboardKey(gen int64) string {
	return fmt.Sprintf("%s%d", dashboardKeyPrefix, gen)
}

// StatsCache stores the computed dashboard as JSON, one key per generation.
// Invalidate bumps the generation; superseded entries age out on their TTL.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

// Generation returns the current dashboard generation. An unset counter is 0.
func (c *StatsCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, dashboardGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("dashboard cache generation: %w", err)
	}
	return gen, nil
}

// GetDashboard returns the stats cached for gen, or nil on a miss.
func (c *StatsCache) GetDashboard(ctx context.Context, gen int64) (*domain.DashboardStats, error) {
	key := dashboardKey(gen)
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.DashboardCacheTotal.WithLabelValues("miss").Inc()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dashboard cache get: %w", err)
	}

	var stats domain.DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		// Drop an unreadable entry so the next read recomputes.
		_ = c.client.Del(ctx, key).Err()
		metrics.DashboardCacheTotal.WithLabelValues("miss").Inc()
		return nil, nil
	}
	metrics.DashboardCacheTotal.WithLabelValues("hit").Inc()
	return &stats, nil
}

func (c *StatsCache) SetDashboard(ctx context.Context, gen int64, stats *domain.DashboardStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("dashboard cache encode: %w", err)
	}
	return c.client.Set(ctx, dashboardKey(gen), raw, c.ttl).Err()
}

func (c *StatsCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, dashboardGenKey).Err()
}
