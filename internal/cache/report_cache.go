package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AmanS2501/Tech-Alpha-Hack/internal/config"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/domain"
	"github.com/redis/go-redis/v9"
)

const latestReportKey = "engine:cycle_report:latest"

// ReportCache stores the most recent evaluation cycle report so dashboard
// reads do not trigger a fresh forecast pass.
type ReportCache interface {
	GetLatest(ctx context.Context) (*domain.CycleReport, bool, error)
	SetLatest(ctx context.Context, report *domain.CycleReport) error
	Invalidate(ctx context.Context) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

// NewReportCache returns a redis-backed cache, or a noop cache when caching
// is disabled in config.
func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisReportCache{
		client: client,
		ttl:    ttl,
	}, nil
}

// NewNoopReportCache returns a cache that never hits.
func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func (c *redisReportCache) GetLatest(ctx context.Context) (*domain.CycleReport, bool, error) {
	payload, err := c.client.Get(ctx, latestReportKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report domain.CycleReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("decode cycle report cache: %w", err)
	}

	return &report, true, nil
}

func (c *redisReportCache) SetLatest(ctx context.Context, report *domain.CycleReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode cycle report cache: %w", err)
	}

	if err := c.client.Set(ctx, latestReportKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisReportCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, latestReportKey).Err()
}

func (n *noopReportCache) GetLatest(ctx context.Context) (*domain.CycleReport, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) SetLatest(ctx context.Context, report *domain.CycleReport) error {
	return nil
}

func (n *noopReportCache) Invalidate(ctx context.Context) error {
	return nil
}
