package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
	"github.com/vncsmyrnk/quickpolls/internal/core/ports"
)

type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.StatsCache = (*StatsCache)(nil)

// NewStatsCache connects to the redis at url and checks it answers.
func NewStatsCache(ctx context.Context, url string, ttl time.Duration) (*StatsCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &StatsCache{client: c, ttl: ttl}, nil
}

func statsKey(pollID int64) string {
	return fmt.Sprintf("poll:%d:stats", pollID)
}

// Get returns nil stats on a miss.
func (c *StatsCache) Get(ctx context.Context, pollID int64) (*domain.Stats, error) {
	raw, err := c.client.Get(ctx, statsKey(pollID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read stats from redis: %w", err)
	}

	var stats domain.Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode cached stats: %w", err)
	}
	return &stats, nil
}

func (c *StatsCache) Set(ctx context.Context, pollID int64, stats domain.Stats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	if err := c.client.Set(ctx, statsKey(pollID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write stats to redis: %w", err)
	}
	return nil
}

func (c *StatsCache) Invalidate(ctx context.Context, pollID int64) error {
	if err := c.client.Del(ctx, statsKey(pollID)).Err(); err != nil {
		return fmt.Errorf("failed to drop cached stats: %w", err)
	}
	return nil
}

func (c *StatsCache) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}
	return nil
}
