package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

const statsKeyPrefix = "sos:stats:"

var timeframes = []domain.Timeframe{
	domain.TimeframeDay,
	domain.TimeframeWeek,
	domain.TimeframeMonth,
	domain.TimeframeYear,
}

type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatsCache(r *Redis, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &StatsCache{client: r.Client, ttl: ttl}
}

func statsKey(tf domain.Timeframe) string {
	return statsKeyPrefix + string(tf)
}

// Get returns e.ErrNotFound on a cache miss.
func (c *StatsCache) Get(ctx context.Context, tf domain.Timeframe) (*domain.SOSStats, error) {
	data, err := c.client.Get(ctx, statsKey(tf)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, e.ErrNotFound
		}
		return nil, err
	}

	var s domain.SOSStats
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *StatsCache) Set(ctx context.Context, tf domain.Timeframe, stats *domain.SOSStats) error {
	b, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statsKey(tf), b, c.ttl).Err()
}

// Invalidate drops every cached timeframe.
func (c *StatsCache) Invalidate(ctx context.Context) error {
	keys := make([]string, 0, len(timeframes))
	for _, tf := range timeframes {
		keys = append(keys, statsKey(tf))
	}
	return c.client.Del(ctx, keys...).Err()
}
