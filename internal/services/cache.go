package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/AnshRaj112/moodlog-backend/internal/stats"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
)

// StatsCache holds the dashboard summary of one user for one journal day. Any
// entry write for the user invalidates the day's summary.
type StatsCache interface {
	Get(ctx context.Context, userID, day string) (stats.Summary, bool, error)
	Set(ctx context.Context, userID, day string, s stats.Summary) error
	Invalidate(ctx context.Context, userID, day string) error
}

// StatsCacheKey generates the cache key for a user's summary on day
func StatsCacheKey(userID, day string) string {
	return CacheKeyPrefix + "stats:" + userID + ":" + day
}

// RedisStatsCache shares summaries between instances. A TTL of zero disables it.
type RedisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStatsCache(client *redis.Client, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{client: client, ttl: ttl}
}

func (c *RedisStatsCache) Get(ctx context.Context, userID, day string) (stats.Summary, bool, error) {
	if c.ttl <= 0 {
		return stats.Summary{}, false, nil
	}
	val, err := c.client.Get(ctx, StatsCacheKey(userID, day)).Bytes()
	if errors.Is(err, redis.Nil) {
		return stats.Summary{}, false, nil // cache miss, not an error
	}
	if err != nil {
		return stats.Summary{}, false, err
	}

	var s stats.Summary
	if err := json.Unmarshal(val, &s); err != nil {
		return stats.Summary{}, false, err
	}
	return s, true, nil
}

func (c *RedisStatsCache) Set(ctx context.Context, userID, day string, s stats.Summary) error {
	if c.ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, StatsCacheKey(userID, day), data, c.ttl).Err()
}

func (c *RedisStatsCache) Invalidate(ctx context.Context, userID, day string) error {
	return c.client.Del(ctx, StatsCacheKey(userID, day)).Err()
}

type cachedSummary struct {
	summary stats.Summary
	expires time.Time
}

// MemoryStatsCache is the in-process StatsCache. A TTL of zero disables it.
type MemoryStatsCache struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	items map[string]cachedSummary
}

func NewMemoryStatsCache(ttl time.Duration) *MemoryStatsCache {
	return &MemoryStatsCache{ttl: ttl, now: time.Now, items: make(map[string]cachedSummary)}
}

func (c *MemoryStatsCache) Get(_ context.Context, userID, day string) (stats.Summary, bool, error) {
	key := StatsCacheKey(userID, day)

	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[key]
	if !ok {
		return stats.Summary{}, false, nil
	}
	if !c.now().Before(item.expires) {
		delete(c.items, key)
		return stats.Summary{}, false, nil
	}
	return item.summary, true, nil
}

func (c *MemoryStatsCache) Set(_ context.Context, userID, day string, s stats.Summary) error {
	if c.ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[StatsCacheKey(userID, day)] = cachedSummary{summary: s, expires: c.now().Add(c.ttl)}
	return nil
}

func (c *MemoryStatsCache) Invalidate(_ context.Context, userID, day string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, StatsCacheKey(userID, day))
	return nil
}
