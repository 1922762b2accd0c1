package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/AnshRaj112/moodlog-backend/pkg/clientip"
)

const (
	// RateLimitWindow is 120 seconds
	RateLimitWindow = 120 * time.Second
	// RateLimitMaxRequests is the maximum number of requests allowed in the window
	RateLimitMaxRequests = 120
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:"
	// BlockedIPKeyPrefix is the Redis key prefix for blocked IPs
	BlockedIPKeyPrefix = "blocked_ip:"
	// BlockedIPDuration is how long an IP stays blocked
	BlockedIPDuration = 15 * time.Minute
)

// RedisRateLimiter is a fixed-window per-IP limit shared by all instances. An IP that
// exceeds the window is blocked for BlockedIPDuration. Redis failures fail open.
type RedisRateLimiter struct {
	client *redis.Client
	log    zerolog.Logger
	window time.Duration
	max    int
}

func NewRedisRateLimiter(client *redis.Client, log zerolog.Logger) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		log:    log.With().Str("component", "ratelimit").Logger(),
		window: RateLimitWindow,
		max:    RateLimitMaxRequests,
	}
}

// hit counts one request for ip and returns the count within the current window.
func (l *RedisRateLimiter) hit(ctx context.Context, ip string) (int64, error) {
	key := RateLimitKeyPrefix + ip
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		// First request in this window
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return 0, err
		}
	}
	return count, nil
}

func (l *RedisRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientip.RealClientIP(r)
		ctx := r.Context()

		blocked, err := l.client.Exists(ctx, BlockedIPKeyPrefix+ip).Result()
		if err == nil && blocked > 0 {
			writeError(w, http.StatusTooManyRequests, "Your IP has been temporarily blocked due to excessive requests. Please try again later.")
			return
		}

		count, err := l.hit(ctx, ip)
		if err != nil {
			l.log.Warn().Err(err).Msg("rate limit check failed, allowing request")
			next.ServeHTTP(w, r)
			return
		}

		if count > int64(l.max) {
			if err := l.client.Set(ctx, BlockedIPKeyPrefix+ip, "1", BlockedIPDuration).Err(); err == nil {
				l.log.Warn().Str("ip", ip).Msg("blocked IP after exceeding rate limit")
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(BlockedIPDuration.Seconds())))
			writeError(w, http.StatusTooManyRequests, fmt.Sprintf("Rate limit exceeded. Try again in %d minutes.", int(BlockedIPDuration.Minutes())))
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.max))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(int64(l.max)-count, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(l.window).Unix(), 10))
		next.ServeHTTP(w, r)
	})
}

// Unblock removes an IP from the blocked list.
func (l *RedisRateLimiter) Unblock(ctx context.Context, ip string) error {
	return l.client.Del(ctx, BlockedIPKeyPrefix+ip).Err()
}
