package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ConnectRedis connects to Redis and pings it.
func ConnectRedis(ctx context.Context, redisURI string, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURI)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}

	// Configure connection pool and timeouts for better resilience
	opt.PoolSize = 10                     // Connection pool size
	opt.MinIdleConns = 5                  // Minimum idle connections
	opt.MaxRetries = 3                    // Retry failed commands up to 3 times
	opt.DialTimeout = 5 * time.Second     // Timeout for establishing connection
	opt.ReadTimeout = 3 * time.Second     // Timeout for read operations
	opt.WriteTimeout = 3 * time.Second    // Timeout for write operations
	opt.PoolTimeout = 4 * time.Second     // Timeout for getting connection from pool
	opt.ConnMaxIdleTime = 5 * time.Minute // Close idle connections after 5 minutes

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Info().Msg("connected to Redis")
	return client, nil
}
