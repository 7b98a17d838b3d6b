package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects the client that backs the schedule locks and the
// readiness probe. Timeouts are kept short: if Redis stalls, a booking
// request should fail fast and retry rather than hold its HTTP connection.
func NewRedisClient(addr, username, password string) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:         addr,
		Username:     username,
		Password:     password,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		// Lock acquire/release are single round trips, so a modest pool
		// covers the booking endpoints.
		PoolSize:     16,
		MinIdleConns: 2,
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}

	return rdb, nil
}
