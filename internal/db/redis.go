package db

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient creates a Redis client for the given address and pings
// it to make sure the connection is established.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}
