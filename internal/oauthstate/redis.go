package oauthstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "oauthstate:"

// Redis is the external-cache Store backend. Expiry is delegated to the key
// TTL and single-use consumption to GETDEL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, ttl: TTL}
}

func (r *Redis) Put(ctx context.Context, token string) error {
	key := redisPrefix + token
	if err := r.client.Set(ctx, key, time.Now().UTC().Format(time.RFC3339), r.ttl).Err(); err != nil {
		return fmt.Errorf("storing oauth state: %w", err)
	}
	return nil
}

func (r *Redis) TakeIfValid(ctx context.Context, token string) (bool, error) {
	key := redisPrefix + token
	err := r.client.GetDel(ctx, key).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("consuming oauth state: %w", err)
	}
	return true, nil
}
