package cache

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces every key this application writes so that
// invalidation scans never touch other tenants of a shared Redis database.
const redisKeyPrefix = "votacion:"

// Redis backs the Cache interface with a Redis instance so multiple
// server processes can share entries.
type Redis struct {
	rdb *redis.Client
}

// NewRedis connects to redisURL and verifies the connection. Callers fall
// back to the memory cache when this fails.
func NewRedis(redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Redis{rdb: rdb}, nil
}

// Client returns the underlying Redis client for health checks.
func (r *Redis) Client() *redis.Client {
	return r.rdb
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.rdb.Set(ctx, redisKeyPrefix+key, value, ttl).Err()
}

// Invalidate deletes every key matching the glob via SCAN so the keyspace
// is never blocked by a KEYS call. Scans stay confined to this
// application's prefix.
func (r *Redis) Invalidate(ctx context.Context, pattern string) error {
	iter := r.rdb.Scan(ctx, 0, redisMatch(pattern), 0).Iterator()
	for iter.Next(ctx) {
		if err := r.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (r *Redis) Clear(ctx context.Context) error {
	return r.Invalidate(ctx, "")
}

// redisMatch turns an unanchored glob (the memory backend's semantics)
// into a SCAN MATCH expression anchored at the application prefix.
func redisMatch(pattern string) string {
	pattern = strings.TrimSuffix(pattern, "*")
	if pattern == "" {
		return redisKeyPrefix + "*"
	}
	return redisKeyPrefix + "*" + pattern + "*"
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
