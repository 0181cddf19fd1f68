package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hospitalhub/internal/recommender"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "hospitalhub:recommendations:"

// RedisCache shares responses between API replicas. Expiry is delegated
// to Redis key TTLs.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to url and verifies the connection
func NewRedisCache(url string, ttl time.Duration) (*RedisCache, error) {
	if url == "" {
		return nil, errors.New("redis cache requires a redis url")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

func redisKey(key string) string {
	return redisKeyPrefix + key
}

// Get returns the cached response for key
func (c *RedisCache) Get(ctx context.Context, key string) (recommender.Response, bool, error) {
	payload, err := c.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return recommender.Response{}, false, nil
	}
	if err != nil {
		return recommender.Response{}, false, fmt.Errorf("redis get failed: %w", err)
	}

	var resp recommender.Response
	if err := json.Unmarshal(payload, &resp); err != nil {
		return recommender.Response{}, false, fmt.Errorf("decode recommendation cache: %w", err)
	}
	return resp, true, nil
}

// Set stores resp under key
func (c *RedisCache) Set(ctx context.Context, key string, resp recommender.Response) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode recommendation cache: %w", err)
	}
	if err := c.client.Set(ctx, redisKey(key), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Close releases the connection pool
func (c *RedisCache) Close() error {
	return c.client.Close()
}
