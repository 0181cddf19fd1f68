package cache

import (
	"context"
	"time"

	"hospitalhub/internal/recommender"
)

// DefaultTTL is how long a generated response stays valid
const DefaultTTL = time.Hour

// Backend names accepted by New
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// RecommendationCache stores responses keyed by request fingerprint.
// Implementations must be safe for concurrent use.
type RecommendationCache interface {
	Get(ctx context.Context, key string) (recommender.Response, bool, error)
	Set(ctx context.Context, key string, resp recommender.Response) error
}

// Config selects a backend
type Config struct {
	Backend  string
	TTL      time.Duration
	RedisURL string
}

// New builds the configured cache. Unknown backends are an error.
func New(cfg Config) (RecommendationCache, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryCache(ttl), nil
	case BackendRedis:
		return NewRedisCache(cfg.RedisURL, ttl)
	case BackendNone:
		return NoopCache{}, nil
	default:
		return nil, &UnknownBackendError{Backend: cfg.Backend}
	}
}

// UnknownBackendError reports an unsupported cache backend name
type UnknownBackendError struct {
	Backend string
}

func (e *UnknownBackendError) Error() string {
	return "unknown cache backend: " + e.Backend
}

// NoopCache never stores anything
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (recommender.Response, bool, error) {
	return recommender.Response{}, false, nil
}

func (NoopCache) Set(context.Context, string, recommender.Response) error {
	return nil
}
