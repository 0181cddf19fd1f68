package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"hospitalhub/internal/recommender"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResponse(impact string) recommender.Response {
	id := "m1"
	return recommender.Response{
		Recommendations: []recommender.Recommendation{{
			ID:         "fallback-restock-1",
			Type:       recommender.TypeRestock,
			Medicine:   recommender.MedicineRef{Name: "Aspirin", ID: &id},
			Action:     "Reorder Aspirin",
			Reasoning:  "Rule-based: Stock is below threshold.",
			Confidence: 0.6,
			Urgency:    recommender.UrgencyHigh,
		}},
		Summary: recommender.Summary{TotalRecommendations: 1, HighPriority: 1, EstimatedImpact: impact},
	}
}

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Hour)

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	want := sampleResponse("one item")
	require.NoError(t, c.Set(ctx, "k", want))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestMemoryCache_LazyExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	c := NewMemoryCache(time.Minute)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", sampleResponse("x")))

	now = now.Add(59 * time.Second)
	_, ok, _ := c.Get(ctx, "k")
	assert.True(t, ok)

	// expired entries linger until read
	now = now.Add(time.Second)
	assert.Equal(t, 1, c.Len())
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_SetRefreshesExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	c := NewMemoryCache(time.Minute)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", sampleResponse("old")))
	now = now.Add(50 * time.Second)
	require.NoError(t, c.Set(ctx, "k", sampleResponse("new")))
	now = now.Add(50 * time.Second)

	got, ok, _ := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "new", got.Summary.EstimatedImpact)
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%4)
			for j := 0; j < 100; j++ {
				_ = c.Set(ctx, key, sampleResponse(key))
				got, ok, err := c.Get(ctx, key)
				assert.NoError(t, err)
				if ok {
					assert.Equal(t, key, got.Summary.EstimatedImpact)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 4, c.Len())
}

func TestNew(t *testing.T) {
	c, err := New(Config{})
	require.NoError(t, err)
	mem, ok := c.(*MemoryCache)
	require.True(t, ok)
	assert.Equal(t, DefaultTTL, mem.ttl)

	c, err = New(Config{Backend: BackendMemory, TTL: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, time.Minute, c.(*MemoryCache).ttl)

	c, err = New(Config{Backend: BackendNone})
	require.NoError(t, err)
	assert.IsType(t, NoopCache{}, c)

	_, err = New(Config{Backend: "memcached"})
	var unknown *UnknownBackendError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "memcached", unknown.Backend)
}

func TestNew_RedisRequiresValidURL(t *testing.T) {
	_, err := New(Config{Backend: BackendRedis})
	assert.Error(t, err)

	_, err = New(Config{Backend: BackendRedis, RedisURL: "http://not-redis"})
	assert.ErrorContains(t, err, "invalid redis url")
}

func TestNoopCache(t *testing.T) {
	ctx := context.Background()
	var c RecommendationCache = NoopCache{}

	require.NoError(t, c.Set(ctx, "k", sampleResponse("x")))
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "hospitalhub:recommendations:ai:abc", redisKey("ai:abc"))
}
