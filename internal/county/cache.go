package county

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores fetched boundary documents. County boundaries are static, so
// entries never need invalidation beyond a TTL.
type Cache interface {
	Get(ctx context.Context, name string) ([]byte, bool)
	Set(ctx context.Context, name string, data []byte)
}

// NewCache creates a cache backend by type name: "memory", "redis" or "none".
func NewCache(kind string, redisOpts *redis.Options, ttl time.Duration) (Cache, error) {
	switch kind {
	case "memory":
		return NewMemoryCache(), nil
	case "redis":
		return NewRedisCache(redis.NewClient(redisOpts), ttl), nil
	case "none", "":
		return nopCache{}, nil
	default:
		return nil, fmt.Errorf("unknown county cache type: %s", kind)
	}
}

// MemoryCache is a process-local boundary cache.
type MemoryCache struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{docs: make(map[string][]byte)}
}

// Get retrieves a cached document by county name.
func (c *MemoryCache) Get(_ context.Context, name string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.docs[name]
	return data, ok
}

// Set stores a document by county name.
func (c *MemoryCache) Set(_ context.Context, name string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[name] = data
}

// Reset clears the cache.
func (c *MemoryCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = make(map[string][]byte)
}

// RedisCache shares boundary documents across processes. Cache failures are
// treated as misses; the loader falls back to fetching.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps a redis client with the given entry TTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func redisKey(name string) string {
	return "county:boundary:" + name
}

// Get retrieves a cached document by county name.
func (c *RedisCache) Get(ctx context.Context, name string) ([]byte, bool) {
	data, err := c.client.Get(ctx, redisKey(name)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores a document by county name.
func (c *RedisCache) Set(ctx context.Context, name string, data []byte) {
	c.client.Set(ctx, redisKey(name), data, c.ttl)
}

// nopCache disables caching.
type nopCache struct{}

func (nopCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (nopCache) Set(context.Context, string, []byte)        {}
