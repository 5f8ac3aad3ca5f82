package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/rgehrsitz/flipcalc/internal/config"
)

// Cache stores raw backend responses by request key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// MemoryCache is a process-local cache.
type MemoryCache struct {
	c *cache.Cache
}

// NewMemoryCache creates a cache whose entries expire after ttl unless Set
// is given another TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{c: cache.New(ttl, 2*ttl)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}
	m.c.Set(key, value, ttl)
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.c.Delete(k)
	}
	return nil
}

// RedisCache shares cached responses between processes.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache wraps a redis client. Keys are namespaced with "flipcalc:".
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, prefix: "flipcalc:"}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.prefix + k
	}
	return r.client.Del(ctx, full...).Err()
}

// Close releases the redis connection pool.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (NopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NopCache) Delete(context.Context, ...string) error { return nil }

// NewCache builds the cache selected by settings. A redis cache is pinged
// before it is returned.
func NewCache(ctx context.Context, s config.CacheSettings) (Cache, error) {
	switch strings.ToLower(s.Type) {
	case "", "memory":
		return NewMemoryCache(s.TTL), nil
	case "none":
		return NopCache{}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     s.RedisAddr,
			Password: s.RedisPassword,
			DB:       s.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis %s: %w", s.RedisAddr, err)
		}
		return NewRedisCache(client), nil
	default:
		return nil, errors.New("unknown cache type: " + s.Type)
	}
}
