package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PageCache stores rendered page data for a short time. Values are JSON
// encoded so both backends hold the same bytes.
type PageCache interface {
	// Get decodes the cached value into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type cacheItem struct {
	Data      []byte
	ExpiresAt time.Time
}

// LRUCache keeps entries in process memory.
type LRUCache struct {
	lruCache *lru.Cache[string, cacheItem]
	now      func() time.Time
}

func NewLRUCache(size int) (*LRUCache, error) {
	l, err := lru.New[string, cacheItem](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &LRUCache{lruCache: l, now: time.Now}, nil
}

func (c *LRUCache) Get(_ context.Context, key string, dest any) (bool, error) {
	item, ok := c.lruCache.Get(key)
	if !ok {
		return false, nil
	}
	if c.now().After(item.ExpiresAt) {
		c.lruCache.Remove(key)
		return false, nil
	}
	if err := json.Unmarshal(item.Data, dest); err != nil {
		return false, fmt.Errorf("decode cached %q: %w", key, err)
	}
	return true, nil
}

func (c *LRUCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	c.lruCache.Add(key, cacheItem{Data: data, ExpiresAt: c.now().Add(ttl)})
	return nil
}

func (c *LRUCache) Delete(_ context.Context, key string) error {
	c.lruCache.Remove(key)
	return nil
}

// RedisCache keeps entries in Redis under a common prefix.
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %q: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode cached %q: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

// NewRedisClient accepts either a redis:// URL or a bare host:port.
func NewRedisClient(addr string) (*redis.Client, error) {
	if strings.Contains(addr, "://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{Addr: addr}), nil
}

// NewPageCache returns a Redis backed cache when redisURL is set and
// reachable, and an in-process LRU otherwise.
func NewPageCache(ctx context.Context, redisURL string, size int) (PageCache, error) {
	if redisURL == "" {
		return NewLRUCache(size)
	}

	client, err := NewRedisClient(redisURL)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		zap.L().Warn("redis unavailable, using in-process page cache", zap.Error(err))
		_ = client.Close()
		return NewLRUCache(size)
	}

	zap.L().Info("redis page cache connected")
	return NewRedisCache(client, "yatube:page:"), nil
}
