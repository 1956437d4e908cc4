package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CacheConfig configures the Redis-backed query cache.
type CacheConfig struct {
	Addr     string        `json:"addr" yaml:"addr"`
	Password string        `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int           `json:"db" yaml:"db"`
	TTL      time.Duration `json:"ttl" yaml:"ttl"`
}

// DefaultCacheConfig returns the default cache config.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Addr: "localhost:6379",
		TTL:  10 * time.Minute,
	}
}

// CachedStore decorates a Store with a Redis query cache. Concurrent
// identical queries are collapsed into one upstream call via singleflight.
// Cache failures degrade to the underlying store; they never fail a query.
type CachedStore struct {
	inner  Store
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
	group  singleflight.Group
}

// NewCachedStore wraps a Store with a Redis query cache using a dedicated
// client.
func NewCachedStore(inner Store, cfg CacheConfig, logger *zap.Logger) *CachedStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewCachedStoreWithClient(inner, client, cfg.TTL, logger)
}

// NewCachedStoreWithClient wraps a Store with a Redis query cache on an
// existing client, so several stores can share one connection pool.
func NewCachedStoreWithClient(inner Store, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl == 0 {
		ttl = 10 * time.Minute
	}
	return &CachedStore{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger.With(zap.String("component", "memory_cache")),
	}
}

func (s *CachedStore) Name() string { return s.inner.Name() + "+cache" }

// Close releases the Redis connection.
func (s *CachedStore) Close() error { return s.client.Close() }

// cacheKey namespaces by the inner store name so per-subject stores
// sharing one Redis instance never collide.
func cacheKey(store, query string, k int) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("memctx:%s:%d:%s", store, k, hex.EncodeToString(sum[:]))
}

// Add invalidates nothing; newly indexed material becomes visible as cached
// entries expire.
func (s *CachedStore) Add(ctx context.Context, docs []Document) error {
	return s.inner.Add(ctx, docs)
}

// Query serves from cache when possible, otherwise queries the inner store
// and caches the result.
func (s *CachedStore) Query(ctx context.Context, query string, k int) ([]string, error) {
	key := cacheKey(s.inner.Name(), query, k)

	cached, err := s.client.Get(ctx, key).Result()
	if err == nil {
		var entries []string
		if jsonErr := json.Unmarshal([]byte(cached), &entries); jsonErr == nil {
			return entries, nil
		}
		s.logger.Warn("corrupt cache entry, falling through", zap.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn("cache read failed, falling through", zap.Error(err))
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		entries, err := s.inner.Query(ctx, query, k)
		if err != nil {
			return nil, err
		}
		if payload, jsonErr := json.Marshal(entries); jsonErr == nil {
			if setErr := s.client.Set(ctx, key, payload, s.ttl).Err(); setErr != nil {
				s.logger.Warn("cache write failed", zap.Error(setErr))
			}
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}
