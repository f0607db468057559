package valkey

import (
	"context"
	"errors"
	"time"

	"github.com/bsvalues/TerraFusionMono-sub005/internal/pkg/metrics"
)

const limiterPrefix = "ratelimit:"

// LimiterStorage adapts Cache to fiber.Storage so that rate limit counters
// are shared by every API replica.
type LimiterStorage struct {
	cache   *Cache
	timeout time.Duration
}

// NewLimiterStorage creates a storage backed by cache.
func NewLimiterStorage(cache *Cache) *LimiterStorage {
	return &LimiterStorage{cache: cache, timeout: 500 * time.Millisecond}
}

// Get returns nil, nil for missing keys as fiber.Storage requires.
func (s *LimiterStorage) Get(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	b, err := s.cache.Get(ctx, limiterPrefix+key)
	if errors.Is(err, ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		metrics.RateLimitStorageErrors.WithLabelValues("get").Inc()
		return nil, err
	}
	return b, nil
}

func (s *LimiterStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.cache.setTTL(ctx, limiterPrefix+key, val, exp); err != nil {
		metrics.RateLimitStorageErrors.WithLabelValues("set").Inc()
		return err
	}
	return nil
}

func (s *LimiterStorage) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.cache.Delete(ctx, limiterPrefix+key); err != nil {
		metrics.RateLimitStorageErrors.WithLabelValues("delete").Inc()
		return err
	}
	return nil
}

// Reset clears every rate limit counter.
func (s *LimiterStorage) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.cache.DeletePrefix(ctx, limiterPrefix)
}

// Close is a no-op: the client belongs to the Cache.
func (s *LimiterStorage) Close() error { return nil }
