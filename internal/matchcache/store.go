package matchcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"prediction-radar/config"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by stores when a key is absent
var ErrMiss = errors.New("cache miss")

// Store is the key-value backend behind the match cache. Implementations
// must be safe for concurrent use; values are opaque and replaced atomically
// on Set.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisStore backs the match cache with Redis. Operations degrade gracefully:
// after repeated failures the circuit opens and every call reports ErrMiss
// or a non-fatal error until a background ping succeeds.
type RedisStore struct {
	client *redis.Client

	mu           sync.RWMutex
	healthy      bool
	failureCount int
	lastCheck    time.Time

	maxFailures   int
	checkInterval time.Duration
}

// NewRedisStore connects to Redis. A failed initial ping returns the store
// in degraded mode rather than an error.
func NewRedisStore(cfg config.RedisConfig) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	rs := &RedisStore{
		client:        client,
		maxFailures:   3,
		checkInterval: 30 * time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err == nil {
		rs.healthy = true
		rs.lastCheck = time.Now()
	}

	return rs
}

// IsHealthy returns whether Redis is currently reachable
func (rs *RedisStore) IsHealthy() bool {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.healthy
}

func (rs *RedisStore) recordFailure() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.failureCount++
	if rs.failureCount >= rs.maxFailures {
		rs.healthy = false
	}
}

func (rs *RedisStore) recordSuccess() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.healthy = true
	rs.failureCount = 0
	rs.lastCheck = time.Now()
}

// checkHealth schedules a background ping when the circuit has been open
// long enough to retry.
func (rs *RedisStore) checkHealth() {
	rs.mu.RLock()
	shouldCheck := !rs.healthy && time.Since(rs.lastCheck) >= rs.checkInterval
	rs.mu.RUnlock()

	if !shouldCheck {
		return
	}

	rs.mu.Lock()
	rs.lastCheck = time.Now()
	rs.mu.Unlock()

	go func() {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := rs.client.Ping(pingCtx).Err(); err == nil {
			rs.recordSuccess()
		}
	}()
}

func (rs *RedisStore) Get(ctx context.Context, key string) (string, error) {
	rs.checkHealth()

	if !rs.IsHealthy() {
		return "", ErrMiss
	}

	result, err := rs.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrMiss
		}
		rs.recordFailure()
		return "", fmt.Errorf("redis get failed: %w", err)
	}

	rs.recordSuccess()
	return result, nil
}

func (rs *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	rs.checkHealth()

	if !rs.IsHealthy() {
		return fmt.Errorf("redis unavailable (circuit breaker open)")
	}

	if err := rs.client.Set(ctx, key, value, ttl).Err(); err != nil {
		rs.recordFailure()
		return fmt.Errorf("redis set failed: %w", err)
	}

	rs.recordSuccess()
	return nil
}

func (rs *RedisStore) Delete(ctx context.Context, key string) error {
	rs.checkHealth()

	if !rs.IsHealthy() {
		return fmt.Errorf("redis unavailable (circuit breaker open)")
	}

	if err := rs.client.Del(ctx, key).Err(); err != nil {
		rs.recordFailure()
		return fmt.Errorf("redis delete failed: %w", err)
	}

	rs.recordSuccess()
	return nil
}

// Close closes the Redis connection
func (rs *RedisStore) Close() error {
	if rs.client != nil {
		return rs.client.Close()
	}
	return nil
}

// MemoryStore is an in-process Store used when Redis is disabled and in
// tests. Entry expiry is left to the cache layer; the store only honors TTL
// as best-effort housekeeping on read.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (ms *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	ms.mu.RLock()
	entry, ok := ms.entries[key]
	ms.mu.RUnlock()

	if !ok {
		return "", ErrMiss
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		ms.mu.Lock()
		delete(ms.entries, key)
		ms.mu.Unlock()
		return "", ErrMiss
	}
	return entry.value, nil
}

func (ms *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	ms.mu.Lock()
	ms.entries[key] = memoryEntry{value: value, expiresAt: expiresAt}
	ms.mu.Unlock()
	return nil
}

func (ms *MemoryStore) Delete(ctx context.Context, key string) error {
	ms.mu.Lock()
	delete(ms.entries, key)
	ms.mu.Unlock()
	return nil
}
