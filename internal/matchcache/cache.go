// Package matchcache is a content-addressed, short-TTL cache for matcher
// output. Entries are keyed by a normalized hash of event identity, so
// keyword order and title casing never cause duplicate entries.
package matchcache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"prediction-radar/internal/matcher"

	"github.com/rs/zerolog"
)

// Entry is a cached match result as stored in the backend
type Entry struct {
	EventHash      string                   `json:"eventHash"`
	EventTitle     string                   `json:"eventTitle"` // Debug label only
	MatchedMarkets []matcher.MatchCandidate `json:"matchedMarkets"`
	CreatedAt      time.Time                `json:"createdAt"`
	ExpiresAt      time.Time                `json:"expiresAt"`
}

// Cache wraps a Store with event hashing and expiry handling. All store
// failures degrade to "no cache": Get reports a miss and Set is a no-op.
type Cache struct {
	store  Store
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

// NewCache creates a match cache over the given store
func NewCache(store Store, ttl time.Duration, logger zerolog.Logger) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{
		store:  store,
		ttl:    ttl,
		logger: logger.With().Str("component", "matchcache").Logger(),
		now:    time.Now,
	}
}

// Get returns the cached candidates for an event, or (nil, false) on miss.
// An expired entry counts as a miss and is proactively deleted.
func (c *Cache) Get(ctx context.Context, title string, keywords []string) ([]matcher.MatchCandidate, bool) {
	hash := EventHash(title, keywords)

	raw, err := c.store.Get(ctx, hash)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.logger.Warn().Err(err).Msg("cache read failed, treating as miss")
		}
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		c.logger.Warn().Err(err).Str("hash", hash).Msg("corrupt cache entry, dropping")
		_ = c.store.Delete(ctx, hash)
		return nil, false
	}

	if c.now().After(entry.ExpiresAt) {
		c.logger.Debug().Str("event", title).Msg("cache expired")
		if err := c.store.Delete(ctx, hash); err != nil {
			c.logger.Warn().Err(err).Msg("failed to remove expired cache entry")
		}
		return nil, false
	}

	c.logger.Debug().Str("event", title).Msg("cache hit")
	return entry.MatchedMarkets, true
}

// Set upserts the match result for an event. Last writer wins; concurrent
// writers for the same key simply replace the whole value.
func (c *Cache) Set(ctx context.Context, title string, keywords []string, candidates []matcher.MatchCandidate) {
	hash := EventHash(title, keywords)
	now := c.now()

	entry := Entry{
		EventHash:      hash,
		EventTitle:     title,
		MatchedMarkets: candidates,
		CreatedAt:      now,
		ExpiresAt:      now.Add(c.ttl),
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to serialize cache entry")
		return
	}

	// Store TTL runs slightly past the logical expiry so reads observe the
	// expired-entry-is-a-miss path rather than a silent disappearance.
	if err := c.store.Set(ctx, hash, string(raw), c.ttl+time.Minute); err != nil {
		c.logger.Warn().Err(err).Msg("cache write failed, continuing without cache")
		return
	}

	c.logger.Debug().Str("event", title).Time("expiresAt", entry.ExpiresAt).Msg("cache stored")
}

// TTL returns the configured entry lifetime
func (c *Cache) TTL() time.Duration {
	return c.ttl
}
