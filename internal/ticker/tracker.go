// Package ticker polls the market aggregator on an interval, keeps a short
// probability history per market, and pushes price deltas to WebSocket
// subscribers. The history backs the 1-hour momentum signal used by
// opportunity scoring.
package ticker

import (
	"context"
	"sync"
	"time"

	"prediction-radar/internal/markets"

	"github.com/rs/zerolog"
)

// maxHistory bounds the per-market snapshot ring. At the default 30s poll
// interval this holds about two hours of history.
const maxHistory = 240

type marketSource interface {
	FetchAll(ctx context.Context, limit int) []markets.UnifiedMarket
}

type snapshot struct {
	probability float64
	at          time.Time
}

// PriceUpdate is the delta message broadcast to subscribers
type PriceUpdate struct {
	Type        string    `json:"type"`
	MarketID    string    `json:"marketId"`
	Venue       string    `json:"venue"`
	Question    string    `json:"question"`
	Probability float64   `json:"probability"`
	Change      float64   `json:"change"`
	Timestamp   time.Time `json:"timestamp"`
}

// Tracker maintains probability history for all markets seen during polling
type Tracker struct {
	source       marketSource
	hub          *Hub
	pollInterval time.Duration
	poolSize     int
	logger       zerolog.Logger
	now          func() time.Time

	mu        sync.RWMutex
	snapshots map[string][]snapshot

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewTracker(source marketSource, hub *Hub, pollInterval time.Duration, poolSize int, logger zerolog.Logger) *Tracker {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	if poolSize <= 0 {
		poolSize = 200
	}
	return &Tracker{
		source:       source,
		hub:          hub,
		pollInterval: pollInterval,
		poolSize:     poolSize,
		logger:       logger.With().Str("component", "ticker").Logger(),
		now:          time.Now,
		snapshots:    make(map[string][]snapshot),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start begins polling in a background goroutine until Stop is called or
// ctx is cancelled
func (t *Tracker) Start(ctx context.Context) {
	go func() {
		defer close(t.done)

		t.poll(ctx)

		ticker := time.NewTicker(t.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.stop:
				return
			case <-ticker.C:
				t.poll(ctx)
			}
		}
	}()
	t.logger.Info().Dur("interval", t.pollInterval).Msg("price tracker started")
}

// Stop halts polling and waits for the poll loop to exit
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
	<-t.done
	t.logger.Info().Msg("price tracker stopped")
}

func (t *Tracker) poll(ctx context.Context) {
	pollCtx, cancel := context.WithTimeout(ctx, t.pollInterval)
	defer cancel()

	batch := t.source.FetchAll(pollCtx, t.poolSize)
	if len(batch) == 0 {
		t.logger.Warn().Msg("poll returned no markets")
		return
	}

	for _, m := range batch {
		t.Record(m)
	}
	t.logger.Debug().Int("markets", len(batch)).Msg("poll complete")
}

// Record appends a probability snapshot for one market and broadcasts the
// delta when the price moved
func (t *Tracker) Record(m markets.UnifiedMarket) {
	now := t.now()

	t.mu.Lock()
	history := t.snapshots[m.ID]
	var prev float64
	hadPrev := len(history) > 0
	if hadPrev {
		prev = history[len(history)-1].probability
	}
	history = append(history, snapshot{probability: m.Probability, at: now})
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	t.snapshots[m.ID] = history
	t.mu.Unlock()

	if t.hub != nil && hadPrev && m.Probability != prev {
		t.hub.Broadcast(PriceUpdate{
			Type:        "PRICE_UPDATE",
			MarketID:    m.ID,
			Venue:       string(m.Venue),
			Question:    m.Question,
			Probability: m.Probability,
			Change:      m.Probability - prev,
			Timestamp:   now,
		})
	}
}

// Momentum1h returns the probability change between the latest snapshot and
// the most recent snapshot at least one hour old. Markets without an hour of
// history report zero momentum.
func (t *Tracker) Momentum1h(marketID string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	history := t.snapshots[marketID]
	if len(history) < 2 {
		return 0
	}

	latest := history[len(history)-1]
	cutoff := t.now().Add(-time.Hour)

	// Walk backwards to the newest snapshot that is already an hour old
	for i := len(history) - 2; i >= 0; i-- {
		if !history[i].at.After(cutoff) {
			return latest.probability - history[i].probability
		}
	}
	return 0
}

// TrackedMarkets returns the number of markets with recorded history
func (t *Tracker) TrackedMarkets() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.snapshots)
}
