// Package warming pre-populates the match cache for fast-moving news so the
// first user request for a hot event does not pay the full match latency.
package warming

import (
	"context"
	"time"

	"prediction-radar/internal/markets"
	"prediction-radar/internal/matcher"
	"prediction-radar/internal/news"

	"github.com/rs/zerolog"
)

type marketSource interface {
	FetchAll(ctx context.Context, limit int) []markets.UnifiedMarket
}

type eventMatcher interface {
	Match(ctx context.Context, eventTitle string, eventKeywords []string, pool []markets.UnifiedMarket, limit int) []matcher.MatchCandidate
}

type matchCache interface {
	Get(ctx context.Context, title string, keywords []string) ([]matcher.MatchCandidate, bool)
	Set(ctx context.Context, title string, keywords []string, candidates []matcher.MatchCandidate)
}

// Result tallies one warming batch
type Result struct {
	Warmed  int `json:"warmed"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Warmer runs match pre-computation for high-velocity events
type Warmer struct {
	source     marketSource
	matcher    eventMatcher
	cache      matchCache
	poolSize   int
	matchLimit int
	eventDelay time.Duration
	logger     zerolog.Logger
}

// Config tunes a Warmer. Zero values fall back to the defaults used by
// the scheduled job: a 150-market pool, 3 matches per event, 500ms pause
// between events.
type Config struct {
	PoolSize   int
	MatchLimit int
	EventDelay time.Duration
}

func NewWarmer(source marketSource, m eventMatcher, cache matchCache, cfg Config, logger zerolog.Logger) *Warmer {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 150
	}
	if cfg.MatchLimit <= 0 {
		cfg.MatchLimit = 3
	}
	if cfg.EventDelay <= 0 {
		cfg.EventDelay = 500 * time.Millisecond
	}
	return &Warmer{
		source:     source,
		matcher:    m,
		cache:      cache,
		poolSize:   cfg.PoolSize,
		matchLimit: cfg.MatchLimit,
		eventDelay: cfg.EventDelay,
		logger:     logger.With().Str("component", "warming").Logger(),
	}
}

// WarmEvent pre-computes matches for a single event. It reports skipped=true
// when the event was already cached.
func (w *Warmer) WarmEvent(ctx context.Context, title string, keywords []string) (warmed, skipped bool) {
	if _, ok := w.cache.Get(ctx, title, keywords); ok {
		w.logger.Debug().Str("event", title).Msg("already cached, skipping")
		return false, true
	}

	w.logger.Info().Str("event", title).Msg("warming cache")
	start := time.Now()

	pool := w.source.FetchAll(ctx, w.poolSize)
	if len(pool) == 0 {
		w.logger.Warn().Str("event", title).Msg("no markets available, warming failed")
		return false, false
	}

	candidates := w.matcher.Match(ctx, title, keywords, pool, w.matchLimit)
	w.cache.Set(ctx, title, keywords, candidates)

	w.logger.Info().
		Str("event", title).
		Int("matches", len(candidates)).
		Dur("elapsed", time.Since(start)).
		Msg("cache warmed")
	return true, false
}

// WarmHighVelocity warms every event at or above the velocity threshold.
// Events are processed strictly in order with a pause between them so the
// relevance scorer is never hit with a burst. One event failing only
// increments Failed; the batch continues.
func (w *Warmer) WarmHighVelocity(ctx context.Context, events []news.NewsEvent, threshold int) Result {
	var hot []news.NewsEvent
	for _, ev := range events {
		if ev.Velocity >= threshold {
			hot = append(hot, ev)
		}
	}

	if len(hot) == 0 {
		w.logger.Info().Int("threshold", threshold).Msg("no high-velocity events to warm")
		return Result{}
	}

	w.logger.Info().
		Int("events", len(hot)).
		Int("threshold", threshold).
		Msg("starting batch warming")

	var res Result
	for i, ev := range hot {
		warmed, skipped := w.WarmEvent(ctx, ev.Title, ev.Keywords)
		switch {
		case warmed:
			res.Warmed++
		case skipped:
			res.Skipped++
		default:
			res.Failed++
		}

		if i < len(hot)-1 {
			select {
			case <-ctx.Done():
				w.logger.Warn().Err(ctx.Err()).Msg("batch warming interrupted")
				return res
			case <-time.After(w.eventDelay):
			}
		}
	}

	w.logger.Info().
		Int("warmed", res.Warmed).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Msg("batch warming complete")
	return res
}
