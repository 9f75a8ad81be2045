// Package service is the transport-independent facade over news detection,
// market aggregation, matching, caching and opportunity scoring. HTTP
// handlers and CLI commands call these operations and nothing below them.
package service

import (
	"context"
	"time"

	"prediction-radar/internal/markets"
	"prediction-radar/internal/matcher"
	"prediction-radar/internal/news"
	"prediction-radar/internal/opportunity"
	"prediction-radar/internal/warming"

	"github.com/rs/zerolog"
)

const (
	// Market pool sizes per operation
	matchPoolSize = 150
	hourPoolSize  = 200

	// Opportunities bounds the event count because stage-2 scoring is costly
	maxOpportunityEvents = 5

	warmEventCount = 20
)

type newsSource interface {
	FetchTrending(ctx context.Context, limit int) []news.NewsEvent
}

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

type cacheWarmer interface {
	WarmHighVelocity(ctx context.Context, events []news.NewsEvent, threshold int) warming.Result
}

// momentumSource reports the 1-hour probability delta for a market, zero
// when no history exists
type momentumSource interface {
	Momentum1h(marketID string) float64
}

// ScoredMatch is a match candidate enriched with its opportunity score
type ScoredMatch struct {
	matcher.MatchCandidate
	Opportunity  opportunity.Score `json:"opportunity"`
	Momentum1h   float64           `json:"momentum1h"`
	VelocityChip string            `json:"velocityChip"`
}

// EventOpportunities pairs one trending event with its scored markets
type EventOpportunities struct {
	Event   news.NewsEvent `json:"event"`
	Markets []ScoredMatch  `json:"markets"`
}

// HourPick is the single best (event, market) pairing right now
type HourPick struct {
	Event     news.NewsEvent        `json:"event"`
	Market    markets.UnifiedMarket `json:"market"`
	Relevance int                   `json:"relevance"`
}

// Service exposes the named core operations
type Service struct {
	news         newsSource
	source       marketSource
	matcher      eventMatcher
	cache        matchCache
	warmer       cacheWarmer
	momentum     momentumSource
	matchTimeout time.Duration
	logger       zerolog.Logger
}

// Options carries the collaborators for a Service. Momentum may be nil,
// in which case every momentum score is zero.
type Options struct {
	News         newsSource
	Markets      marketSource
	Matcher      eventMatcher
	Cache        matchCache
	Warmer       cacheWarmer
	Momentum     momentumSource
	MatchTimeout time.Duration
}

func New(opts Options, logger zerolog.Logger) *Service {
	if opts.MatchTimeout <= 0 {
		opts.MatchTimeout = 10 * time.Second
	}
	return &Service{
		news:         opts.News,
		source:       opts.Markets,
		matcher:      opts.Matcher,
		cache:        opts.Cache,
		warmer:       opts.Warmer,
		momentum:     opts.Momentum,
		matchTimeout: opts.MatchTimeout,
		logger:       logger.With().Str("component", "service").Logger(),
	}
}

// TrendingEvents returns the current trending news, fastest path, no matching
func (s *Service) TrendingEvents(ctx context.Context, limit int) []news.NewsEvent {
	if limit <= 0 {
		limit = 10
	}
	return s.news.FetchTrending(ctx, limit)
}

// Opportunities matches the top trending events against a shared market pool
// and attaches opportunity scores. Each event's match runs against a fixed
// timeout; a timeout yields that event with zero markets, never a batch error.
func (s *Service) Opportunities(ctx context.Context, limit int) []EventOpportunities {
	if limit <= 0 {
		limit = 3
	}
	if limit > maxOpportunityEvents {
		limit = maxOpportunityEvents
	}

	events := s.news.FetchTrending(ctx, limit)
	pool := s.source.FetchAll(ctx, matchPoolSize)

	result := make([]EventOpportunities, 0, len(events))
	for _, event := range events {
		candidates := s.matchWithTimeout(ctx, event.Title, event.Keywords, pool, 3)
		result = append(result, EventOpportunities{
			Event:   event,
			Markets: s.scoreCandidates(event, candidates),
		})
	}
	return result
}

// MatchEvent is the cache-checked single-event path
func (s *Service) MatchEvent(ctx context.Context, title string, keywords []string, limit int) []matcher.MatchCandidate {
	if limit <= 0 {
		limit = 3
	}

	if cached, ok := s.cache.Get(ctx, title, keywords); ok {
		if len(cached) > limit {
			cached = cached[:limit]
		}
		return cached
	}

	pool := s.source.FetchAll(ctx, matchPoolSize)
	candidates := s.matcher.Match(ctx, title, keywords, pool, limit)
	s.cache.Set(ctx, title, keywords, candidates)
	return candidates
}

// WarmCache pre-computes matches for currently trending high-velocity events
func (s *Service) WarmCache(ctx context.Context, velocityThreshold int) warming.Result {
	if velocityThreshold <= 0 {
		velocityThreshold = 60
	}
	events := s.news.FetchTrending(ctx, warmEventCount)
	return s.warmer.WarmHighVelocity(ctx, events, velocityThreshold)
}

// MarketOfTheHour matches each top event to its single best market and
// returns the pairing that maximizes velocity * relevance. Nil when nothing
// survives matching.
func (s *Service) MarketOfTheHour(ctx context.Context) *HourPick {
	events := s.news.FetchTrending(ctx, 5)
	pool := s.source.FetchAll(ctx, hourPoolSize)

	var best *HourPick
	bestScore := 0
	for _, event := range events {
		candidates := s.matchWithTimeout(ctx, event.Title, event.Keywords, pool, 1)
		if len(candidates) == 0 {
			continue
		}
		score := event.Velocity * candidates[0].RelevanceScore
		if score > bestScore {
			bestScore = score
			best = &HourPick{
				Event:     event,
				Market:    candidates[0].Market,
				Relevance: candidates[0].RelevanceScore,
			}
		}
	}
	return best
}

// matchWithTimeout races the matcher against the configured timeout and
// treats a timeout as zero candidates for the event
func (s *Service) matchWithTimeout(ctx context.Context, title string, keywords []string, pool []markets.UnifiedMarket, limit int) []matcher.MatchCandidate {
	matchCtx, cancel := context.WithTimeout(ctx, s.matchTimeout)
	defer cancel()

	done := make(chan []matcher.MatchCandidate, 1)
	go func() {
		done <- s.matcher.Match(matchCtx, title, keywords, pool, limit)
	}()

	select {
	case candidates := <-done:
		return candidates
	case <-matchCtx.Done():
		s.logger.Warn().Str("event", title).Msg("match timed out, returning no candidates")
		return []matcher.MatchCandidate{}
	}
}

func (s *Service) scoreCandidates(event news.NewsEvent, candidates []matcher.MatchCandidate) []ScoredMatch {
	scored := make([]ScoredMatch, 0, len(candidates))
	for _, c := range candidates {
		var momentum float64
		if s.momentum != nil {
			momentum = s.momentum.Momentum1h(c.Market.ID)
		}
		scored = append(scored, ScoredMatch{
			MatchCandidate: c,
			Opportunity: opportunity.ScoreOpportunity(opportunity.Input{
				Relevance:  c.RelevanceScore,
				Velocity:   event.Velocity,
				Liquidity:  c.Market.Liquidity,
				CloseTime:  c.Market.CloseTime,
				Momentum1h: momentum,
			}),
			Momentum1h:   momentum,
			VelocityChip: opportunity.VelocityChip(event.Velocity),
		})
	}
	return scored
}
