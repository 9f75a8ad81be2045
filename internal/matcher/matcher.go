// Package matcher pairs news events with prediction markets using a
// two-stage filter: a cheap keyword-overlap prune followed by LLM relevance
// scoring of the survivors. The prune typically removes the vast majority of
// the pool before any LLM call is made.
package matcher

import (
	"context"
	"math"
	"sort"
	"strings"

	"prediction-radar/internal/markets"

	"github.com/rs/zerolog"
)

// MatchCandidate is a scored pairing of one market to one event
type MatchCandidate struct {
	Market         markets.UnifiedMarket `json:"market"`
	RelevanceScore int                   `json:"relevanceScore"` // 0-100
	Reasoning      string                `json:"reasoning,omitempty"`
}

// RelevanceScorer judges how topically related a market is to an event.
// Implementations may call an external service; errors are converted to the
// deterministic keyword fallback by the matcher.
type RelevanceScorer interface {
	Score(ctx context.Context, eventTitle string, eventKeywords []string, marketQuestion, marketDescription string) (int, string, error)
}

// Matcher runs the two-stage match pipeline
type Matcher struct {
	scorer      RelevanceScorer
	cutoff      int // Candidates scoring at or below are dropped
	stage2Limit int // Bounds LLM call volume per event
	logger      zerolog.Logger
}

// NewMatcher creates a matcher. scorer may be nil, in which case only the
// keyword fallback score is used.
func NewMatcher(scorer RelevanceScorer, cutoff, stage2Limit int, logger zerolog.Logger) *Matcher {
	if cutoff <= 0 {
		cutoff = 60
	}
	if stage2Limit <= 0 {
		stage2Limit = 20
	}
	return &Matcher{
		scorer:      scorer,
		cutoff:      cutoff,
		stage2Limit: stage2Limit,
		logger:      logger.With().Str("component", "matcher").Logger(),
	}
}

type prunedCandidate struct {
	market       markets.UnifiedMarket
	overlapRatio float64
}

// Match returns up to limit candidates from the pool ranked by relevance to
// the event. An event with zero keyword overlap against the entire pool
// returns an empty list without any scoring-stage calls.
func (m *Matcher) Match(ctx context.Context, eventTitle string, eventKeywords []string, pool []markets.UnifiedMarket, limit int) []MatchCandidate {
	m.logger.Debug().
		Int("pool", len(pool)).
		Str("event", eventTitle).
		Msg("matching markets for event")

	// Stage 1: keyword overlap prune
	var candidates []prunedCandidate
	for _, market := range pool {
		ratio := overlapRatio(eventKeywords, market.Question)
		if ratio > 0 {
			candidates = append(candidates, prunedCandidate{market: market, overlapRatio: ratio})
		}
	}

	if len(candidates) == 0 {
		return []MatchCandidate{}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].overlapRatio > candidates[j].overlapRatio
	})
	if len(candidates) > m.stage2Limit {
		candidates = candidates[:m.stage2Limit]
	}

	m.logger.Debug().Int("candidates", len(candidates)).Msg("pre-filtered by keyword overlap")

	// Stage 2: relevance scoring, fallback to keyword score on failure
	var results []MatchCandidate
	for _, candidate := range candidates {
		score, reasoning := m.scoreCandidate(ctx, eventTitle, eventKeywords, candidate)

		if score > m.cutoff {
			results = append(results, MatchCandidate{
				Market:         candidate.market,
				RelevanceScore: score,
				Reasoning:      reasoning,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	if len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []MatchCandidate{}
	}
	return results
}

func (m *Matcher) scoreCandidate(ctx context.Context, eventTitle string, eventKeywords []string, candidate prunedCandidate) (int, string) {
	fallback := FallbackScore(candidate.overlapRatio)

	if m.scorer == nil {
		return fallback, ""
	}

	score, reasoning, err := m.scorer.Score(ctx, eventTitle, eventKeywords, candidate.market.Question, candidate.market.Description)
	if err != nil {
		m.logger.Warn().Err(err).Str("market", candidate.market.ID).Msg("relevance scoring failed, using keyword fallback")
		return fallback, ""
	}

	return clampScore(score), reasoning
}

// overlapRatio counts event keywords appearing as substrings of the market
// question, over the total keyword count.
func overlapRatio(keywords []string, question string) float64 {
	if len(keywords) == 0 {
		return 0
	}

	questionLower := strings.ToLower(question)
	matches := 0
	for _, kw := range keywords {
		if strings.Contains(questionLower, strings.ToLower(kw)) {
			matches++
		}
	}
	return float64(matches) / float64(len(keywords))
}

// FallbackScore converts a keyword overlap ratio to a 0-100 relevance score
// used when the external scorer is down or disabled.
func FallbackScore(overlapRatio float64) int {
	return clampScore(int(math.Round(overlapRatio * 150)))
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
