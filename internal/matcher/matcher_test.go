package matcher

import (
	"context"
	"errors"
	"testing"

	"prediction-radar/internal/markets"

	"github.com/rs/zerolog"
)

// cannedScorer returns fixed scores per market question and records calls
type cannedScorer struct {
	scores map[string]int
	err    error
	calls  int
}

func (c *cannedScorer) Score(ctx context.Context, eventTitle string, eventKeywords []string, marketQuestion, marketDescription string) (int, string, error) {
	c.calls++
	if c.err != nil {
		return 0, "", c.err
	}
	return c.scores[marketQuestion], "canned reasoning", nil
}

func poolOf(questions ...string) []markets.UnifiedMarket {
	pool := make([]markets.UnifiedMarket, 0, len(questions))
	for i, q := range questions {
		pool = append(pool, markets.UnifiedMarket{
			ID:       "kalshi-" + string(rune('A'+i)),
			Venue:    markets.VenueKalshi,
			Question: q,
			Status:   markets.StatusOpen,
		})
	}
	return pool
}

func TestMatchZeroOverlapSkipsScoringStage(t *testing.T) {
	scorer := &cannedScorer{scores: map[string]int{}}
	m := NewMatcher(scorer, 60, 20, zerolog.Nop())

	got := m.Match(context.Background(), "Bitcoin surges",
		[]string{"bitcoin", "surge"},
		poolOf("Will it rain in Paris tomorrow?", "Who wins the Oscars?"),
		5)

	if len(got) != 0 {
		t.Errorf("expected no candidates, got %d", len(got))
	}
	if scorer.calls != 0 {
		t.Errorf("scoring stage must not run on zero overlap, got %d calls", scorer.calls)
	}
}

func TestMatchFiltersBelowCutoffRegardlessOfLimit(t *testing.T) {
	scorer := &cannedScorer{scores: map[string]int{
		"Will Bitcoin reach $100k?":         85,
		"Will Bitcoin drop below $50k?":     55,
		"Will Bitcoin ETFs see outflows?":   60,
		"Will Bitcoin mining costs surge?":  42,
	}}
	m := NewMatcher(scorer, 60, 20, zerolog.Nop())

	got := m.Match(context.Background(), "Bitcoin surges",
		[]string{"bitcoin"},
		poolOf(
			"Will Bitcoin reach $100k?",
			"Will Bitcoin drop below $50k?",
			"Will Bitcoin ETFs see outflows?",
			"Will Bitcoin mining costs surge?",
		),
		5)

	if len(got) != 1 {
		t.Fatalf("expected exactly one candidate above cutoff, got %d", len(got))
	}
	if got[0].RelevanceScore != 85 {
		t.Errorf("expected the 85 candidate, got %d", got[0].RelevanceScore)
	}
}

func TestMatchSortsAndTruncates(t *testing.T) {
	scorer := &cannedScorer{scores: map[string]int{
		"Will Bitcoin reach $100k?":       70,
		"Will Bitcoin reach $120k?":       95,
		"Will Bitcoin stay above $90k?":   80,
	}}
	m := NewMatcher(scorer, 60, 20, zerolog.Nop())

	got := m.Match(context.Background(), "Bitcoin surges",
		[]string{"bitcoin"},
		poolOf("Will Bitcoin reach $100k?", "Will Bitcoin reach $120k?", "Will Bitcoin stay above $90k?"),
		2)

	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].RelevanceScore != 95 || got[1].RelevanceScore != 80 {
		t.Errorf("wrong ordering: %d, %d", got[0].RelevanceScore, got[1].RelevanceScore)
	}
}

func TestMatchScorerFailureUsesKeywordFallback(t *testing.T) {
	scorer := &cannedScorer{err: errors.New("llm down")}
	m := NewMatcher(scorer, 60, 20, zerolog.Nop())

	// Both keywords hit, so the fallback is min(100, round(1.0*150)) = 100
	got := m.Match(context.Background(), "Bitcoin surges",
		[]string{"bitcoin", "surge"},
		poolOf("Will Bitcoin surge past $100k?"),
		5)

	if len(got) != 1 {
		t.Fatalf("expected 1 candidate via fallback, got %d", len(got))
	}
	if got[0].RelevanceScore != 100 {
		t.Errorf("expected fallback score 100, got %d", got[0].RelevanceScore)
	}
}

func TestMatchNilScorerUsesFallback(t *testing.T) {
	m := NewMatcher(nil, 60, 20, zerolog.Nop())

	// One of two keywords hits: round(0.5*150) = 75 > 60
	got := m.Match(context.Background(), "Bitcoin surges",
		[]string{"bitcoin", "halving"},
		poolOf("Will Bitcoin reach $100k?"),
		5)

	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].RelevanceScore != 75 {
		t.Errorf("expected fallback score 75, got %d", got[0].RelevanceScore)
	}
}

func TestMatchBoundsScoringStageCalls(t *testing.T) {
	questions := make([]string, 30)
	scores := make(map[string]int, 30)
	for i := range questions {
		questions[i] = "Will Bitcoin market " + string(rune('a'+i%26)) + string(rune('a'+i/26)) + " resolve yes?"
		scores[questions[i]] = 50
	}
	scorer := &cannedScorer{scores: scores}
	m := NewMatcher(scorer, 60, 20, zerolog.Nop())

	m.Match(context.Background(), "Bitcoin surges", []string{"bitcoin"}, poolOf(questions...), 5)

	if scorer.calls != 20 {
		t.Errorf("expected at most 20 scoring calls, got %d", scorer.calls)
	}
}

func TestMatchClampsScorerOutput(t *testing.T) {
	scorer := &cannedScorer{scores: map[string]int{"Will Bitcoin reach $100k?": 400}}
	m := NewMatcher(scorer, 60, 20, zerolog.Nop())

	got := m.Match(context.Background(), "Bitcoin surges", []string{"bitcoin"},
		poolOf("Will Bitcoin reach $100k?"), 5)

	if len(got) != 1 || got[0].RelevanceScore != 100 {
		t.Fatalf("expected score clamped to 100, got %+v", got)
	}
}

func TestFallbackScore(t *testing.T) {
	tests := []struct {
		ratio float64
		want  int
	}{
		{0, 0},
		{0.5, 75},
		{1.0, 100}, // 150 clamped
	}
	for _, tt := range tests {
		if got := FallbackScore(tt.ratio); got != tt.want {
			t.Errorf("FallbackScore(%v) = %d, want %d", tt.ratio, got, tt.want)
		}
	}
}
