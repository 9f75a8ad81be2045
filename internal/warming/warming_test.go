package warming

import (
	"context"
	"testing"
	"time"

	"prediction-radar/internal/markets"
	"prediction-radar/internal/matcher"
	"prediction-radar/internal/news"

	"github.com/rs/zerolog"
)

type fakeSource struct {
	markets []markets.UnifiedMarket
	calls   int
}

func (f *fakeSource) FetchAll(ctx context.Context, limit int) []markets.UnifiedMarket {
	f.calls++
	return f.markets
}

type fakeMatcher struct {
	result []matcher.MatchCandidate
	calls  int
}

func (f *fakeMatcher) Match(ctx context.Context, title string, keywords []string, pool []markets.UnifiedMarket, limit int) []matcher.MatchCandidate {
	f.calls++
	return f.result
}

type fakeCache struct {
	entries map[string][]matcher.MatchCandidate
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]matcher.MatchCandidate)}
}

func (f *fakeCache) Get(ctx context.Context, title string, keywords []string) ([]matcher.MatchCandidate, bool) {
	c, ok := f.entries[title]
	return c, ok
}

func (f *fakeCache) Set(ctx context.Context, title string, keywords []string, candidates []matcher.MatchCandidate) {
	f.sets++
	f.entries[title] = candidates
}

func testPool() []markets.UnifiedMarket {
	return []markets.UnifiedMarket{
		{ID: "kalshi-BTC", Venue: markets.VenueKalshi, Question: "Will Bitcoin reach $100k?"},
	}
}

func testEvents() []news.NewsEvent {
	return []news.NewsEvent{
		{Title: "Bitcoin Surges Past $98,000", Keywords: []string{"bitcoin", "surges"}, Velocity: 92},
		{Title: "Fed Signals Rate Cut", Keywords: []string{"fed", "rate"}, Velocity: 85},
		{Title: "Minor Tech Update", Keywords: []string{"tech", "update"}, Velocity: 30},
	}
}

func newTestWarmer(src *fakeSource, m *fakeMatcher, cache *fakeCache) *Warmer {
	return NewWarmer(src, m, cache, Config{EventDelay: time.Millisecond}, zerolog.Nop())
}

func TestWarmHighVelocityFiltersByThreshold(t *testing.T) {
	src := &fakeSource{markets: testPool()}
	m := &fakeMatcher{result: []matcher.MatchCandidate{{RelevanceScore: 80}}}
	cache := newFakeCache()

	res := newTestWarmer(src, m, cache).WarmHighVelocity(context.Background(), testEvents(), 60)

	if res.Warmed != 2 || res.Skipped != 0 || res.Failed != 0 {
		t.Errorf("result = %+v, want 2 warmed", res)
	}
	// The velocity-30 event must never reach the matcher
	if m.calls != 2 {
		t.Errorf("matcher called %d times, want 2", m.calls)
	}
	if _, ok := cache.entries["Minor Tech Update"]; ok {
		t.Error("low-velocity event was cached")
	}
}

func TestWarmSkipsAlreadyCached(t *testing.T) {
	src := &fakeSource{markets: testPool()}
	m := &fakeMatcher{}
	cache := newFakeCache()
	cache.entries["Bitcoin Surges Past $98,000"] = []matcher.MatchCandidate{{RelevanceScore: 80}}

	res := newTestWarmer(src, m, cache).WarmHighVelocity(context.Background(), testEvents(), 60)

	if res.Warmed != 1 || res.Skipped != 1 || res.Failed != 0 {
		t.Errorf("result = %+v, want 1 warmed 1 skipped", res)
	}
	// Cached event must not trigger a market fetch
	if src.calls != 1 {
		t.Errorf("source fetched %d times, want 1", src.calls)
	}
}

func TestWarmFailureDoesNotStopBatch(t *testing.T) {
	// Empty market pool makes every warm attempt fail
	src := &fakeSource{}
	m := &fakeMatcher{}
	cache := newFakeCache()

	res := newTestWarmer(src, m, cache).WarmHighVelocity(context.Background(), testEvents(), 60)

	if res.Failed != 2 || res.Warmed != 0 {
		t.Errorf("result = %+v, want 2 failed", res)
	}
	if src.calls != 2 {
		t.Errorf("source fetched %d times, want 2 (batch must continue past failures)", src.calls)
	}
}

func TestWarmHighVelocityEmptyBatch(t *testing.T) {
	src := &fakeSource{markets: testPool()}
	res := newTestWarmer(src, &fakeMatcher{}, newFakeCache()).
		WarmHighVelocity(context.Background(), testEvents(), 95)

	if res != (Result{}) {
		t.Errorf("result = %+v, want zero result", res)
	}
	if src.calls != 0 {
		t.Error("no events above threshold, source should not be called")
	}
}
