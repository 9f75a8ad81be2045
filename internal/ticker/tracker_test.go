package ticker

import (
	"context"
	"testing"
	"time"

	"prediction-radar/internal/markets"

	"github.com/rs/zerolog"
)

type staticSource struct {
	batch []markets.UnifiedMarket
}

func (s *staticSource) FetchAll(ctx context.Context, limit int) []markets.UnifiedMarket {
	return s.batch
}

func newTestTracker() *Tracker {
	return NewTracker(&staticSource{}, nil, time.Second, 10, zerolog.Nop())
}

func TestMomentum1h(t *testing.T) {
	tr := newTestTracker()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	market := markets.UnifiedMarket{ID: "kalshi-BTC", Venue: markets.VenueKalshi}

	// Snapshot 90 minutes ago at 0.40, then 30 minutes ago at 0.45,
	// then now at 0.52
	tr.now = func() time.Time { return base.Add(-90 * time.Minute) }
	market.Probability = 0.40
	tr.Record(market)

	tr.now = func() time.Time { return base.Add(-30 * time.Minute) }
	market.Probability = 0.45
	tr.Record(market)

	tr.now = func() time.Time { return base }
	market.Probability = 0.52
	tr.Record(market)

	// Latest (0.52) minus the newest snapshot at least 1h old (0.40)
	got := tr.Momentum1h("kalshi-BTC")
	if diff := got - 0.12; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Momentum1h = %v, want 0.12", got)
	}
}

func TestMomentum1hInsufficientHistory(t *testing.T) {
	tr := newTestTracker()

	if got := tr.Momentum1h("unknown"); got != 0 {
		t.Errorf("unknown market momentum = %v, want 0", got)
	}

	// Only recent snapshots, none an hour old
	tr.Record(markets.UnifiedMarket{ID: "kalshi-FED", Probability: 0.60})
	tr.Record(markets.UnifiedMarket{ID: "kalshi-FED", Probability: 0.65})
	if got := tr.Momentum1h("kalshi-FED"); got != 0 {
		t.Errorf("momentum without hour-old history = %v, want 0", got)
	}
}

func TestRecordBoundsHistory(t *testing.T) {
	tr := newTestTracker()
	market := markets.UnifiedMarket{ID: "poly-ETH", Probability: 0.5}

	for i := 0; i < maxHistory+50; i++ {
		tr.Record(market)
	}

	tr.mu.RLock()
	n := len(tr.snapshots["poly-ETH"])
	tr.mu.RUnlock()
	if n != maxHistory {
		t.Errorf("history length = %d, want %d", n, maxHistory)
	}
}

func TestStartStop(t *testing.T) {
	source := &staticSource{batch: []markets.UnifiedMarket{
		{ID: "kalshi-BTC", Venue: markets.VenueKalshi, Probability: 0.5},
	}}
	tr := NewTracker(source, nil, 10*time.Millisecond, 10, zerolog.Nop())

	tr.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	tr.Stop()

	if tr.TrackedMarkets() != 1 {
		t.Errorf("TrackedMarkets = %d, want 1", tr.TrackedMarkets())
	}
}
