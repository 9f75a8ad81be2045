package markets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeAdapter struct {
	venue   Venue
	markets []UnifiedMarket
	err     error
	delay   time.Duration
}

func (f *fakeAdapter) Venue() Venue { return f.venue }

func (f *fakeAdapter) FetchMarkets(ctx context.Context, limit int) ([]UnifiedMarket, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if len(f.markets) > limit {
		return f.markets[:limit], nil
	}
	return f.markets, nil
}

func (f *fakeAdapter) SearchMarkets(ctx context.Context, query string, limit int) ([]UnifiedMarket, error) {
	return f.FetchMarkets(ctx, limit)
}

func (f *fakeAdapter) GetMarket(ctx context.Context, id string) (*UnifiedMarket, error) {
	for i := range f.markets {
		if f.markets[i].ID == id {
			return &f.markets[i], nil
		}
	}
	return nil, nil
}

func mkMarket(id string, venue Venue, volume, liquidity float64) UnifiedMarket {
	return UnifiedMarket{
		ID:        id,
		Venue:     venue,
		Question:  "Will something happen?",
		Volume:    volume,
		Liquidity: liquidity,
		Status:    StatusOpen,
	}
}

func TestFetchAllSortsByVolume(t *testing.T) {
	agg := NewAggregator([]Adapter{
		&fakeAdapter{venue: VenueKalshi, markets: []UnifiedMarket{
			mkMarket("kalshi-A", VenueKalshi, 100, 0),
		}},
		&fakeAdapter{venue: VenueManifold, markets: []UnifiedMarket{
			mkMarket("manifold-B", VenueManifold, 900, 0),
			mkMarket("manifold-C", VenueManifold, 50, 0),
		}},
	}, time.Second, zerolog.Nop())

	got := agg.FetchAll(context.Background(), 30)

	if len(got) != 3 {
		t.Fatalf("expected 3 markets, got %d", len(got))
	}
	if got[0].ID != "manifold-B" || got[1].ID != "kalshi-A" || got[2].ID != "manifold-C" {
		t.Errorf("wrong volume ordering: %s, %s, %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestFetchAllToleratesVenueFailure(t *testing.T) {
	agg := NewAggregator([]Adapter{
		&fakeAdapter{venue: VenueKalshi, markets: []UnifiedMarket{
			mkMarket("kalshi-A", VenueKalshi, 100, 0),
		}},
		&fakeAdapter{venue: VenuePolymarket, err: errors.New("venue down")},
		&fakeAdapter{venue: VenueManifold, markets: []UnifiedMarket{
			mkMarket("manifold-B", VenueManifold, 200, 0),
		}},
	}, time.Second, zerolog.Nop())

	got := agg.FetchAll(context.Background(), 30)

	if len(got) != 2 {
		t.Fatalf("expected combined results from healthy venues, got %d markets", len(got))
	}
}

func TestFetchAllAllVenuesDownReturnsEmpty(t *testing.T) {
	agg := NewAggregator([]Adapter{
		&fakeAdapter{venue: VenueKalshi, err: errors.New("down")},
		&fakeAdapter{venue: VenuePolymarket, err: errors.New("down")},
	}, time.Second, zerolog.Nop())

	got := agg.FetchAll(context.Background(), 30)

	if len(got) != 0 {
		t.Errorf("expected empty list, got %d markets", len(got))
	}
}

func TestFetchAllSlowVenueTimesOut(t *testing.T) {
	agg := NewAggregator([]Adapter{
		&fakeAdapter{venue: VenueKalshi, markets: []UnifiedMarket{
			mkMarket("kalshi-A", VenueKalshi, 100, 0),
		}},
		&fakeAdapter{venue: VenueManifold, delay: 500 * time.Millisecond, markets: []UnifiedMarket{
			mkMarket("manifold-B", VenueManifold, 200, 0),
		}},
	}, 50*time.Millisecond, zerolog.Nop())

	got := agg.FetchAll(context.Background(), 30)

	if len(got) != 1 || got[0].ID != "kalshi-A" {
		t.Errorf("expected only the fast venue's market, got %d markets", len(got))
	}
}

func TestFetchAllRespectsLimit(t *testing.T) {
	var many []UnifiedMarket
	for i := 0; i < 20; i++ {
		many = append(many, mkMarket("kalshi-"+string(rune('a'+i)), VenueKalshi, float64(i), 0))
	}
	agg := NewAggregator([]Adapter{
		&fakeAdapter{venue: VenueKalshi, markets: many},
	}, time.Second, zerolog.Nop())

	got := agg.FetchAll(context.Background(), 5)

	if len(got) != 5 {
		t.Errorf("expected 5 markets, got %d", len(got))
	}
}

func TestSearchSortsByVolumePlusLiquidity(t *testing.T) {
	agg := NewAggregator([]Adapter{
		&fakeAdapter{venue: VenueKalshi, markets: []UnifiedMarket{
			mkMarket("kalshi-A", VenueKalshi, 100, 500),
		}},
		&fakeAdapter{venue: VenueManifold, markets: []UnifiedMarket{
			mkMarket("manifold-B", VenueManifold, 400, 100),
		}},
	}, time.Second, zerolog.Nop())

	got := agg.Search(context.Background(), "something", 10)

	if len(got) != 2 {
		t.Fatalf("expected 2 markets, got %d", len(got))
	}
	if got[0].ID != "kalshi-A" {
		t.Errorf("expected kalshi-A first (600 combined), got %s", got[0].ID)
	}
}

func TestGetMarketUnknownVenue(t *testing.T) {
	agg := NewAggregator([]Adapter{
		&fakeAdapter{venue: VenueKalshi, markets: []UnifiedMarket{
			mkMarket("kalshi-A", VenueKalshi, 100, 0),
		}},
	}, time.Second, zerolog.Nop())

	if got := agg.GetMarket(context.Background(), Venue("betfair"), "x"); got != nil {
		t.Errorf("unknown venue should return nil, got %+v", got)
	}
	if got := agg.GetMarket(context.Background(), VenueKalshi, "kalshi-missing"); got != nil {
		t.Errorf("unknown market should return nil, got %+v", got)
	}
	if got := agg.GetMarket(context.Background(), VenueKalshi, "kalshi-A"); got == nil {
		t.Error("known market should be found")
	}
}
