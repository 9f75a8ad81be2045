package markets

import (
	"context"

	"prediction-radar/internal/venues"
)

// Adapter is a venue market source producing unified records. Each venue
// client is wrapped in an adapter so the aggregator never sees venue-native
// shapes.
type Adapter interface {
	Venue() Venue
	FetchMarkets(ctx context.Context, limit int) ([]UnifiedMarket, error)
	SearchMarkets(ctx context.Context, query string, limit int) ([]UnifiedMarket, error)
	GetMarket(ctx context.Context, id string) (*UnifiedMarket, error)
}

type kalshiAdapter struct {
	client *venues.KalshiClient
}

// NewKalshiAdapter wraps a Kalshi client as an aggregator adapter
func NewKalshiAdapter(client *venues.KalshiClient) Adapter {
	return &kalshiAdapter{client: client}
}

func (a *kalshiAdapter) Venue() Venue { return VenueKalshi }

func (a *kalshiAdapter) FetchMarkets(ctx context.Context, limit int) ([]UnifiedMarket, error) {
	raw, err := a.client.FetchMarkets(ctx, limit)
	if err != nil {
		return nil, err
	}
	unified := make([]UnifiedMarket, 0, len(raw))
	for _, m := range raw {
		unified = append(unified, normalizeKalshiMarket(m))
	}
	return unified, nil
}

func (a *kalshiAdapter) SearchMarkets(ctx context.Context, query string, limit int) ([]UnifiedMarket, error) {
	raw, err := a.client.SearchMarkets(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	unified := make([]UnifiedMarket, 0, len(raw))
	for _, m := range raw {
		unified = append(unified, normalizeKalshiMarket(m))
	}
	return unified, nil
}

func (a *kalshiAdapter) GetMarket(ctx context.Context, id string) (*UnifiedMarket, error) {
	raw, err := a.client.GetMarket(ctx, id)
	if err != nil || raw == nil {
		return nil, err
	}
	m := normalizeKalshiMarket(*raw)
	return &m, nil
}

type polymarketAdapter struct {
	client *venues.PolymarketClient
}

// NewPolymarketAdapter wraps a Polymarket client as an aggregator adapter
func NewPolymarketAdapter(client *venues.PolymarketClient) Adapter {
	return &polymarketAdapter{client: client}
}

func (a *polymarketAdapter) Venue() Venue { return VenuePolymarket }

func (a *polymarketAdapter) FetchMarkets(ctx context.Context, limit int) ([]UnifiedMarket, error) {
	raw, err := a.client.FetchMarkets(ctx, limit)
	if err != nil {
		return nil, err
	}
	unified := make([]UnifiedMarket, 0, len(raw))
	for _, m := range raw {
		unified = append(unified, normalizePolymarketMarket(m))
	}
	return unified, nil
}

func (a *polymarketAdapter) SearchMarkets(ctx context.Context, query string, limit int) ([]UnifiedMarket, error) {
	raw, err := a.client.SearchMarkets(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	unified := make([]UnifiedMarket, 0, len(raw))
	for _, m := range raw {
		unified = append(unified, normalizePolymarketMarket(m))
	}
	return unified, nil
}

func (a *polymarketAdapter) GetMarket(ctx context.Context, id string) (*UnifiedMarket, error) {
	raw, err := a.client.GetMarket(ctx, id)
	if err != nil || raw == nil {
		return nil, err
	}
	m := normalizePolymarketMarket(*raw)
	return &m, nil
}

type manifoldAdapter struct {
	client *venues.ManifoldClient
}

// NewManifoldAdapter wraps a Manifold client as an aggregator adapter
func NewManifoldAdapter(client *venues.ManifoldClient) Adapter {
	return &manifoldAdapter{client: client}
}

func (a *manifoldAdapter) Venue() Venue { return VenueManifold }

func (a *manifoldAdapter) FetchMarkets(ctx context.Context, limit int) ([]UnifiedMarket, error) {
	raw, err := a.client.FetchMarkets(ctx, limit)
	if err != nil {
		return nil, err
	}
	unified := make([]UnifiedMarket, 0, len(raw))
	for _, m := range raw {
		unified = append(unified, normalizeManifoldMarket(m))
	}
	return unified, nil
}

func (a *manifoldAdapter) SearchMarkets(ctx context.Context, query string, limit int) ([]UnifiedMarket, error) {
	raw, err := a.client.SearchMarkets(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	unified := make([]UnifiedMarket, 0, len(raw))
	for _, m := range raw {
		unified = append(unified, normalizeManifoldMarket(m))
	}
	return unified, nil
}

func (a *manifoldAdapter) GetMarket(ctx context.Context, id string) (*UnifiedMarket, error) {
	raw, err := a.client.GetMarket(ctx, id)
	if err != nil || raw == nil {
		return nil, err
	}
	m := normalizeManifoldMarket(*raw)
	return &m, nil
}
