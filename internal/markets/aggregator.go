package markets

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Aggregator fans fetch and search calls out across venue adapters and
// merges the results into one ranked list. A failing venue contributes zero
// records; only the total absence of venues yields an empty result.
type Aggregator struct {
	adapters     []Adapter
	fetchTimeout time.Duration
	logger       zerolog.Logger
}

// NewAggregator creates an aggregator over the given venue adapters
func NewAggregator(adapters []Adapter, fetchTimeout time.Duration, logger zerolog.Logger) *Aggregator {
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}
	return &Aggregator{
		adapters:     adapters,
		fetchTimeout: fetchTimeout,
		logger:       logger.With().Str("component", "aggregator").Logger(),
	}
}

// FetchAll fetches markets from every venue concurrently and returns up to
// limit records sorted by volume descending. Venue failures degrade to
// partial results; all venues failing yields an empty list, not an error.
func (a *Aggregator) FetchAll(ctx context.Context, limit int) []UnifiedMarket {
	perVenue := a.perVenueLimit(limit)

	unified := a.fanOut(ctx, func(ctx context.Context, adapter Adapter) ([]UnifiedMarket, error) {
		return adapter.FetchMarkets(ctx, perVenue)
	})

	sort.Slice(unified, func(i, j int) bool {
		return unified[i].Volume > unified[j].Volume
	})

	if len(unified) > limit {
		unified = unified[:limit]
	}
	return unified
}

// Search searches every venue concurrently and returns up to limit records
// sorted by volume plus liquidity descending.
func (a *Aggregator) Search(ctx context.Context, query string, limit int) []UnifiedMarket {
	perVenue := a.perVenueLimit(limit)

	unified := a.fanOut(ctx, func(ctx context.Context, adapter Adapter) ([]UnifiedMarket, error) {
		return adapter.SearchMarkets(ctx, query, perVenue)
	})

	sort.Slice(unified, func(i, j int) bool {
		return unified[i].Volume+unified[i].Liquidity > unified[j].Volume+unified[j].Liquidity
	})

	if len(unified) > limit {
		unified = unified[:limit]
	}
	return unified
}

// GetMarket looks up a single market on a specific venue. An unknown venue
// or unknown market ID returns nil, not an error.
func (a *Aggregator) GetMarket(ctx context.Context, venue Venue, id string) *UnifiedMarket {
	for _, adapter := range a.adapters {
		if adapter.Venue() != venue {
			continue
		}

		ctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
		defer cancel()

		market, err := adapter.GetMarket(ctx, id)
		if err != nil {
			a.logger.Warn().Err(err).Str("venue", string(venue)).Str("id", id).Msg("market lookup failed")
			return nil
		}
		return market
	}
	return nil
}

// Venues returns the venues currently served by the aggregator
func (a *Aggregator) Venues() []Venue {
	out := make([]Venue, 0, len(a.adapters))
	for _, adapter := range a.adapters {
		out = append(out, adapter.Venue())
	}
	return out
}

// fanOut invokes fn against every adapter in parallel with independent
// failure domains and a per-venue timeout, merging the survivors.
func (a *Aggregator) fanOut(ctx context.Context, fn func(context.Context, Adapter) ([]UnifiedMarket, error)) []UnifiedMarket {
	type venueResult struct {
		venue   Venue
		records []UnifiedMarket
		err     error
	}

	results := make(chan venueResult, len(a.adapters))
	var wg sync.WaitGroup

	for _, adapter := range a.adapters {
		wg.Add(1)
		go func(adapter Adapter) {
			defer wg.Done()

			venueCtx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
			defer cancel()

			records, err := fn(venueCtx, adapter)
			results <- venueResult{venue: adapter.Venue(), records: records, err: err}
		}(adapter)
	}

	wg.Wait()
	close(results)

	unified := make([]UnifiedMarket, 0)
	for res := range results {
		if res.err != nil {
			a.logger.Warn().Err(res.err).Str("venue", string(res.venue)).Msg("venue fetch failed, continuing without it")
			continue
		}
		unified = append(unified, res.records...)
	}
	return unified
}

// perVenueLimit splits the requested limit evenly across venues, rounding up
func (a *Aggregator) perVenueLimit(limit int) int {
	n := len(a.adapters)
	if n == 0 {
		return limit
	}
	return (limit + n - 1) / n
}
