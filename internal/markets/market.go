package markets

import (
	"fmt"
	"strconv"
	"time"

	"prediction-radar/internal/venues"
)

// Venue identifies a prediction-market platform
type Venue string

const (
	VenueKalshi     Venue = "kalshi"
	VenuePolymarket Venue = "polymarket"
	VenueManifold   Venue = "manifold"
)

// Market status values
const (
	StatusOpen     = "open"
	StatusClosed   = "closed"
	StatusResolved = "resolved"
)

// UnifiedMarket is the venue-independent market record produced by the
// aggregator. Instances are built fresh on every aggregation call and are
// never persisted.
type UnifiedMarket struct {
	ID          string     `json:"id"` // Venue-prefixed stable ID
	Venue       Venue      `json:"venue"`
	Question    string     `json:"question"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"`
	Probability float64    `json:"probability"` // 0.0-1.0, midpoint of best bid/ask
	Volume      float64    `json:"volume"`
	Liquidity   float64    `json:"liquidity"` // USD-equivalent depth
	CloseTime   *time.Time `json:"closeTime,omitempty"`
	URL         string     `json:"url"`
	Status      string     `json:"status"`
}

// normalizeKalshiMarket converts a Kalshi record to the unified shape.
// Kalshi quotes prices in cents, so the bid/ask midpoint is divided by 100.
func normalizeKalshiMarket(m venues.KalshiMarket) UnifiedMarket {
	probability := 0.5
	if m.YesBid > 0 || m.YesAsk > 0 {
		probability = (m.YesBid + m.YesAsk) / 2 / 100
	}

	status := StatusClosed
	if m.Status == "open" {
		status = StatusOpen
	}

	return UnifiedMarket{
		ID:          fmt.Sprintf("kalshi-%s", m.Ticker),
		Venue:       VenueKalshi,
		Question:    m.Title,
		Description: m.Subtitle,
		Category:    m.Category,
		Probability: clampProbability(probability),
		Volume:      nonNegative(m.Volume),
		Liquidity:   nonNegative(m.Liquidity),
		CloseTime:   parseRFC3339(m.CloseTime),
		URL:         fmt.Sprintf("https://kalshi.com/markets/%s", m.Ticker),
		Status:      status,
	}
}

// normalizePolymarketMarket converts a Gamma API record to the unified shape
func normalizePolymarketMarket(m venues.PolymarketMarket) UnifiedMarket {
	probability := 0.5
	if len(m.OutcomePrices) > 0 {
		if p, err := strconv.ParseFloat(m.OutcomePrices[0], 64); err == nil {
			probability = p
		}
	}

	status := StatusResolved
	switch {
	case m.Closed:
		status = StatusClosed
	case m.Active:
		status = StatusOpen
	}

	return UnifiedMarket{
		ID:          fmt.Sprintf("polymarket-%s", m.ID),
		Venue:       VenuePolymarket,
		Question:    m.Question,
		Description: m.Description,
		Category:    m.Category,
		Probability: clampProbability(probability),
		Volume:      nonNegative(parseFloat(m.Volume)),
		Liquidity:   nonNegative(parseFloat(m.Liquidity)),
		CloseTime:   parseRFC3339(m.EndDate),
		URL:         fmt.Sprintf("https://polymarket.com/event/%s", m.ID),
		Status:      status,
	}
}

// normalizeManifoldMarket converts a Manifold record to the unified shape.
// 24h volume is preferred as the activity signal when available.
func normalizeManifoldMarket(m venues.ManifoldMarket) UnifiedMarket {
	probability := m.Probability
	if probability == 0 {
		probability = 0.5
	}

	volume := m.Volume24Hours
	if volume == 0 {
		volume = m.Volume
	}

	status := StatusOpen
	if m.IsResolved {
		status = StatusResolved
	}

	marketURL := m.URL
	if marketURL == "" {
		marketURL = fmt.Sprintf("https://manifold.markets/%s", m.ID)
	}

	var closeTime *time.Time
	if m.CloseTime > 0 {
		t := time.UnixMilli(m.CloseTime).UTC()
		closeTime = &t
	}

	return UnifiedMarket{
		ID:          fmt.Sprintf("manifold-%s", m.ID),
		Venue:       VenueManifold,
		Question:    m.Question,
		Description: m.Description,
		Probability: clampProbability(probability),
		Volume:      nonNegative(volume),
		Liquidity:   nonNegative(m.TotalLiquidity),
		CloseTime:   closeTime,
		URL:         marketURL,
		Status:      status,
	}
}

func clampProbability(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseRFC3339(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
