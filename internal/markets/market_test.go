package markets

import (
	"testing"

	"prediction-radar/internal/venues"
)

func TestNormalizeKalshiMarket(t *testing.T) {
	m := normalizeKalshiMarket(venues.KalshiMarket{
		Ticker:    "FED-25DEC",
		Title:     "Will the Fed cut rates in December?",
		Status:    "open",
		YesBid:    40,
		YesAsk:    44,
		Volume:    1200,
		Liquidity: 800,
		CloseTime: "2026-12-15T21:00:00Z",
	})

	if m.ID != "kalshi-FED-25DEC" {
		t.Errorf("unexpected id %q", m.ID)
	}
	if m.Probability != 0.42 {
		t.Errorf("expected cents midpoint 0.42, got %v", m.Probability)
	}
	if m.Status != StatusOpen {
		t.Errorf("expected open, got %s", m.Status)
	}
	if m.CloseTime == nil {
		t.Error("expected parsed close time")
	}
}

func TestNormalizeKalshiMarketNoQuotesDefaultsToHalf(t *testing.T) {
	m := normalizeKalshiMarket(venues.KalshiMarket{Ticker: "X", Title: "t", Status: "closed"})

	if m.Probability != 0.5 {
		t.Errorf("expected default 0.5, got %v", m.Probability)
	}
	if m.Status != StatusClosed {
		t.Errorf("expected closed, got %s", m.Status)
	}
}

func TestNormalizePolymarketMarket(t *testing.T) {
	m := normalizePolymarketMarket(venues.PolymarketMarket{
		ID:            "12345",
		Question:      "Will Bitcoin reach $100k?",
		OutcomePrices: []string{"0.63", "0.37"},
		Volume:        "50000.5",
		Liquidity:     "1200",
		Active:        true,
	})

	if m.Probability != 0.63 {
		t.Errorf("expected 0.63, got %v", m.Probability)
	}
	if m.Volume != 50000.5 {
		t.Errorf("expected parsed volume, got %v", m.Volume)
	}
	if m.Status != StatusOpen {
		t.Errorf("expected open, got %s", m.Status)
	}
}

func TestNormalizePolymarketMarketClampsProbability(t *testing.T) {
	m := normalizePolymarketMarket(venues.PolymarketMarket{
		ID:            "1",
		OutcomePrices: []string{"1.7"},
		Active:        true,
	})

	if m.Probability != 1 {
		t.Errorf("expected clamp to 1, got %v", m.Probability)
	}
}

func TestNormalizeManifoldMarket(t *testing.T) {
	m := normalizeManifoldMarket(venues.ManifoldMarket{
		ID:             "abc",
		Question:       "Will it rain?",
		Probability:    0.31,
		Volume:         900,
		Volume24Hours:  120,
		TotalLiquidity: 440,
		IsResolved:     true,
		URL:            "https://manifold.markets/abc",
	})

	if m.Volume != 120 {
		t.Errorf("expected 24h volume preferred, got %v", m.Volume)
	}
	if m.Status != StatusResolved {
		t.Errorf("expected resolved, got %s", m.Status)
	}
	if m.Liquidity != 440 {
		t.Errorf("expected liquidity 440, got %v", m.Liquidity)
	}
}
