package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestExtractKeywords(t *testing.T) {
	got := ExtractKeywords("The Federal Reserve signals rate cuts, and the markets rally.")

	want := []string{"federal", "reserve", "signals", "rate", "cuts", "markets", "rally"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("keywords = %v, want %v", got, want)
	}
}

func TestExtractKeywordsDedupesAndCaps(t *testing.T) {
	got := ExtractKeywords("bitcoin bitcoin bitcoin alpha bravo charlie delta echo foxtrot golf hotel india juliet")

	if len(got) != 10 {
		t.Fatalf("expected cap at 10 keywords, got %d", len(got))
	}
	if got[0] != "bitcoin" {
		t.Errorf("expected bitcoin first, got %s", got[0])
	}
	seen := map[string]int{}
	for _, kw := range got {
		seen[kw]++
	}
	if seen["bitcoin"] != 1 {
		t.Errorf("expected bitcoin de-duplicated, appeared %d times", seen["bitcoin"])
	}
}

func TestCategorizePriorityOrder(t *testing.T) {
	tests := []struct {
		keywords []string
		want     string
	}{
		{[]string{"bitcoin", "election"}, CategoryCrypto},
		{[]string{"election", "economy"}, CategoryPolitics},
		{[]string{"inflation", "rates", "google"}, CategoryEconomy},
		{[]string{"nvidia", "chips"}, CategoryTech},
		{[]string{"weather", "storm"}, CategoryGeneral},
	}

	for _, tt := range tests {
		if got := Categorize(tt.keywords); got != tt.want {
			t.Errorf("Categorize(%v) = %s, want %s", tt.keywords, got, tt.want)
		}
	}
}

func TestVelocityBlend(t *testing.T) {
	s := NewSource("", "", "business", zerolog.Nop())
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	// Fresh tier-1 article with 5 keywords:
	// 0.4*100 + 0.4*90 + 0.2*50 = 86
	got := s.velocity(fixed, "Bloomberg", 5)
	if got != 86 {
		t.Errorf("velocity = %d, want 86", got)
	}

	// A day-old article from an unknown outlet loses all recency:
	// 0.4*0 + 0.4*50 + 0.2*100 = 40
	got = s.velocity(fixed.Add(-25*time.Hour), "Some Blog", 12)
	if got != 40 {
		t.Errorf("velocity = %d, want 40", got)
	}
}

func TestFetchTrendingFallsBackToDemo(t *testing.T) {
	s := NewSource("", "", "business", zerolog.Nop())

	events := s.FetchTrending(context.Background(), 3)

	if len(events) != 3 {
		t.Fatalf("expected 3 demo events, got %d", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Velocity > events[i-1].Velocity {
			t.Errorf("events not sorted by velocity: %d before %d", events[i-1].Velocity, events[i].Velocity)
		}
	}
	if events[0].Source != "demo" {
		t.Errorf("expected demo source, got %s", events[0].Source)
	}
}

func TestFetchTrendingFeedFailureFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewSource("test-key", srv.URL, "business", zerolog.Nop())

	events := s.FetchTrending(context.Background(), 5)

	if len(events) == 0 {
		t.Fatal("feed failure must fall back to demo events, got none")
	}
	if events[0].Source != "demo" {
		t.Errorf("expected demo fallback, got source %s", events[0].Source)
	}
}

func TestFetchTrendingParsesFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{
					"source": {"name": "Reuters"},
					"title": "Bitcoin rallies on ETF approval",
					"description": "Cryptocurrency markets surge after regulators approve spot ETFs",
					"url": "https://example.com/a",
					"publishedAt": "2026-03-01T11:00:00Z"
				}
			]
		}`))
	}))
	defer srv.Close()

	s := NewSource("test-key", srv.URL, "business", zerolog.Nop())
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	events := s.FetchTrending(context.Background(), 5)

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Source != "newsapi" {
		t.Errorf("expected newsapi source, got %s", ev.Source)
	}
	if ev.Category != CategoryCrypto {
		t.Errorf("expected crypto category, got %s", ev.Category)
	}
	if ev.Velocity <= 0 || ev.Velocity > 100 {
		t.Errorf("velocity out of range: %d", ev.Velocity)
	}
}
