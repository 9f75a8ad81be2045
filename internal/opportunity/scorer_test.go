package opportunity

import (
	"testing"
	"time"
)

func TestScoreOpportunityWeighted(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	close := now.Add(3 * time.Hour)

	got := scoreAt(Input{
		Relevance:  80,
		Velocity:   90,
		Liquidity:  1500,
		CloseTime:  &close,
		Momentum1h: 0.05,
	}, now)

	// (80*30 + 90*25 + 100*20 + 90*15 + 50*10) / 100 = 85
	if got.TotalScore != 85 {
		t.Errorf("TotalScore = %d, want 85", got.TotalScore)
	}
	want := Breakdown{Relevance: 80, Velocity: 90, Liquidity: 100, Urgency: 90, Momentum: 50}
	if got.Breakdown != want {
		t.Errorf("Breakdown = %+v, want %+v", got.Breakdown, want)
	}
	if got.Reason != "high relevance, breaking news, strong liquidity, closing soon" {
		t.Errorf("Reason = %q", got.Reason)
	}
}

func TestScoreBounds(t *testing.T) {
	now := time.Now()
	soon := now.Add(time.Hour)

	max := scoreAt(Input{Relevance: 500, Velocity: 500, Liquidity: 1e9, CloseTime: &soon, Momentum1h: 5}, now)
	if max.TotalScore > 100 {
		t.Errorf("TotalScore = %d, exceeds 100", max.TotalScore)
	}

	min := scoreAt(Input{Relevance: -50, Velocity: -50, Liquidity: -100, Momentum1h: 0}, now)
	if min.TotalScore != 0 {
		t.Errorf("TotalScore = %d, want 0 for all-zero inputs", min.TotalScore)
	}
	if min.Reason != "best current opportunity" {
		t.Errorf("Reason = %q, want fallback phrase", min.Reason)
	}
}

func TestUrgencyBuckets(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	at := func(d time.Duration) *time.Time {
		ts := now.Add(d)
		return &ts
	}

	tests := []struct {
		name  string
		close *time.Time
		want  float64
	}{
		{"no close time", nil, 0},
		{"already closed", at(-time.Hour), 0},
		{"under 6h", at(3 * time.Hour), 90},
		{"under 24h", at(12 * time.Hour), 70},
		{"under 3d", at(48 * time.Hour), 50},
		{"under 7d", at(120 * time.Hour), 30},
		{"beyond 7d", at(300 * time.Hour), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := urgencyScore(tt.close, now); got != tt.want {
				t.Errorf("urgencyScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLiquidityNormalization(t *testing.T) {
	tests := []struct {
		usd  float64
		want float64
	}{
		{0, 0},
		{100, 10},
		{500, 50},
		{1000, 100},
		{2000, 100},
		{-500, 0},
	}
	for _, tt := range tests {
		if got := normalizeLiquidity(tt.usd); got != tt.want {
			t.Errorf("normalizeLiquidity(%v) = %v, want %v", tt.usd, got, tt.want)
		}
	}
}

func TestMomentumNormalization(t *testing.T) {
	if got := normalizeMomentum(0); got != 0 {
		t.Errorf("zero delta = %v, want 0", got)
	}
	if got := normalizeMomentum(0.05); got != 50 {
		t.Errorf("0.05 delta = %v, want 50", got)
	}
	if got := normalizeMomentum(-0.05); got != 50 {
		t.Errorf("negative delta must score by magnitude, got %v", got)
	}
	if got := normalizeMomentum(0.2); got != 100 {
		t.Errorf("0.2 delta = %v, want 100", got)
	}
}

func TestVelocityChip(t *testing.T) {
	tests := []struct {
		velocity int
		want     string
	}{
		{95, "Breaking"},
		{80, "Breaking"},
		{65, "Trending"},
		{45, "Rising"},
		{20, "Emerging"},
	}
	for _, tt := range tests {
		if got := VelocityChip(tt.velocity); got != tt.want {
			t.Errorf("VelocityChip(%d) = %q, want %q", tt.velocity, got, tt.want)
		}
	}
}
