// Package opportunity combines relevance, news velocity, market liquidity,
// close-time urgency and short-term price momentum into a single 0-100
// opportunity score.
package opportunity

import (
	"math"
	"strings"
	"time"
)

// Weights applied to each normalized component, in percent
const (
	weightRelevance = 30
	weightVelocity  = 25
	weightLiquidity = 20
	weightUrgency   = 15
	weightMomentum  = 10
)

// Breakdown holds the per-component scores after normalization, each 0-100
type Breakdown struct {
	Relevance int `json:"relevance"`
	Velocity  int `json:"velocity"`
	Liquidity int `json:"liquidity"`
	Urgency   int `json:"urgency"`
	Momentum  int `json:"momentum"`
}

// Score is the combined opportunity score for one event/market pairing
type Score struct {
	TotalScore int       `json:"totalScore"`
	Breakdown  Breakdown `json:"breakdown"`
	Reason     string    `json:"reason"`
}

// Input carries the raw signals for scoring. Liquidity is in USD,
// Momentum1h is the probability change over the last hour (-1 to 1).
// CloseTime may be nil when the venue does not report one.
type Input struct {
	Relevance  int
	Velocity   int
	Liquidity  float64
	CloseTime  *time.Time
	Momentum1h float64
}

// ScoreOpportunity computes the weighted opportunity score as of now
func ScoreOpportunity(in Input) Score {
	return scoreAt(in, time.Now())
}

func scoreAt(in Input, now time.Time) Score {
	rel := clamp(float64(in.Relevance), 0, 100)
	vel := clamp(float64(in.Velocity), 0, 100)
	liq := normalizeLiquidity(in.Liquidity)
	urg := urgencyScore(in.CloseTime, now)
	mom := normalizeMomentum(in.Momentum1h)

	total := (rel*weightRelevance +
		vel*weightVelocity +
		liq*weightLiquidity +
		urg*weightUrgency +
		mom*weightMomentum) / 100

	breakdown := Breakdown{
		Relevance: int(math.Round(rel)),
		Velocity:  int(math.Round(vel)),
		Liquidity: int(math.Round(liq)),
		Urgency:   int(math.Round(urg)),
		Momentum:  int(math.Round(mom)),
	}

	return Score{
		TotalScore: int(math.Round(total)),
		Breakdown:  breakdown,
		Reason:     composeReason(breakdown),
	}
}

// normalizeLiquidity maps USD depth onto 0-100 with a $1000 saturation point
func normalizeLiquidity(liquidity float64) float64 {
	if liquidity < 0 {
		liquidity = 0
	}
	return clamp(liquidity/1000*100, 0, 100)
}

// urgencyScore buckets time-until-close. Closed or unknown close times
// score zero so they never dominate the total.
func urgencyScore(closeTime *time.Time, now time.Time) float64 {
	if closeTime == nil {
		return 0
	}
	hours := closeTime.Sub(now).Hours()
	switch {
	case hours <= 0:
		return 0
	case hours < 6:
		return 90
	case hours < 24:
		return 70
	case hours < 72:
		return 50
	case hours < 168:
		return 30
	default:
		return 10
	}
}

// normalizeMomentum scores absolute probability change; 0.10 and above
// saturates at 100. Direction is reported separately to the UI.
func normalizeMomentum(delta float64) float64 {
	return clamp(math.Abs(delta)*1000, 0, 100)
}

// composeReason lists the strongest contributors in a fixed order
func composeReason(b Breakdown) string {
	var reasons []string
	if b.Relevance >= 70 {
		reasons = append(reasons, "high relevance")
	}
	if b.Velocity >= 70 {
		reasons = append(reasons, "breaking news")
	}
	if b.Liquidity >= 70 {
		reasons = append(reasons, "strong liquidity")
	}
	if b.Urgency >= 70 {
		reasons = append(reasons, "closing soon")
	}
	if b.Momentum >= 70 {
		reasons = append(reasons, "strong momentum")
	}
	if len(reasons) == 0 {
		return "best current opportunity"
	}
	return strings.Join(reasons, ", ")
}

// VelocityChip returns the display label for a velocity score
func VelocityChip(velocity int) string {
	switch {
	case velocity >= 80:
		return "Breaking"
	case velocity >= 60:
		return "Trending"
	case velocity >= 40:
		return "Rising"
	default:
		return "Emerging"
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
