// Package analysis produces LLM-backed impact assessments for news events
// and movement predictions for individual markets.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"prediction-radar/internal/ai/llm"

	"github.com/rs/zerolog"
)

// Sentiment values for news impact
const (
	SentimentBullish = "bullish"
	SentimentBearish = "bearish"
	SentimentNeutral = "neutral"
)

// NewsImpact is the structured assessment of one news event
type NewsImpact struct {
	Sentiment       string   `json:"sentiment"`
	Confidence      int      `json:"confidence"`
	Reasoning       string   `json:"reasoning"`
	MarketImpact    string   `json:"marketImpact"`
	SuggestedAction string   `json:"suggestedAction"`
	KeyFactors      []string `json:"keyFactors"`
	RiskLevel       string   `json:"riskLevel"`
}

// MarketPrediction is a directional forecast for a single market
type MarketPrediction struct {
	Direction  string `json:"direction"`
	Magnitude  string `json:"magnitude"`
	Timeframe  string `json:"timeframe"`
	EntryPoint string `json:"entryPoint"`
	ExitPoint  string `json:"exitPoint"`
	StopLoss   string `json:"stopLoss"`
}

// RelatedMarket gives the analyst prompt context about matched markets
type RelatedMarket struct {
	Question    string
	Venue       string
	Probability float64
}

const analysisSystemPrompt = "You are a prediction market analyst. Always respond with valid JSON only, no markdown formatting."

const analysisPromptTemplate = `You are an expert market analyst specializing in prediction markets and event-driven trading.

Analyze this news event and predict its impact on related prediction markets:

**News**: %s
**Details**: %s%s

Provide a comprehensive analysis in the following JSON format:
{
  "sentiment": "bullish" | "bearish" | "neutral",
  "confidence": <number 0-100>,
  "reasoning": "<2-3 sentence explanation of why this news matters>",
  "marketImpact": "<specific prediction of how markets will react>",
  "suggestedAction": "<actionable trading advice>",
  "keyFactors": ["<factor 1>", "<factor 2>", "<factor 3>"],
  "riskLevel": "low" | "medium" | "high"
}

Focus on:
1. How this news changes market probabilities
2. Which direction prices are likely to move
3. Timing considerations (immediate vs delayed impact)
4. Risk factors that could invalidate the thesis`

const predictionSystemPrompt = "You are a prediction market trader. Always respond with valid JSON only."

const predictionPromptTemplate = `You are a prediction market trader analyzing a specific market.

**Market**: %s
**Current Probability**: %.1f%%
**News Context**: %s

Based on this information, predict how the market will move and provide trading recommendations in JSON format:
{
  "direction": "up" | "down" | "sideways",
  "magnitude": "small" | "medium" | "large",
  "timeframe": "<when the move is likely to happen>",
  "entryPoint": "<suggested probability to enter>",
  "exitPoint": "<suggested probability to exit>",
  "stopLoss": "<suggested stop loss level>"
}

Consider:
1. Current market pricing vs news impact
2. Time decay and resolution date
3. Market liquidity and spread
4. Potential catalysts or counter-events`

// Analyzer runs impact analysis through an LLM client. A nil client puts
// the analyzer into fallback mode where every event reads as neutral.
type Analyzer struct {
	client *llm.Client
	logger zerolog.Logger
}

func NewAnalyzer(client *llm.Client, logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		client: client,
		logger: logger.With().Str("component", "analysis").Logger(),
	}
}

// Available reports whether LLM-backed analysis is configured
func (a *Analyzer) Available() bool {
	return a.client != nil && a.client.IsConfigured()
}

// AnalyzeNewsImpact assesses how a news event affects its related markets.
// Without a configured LLM it returns a deterministic neutral assessment
// rather than an error.
func (a *Analyzer) AnalyzeNewsImpact(ctx context.Context, title, description string, related []RelatedMarket) (*NewsImpact, error) {
	if !a.Available() {
		a.logger.Debug().Str("event", title).Msg("llm not configured, returning neutral impact")
		return neutralImpact(), nil
	}

	prompt := fmt.Sprintf(analysisPromptTemplate, title, description, marketsContext(related))

	var impact NewsImpact
	if err := a.client.CompleteJSON(ctx, analysisSystemPrompt, prompt, &impact); err != nil {
		return nil, fmt.Errorf("news impact analysis for %q: %w", title, err)
	}

	if impact.Confidence < 0 {
		impact.Confidence = 0
	}
	if impact.Confidence > 100 {
		impact.Confidence = 100
	}
	return &impact, nil
}

// PredictMovement forecasts one market's reaction to the given news context
func (a *Analyzer) PredictMovement(ctx context.Context, marketQuestion string, currentProbability float64, newsContext string) (*MarketPrediction, error) {
	if !a.Available() {
		return nil, fmt.Errorf("market prediction requires a configured llm provider")
	}

	prompt := fmt.Sprintf(predictionPromptTemplate, marketQuestion, currentProbability*100, newsContext)

	var prediction MarketPrediction
	if err := a.client.CompleteJSON(ctx, predictionSystemPrompt, prompt, &prediction); err != nil {
		return nil, fmt.Errorf("movement prediction for %q: %w", marketQuestion, err)
	}
	return &prediction, nil
}

func marketsContext(related []RelatedMarket) string {
	if len(related) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nRelated prediction markets:\n")
	for i, m := range related {
		fmt.Fprintf(&b, "%d. [%s] %s", i+1, m.Venue, m.Question)
		if m.Probability > 0 {
			fmt.Fprintf(&b, " (Current: %.1f%%)", m.Probability*100)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func neutralImpact() *NewsImpact {
	return &NewsImpact{
		Sentiment:       SentimentNeutral,
		Confidence:      0,
		Reasoning:       "AI analysis is not configured, no assessment was performed.",
		MarketImpact:    "unknown",
		SuggestedAction: "monitor",
		KeyFactors:      []string{},
		RiskLevel:       "medium",
	}
}
