package matcher

import (
	"context"
	"fmt"
	"strings"

	"prediction-radar/internal/ai/llm"
)

const relevanceSystemPrompt = "You are a prediction market analyst. Always respond with valid JSON only, no markdown formatting."

const relevancePromptTemplate = `Analyze if this prediction market is relevant to the given news event.

NEWS EVENT: "%s"
EVENT KEYWORDS: %s

PREDICTION MARKET: "%s"
MARKET DESCRIPTION: "%s"

Respond with ONLY a JSON object:
{
  "relevance": 0-100,
  "reasoning": "brief explanation"
}

Scoring guide:
- 100: Directly about the same topic/outcome
- 80: Closely related, likely to be affected
- 60: Moderately related
- 40: Tangentially related
- 20: Weak connection
- 0: Not related

Example:
Event: "Fed raises interest rates"
Market: "Will inflation drop below 2%% in 2024?"
Response: {"relevance": 90, "reasoning": "Fed rate hikes directly target inflation"}`

// LLMScorer scores market relevance through the configured LLM provider
type LLMScorer struct {
	client *llm.Client
}

// NewLLMScorer creates an LLM-backed relevance scorer. Returns nil when the
// client has no API key so callers fall back to keyword scoring.
func NewLLMScorer(client *llm.Client) *LLMScorer {
	if client == nil || !client.IsConfigured() {
		return nil
	}
	return &LLMScorer{client: client}
}

type relevanceJudgment struct {
	Relevance float64 `json:"relevance"`
	Reasoning string  `json:"reasoning"`
}

// Score asks the LLM for a 0-100 relevance judgment of a market against an
// event. The market description is truncated to bound prompt size.
func (s *LLMScorer) Score(ctx context.Context, eventTitle string, eventKeywords []string, marketQuestion, marketDescription string) (int, string, error) {
	if len(eventKeywords) > 10 {
		eventKeywords = eventKeywords[:10]
	}
	if len(marketDescription) > 200 {
		marketDescription = marketDescription[:200]
	}

	prompt := fmt.Sprintf(relevancePromptTemplate,
		eventTitle,
		strings.Join(eventKeywords, ", "),
		marketQuestion,
		marketDescription,
	)

	var judgment relevanceJudgment
	if err := s.client.CompleteJSON(ctx, relevanceSystemPrompt, prompt, &judgment); err != nil {
		return 0, "", fmt.Errorf("relevance judgment failed: %w", err)
	}

	return int(judgment.Relevance), judgment.Reasoning, nil
}
