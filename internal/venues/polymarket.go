package venues

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PolymarketClient fetches market data from Polymarket's public Gamma API.
type PolymarketClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewPolymarketClient(baseURL string) *PolymarketClient {
	return &PolymarketClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// PolymarketMarket represents a market as returned by the Gamma API.
// Volume and liquidity come back as decimal strings.
type PolymarketMarket struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Outcomes      []string `json:"outcomes"`
	OutcomePrices []string `json:"outcomePrices"`
	Volume        string   `json:"volume"`
	Liquidity     string   `json:"liquidity"`
	EndDate       string   `json:"endDate"`
	Closed        bool     `json:"closed"`
	Active        bool     `json:"active"`
}

// FetchMarkets fetches active markets from Polymarket
func (c *PolymarketClient) FetchMarkets(ctx context.Context, limit int) ([]PolymarketMarket, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("active", "true")
	params.Set("closed", "false")

	endpoint := fmt.Sprintf("%s/markets?%s", c.baseURL, params.Encode())

	var markets []PolymarketMarket
	if err := c.getJSON(ctx, endpoint, &markets); err != nil {
		return nil, fmt.Errorf("error fetching polymarket markets: %w", err)
	}

	return markets, nil
}

// SearchMarkets filters markets by query. The Gamma API has no search
// endpoint, so a larger page is fetched and filtered client-side.
func (c *PolymarketClient) SearchMarkets(ctx context.Context, query string, limit int) ([]PolymarketMarket, error) {
	markets, err := c.FetchMarkets(ctx, 200)
	if err != nil {
		return nil, err
	}

	lowerQuery := strings.ToLower(query)
	var filtered []PolymarketMarket
	for _, m := range markets {
		if strings.Contains(strings.ToLower(m.Question), lowerQuery) ||
			strings.Contains(strings.ToLower(m.Description), lowerQuery) {
			filtered = append(filtered, m)
		}
		if len(filtered) >= limit {
			break
		}
	}

	return filtered, nil
}

// GetMarket fetches a single market by ID. Returns nil when the ID is
// unknown.
func (c *PolymarketClient) GetMarket(ctx context.Context, marketID string) (*PolymarketMarket, error) {
	endpoint := fmt.Sprintf("%s/markets/%s", c.baseURL, url.PathEscape(marketID))

	var market PolymarketMarket
	if err := c.getJSON(ctx, endpoint, &market); err != nil {
		return nil, nil
	}

	return &market, nil
}

func (c *PolymarketClient) getJSON(ctx context.Context, endpoint string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error: %d - %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("error parsing response: %w", err)
	}

	return nil
}
