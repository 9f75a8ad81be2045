package venues

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ManifoldClient fetches market data from the Manifold Markets public API.
type ManifoldClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewManifoldClient(baseURL string) *ManifoldClient {
	return &ManifoldClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// ManifoldMarket represents a market as returned by the Manifold API.
// Timestamps are unix milliseconds.
type ManifoldMarket struct {
	ID              string  `json:"id"`
	Question        string  `json:"question"`
	Description     string  `json:"description"`
	CreatorUsername string  `json:"creatorUsername"`
	CreatedTime     int64   `json:"createdTime"`
	CloseTime       int64   `json:"closeTime"`
	IsResolved      bool    `json:"isResolved"`
	Probability     float64 `json:"probability"`
	Volume          float64 `json:"volume"`
	Volume24Hours   float64 `json:"volume24Hours"`
	TotalLiquidity  float64 `json:"totalLiquidity"`
	OutcomeType     string  `json:"outcomeType"`
	URL             string  `json:"url"`
}

// FetchMarkets fetches recently active markets from Manifold
func (c *ManifoldClient) FetchMarkets(ctx context.Context, limit int) ([]ManifoldMarket, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("sort", "last-bet-time")

	endpoint := fmt.Sprintf("%s/markets?%s", c.baseURL, params.Encode())

	var markets []ManifoldMarket
	if err := c.getJSON(ctx, endpoint, &markets); err != nil {
		return nil, fmt.Errorf("error fetching manifold markets: %w", err)
	}

	return markets, nil
}

// SearchMarkets searches markets via Manifold's search endpoint
func (c *ManifoldClient) SearchMarkets(ctx context.Context, query string, limit int) ([]ManifoldMarket, error) {
	params := url.Values{}
	params.Set("term", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("sort", "liquidity")

	endpoint := fmt.Sprintf("%s/search-markets?%s", c.baseURL, params.Encode())

	var markets []ManifoldMarket
	if err := c.getJSON(ctx, endpoint, &markets); err != nil {
		return nil, fmt.Errorf("error searching manifold markets: %w", err)
	}

	return markets, nil
}

// GetMarket fetches a single market by ID or slug. Returns nil when the
// market is unknown.
func (c *ManifoldClient) GetMarket(ctx context.Context, marketID string) (*ManifoldMarket, error) {
	endpoint := fmt.Sprintf("%s/market/%s", c.baseURL, url.PathEscape(marketID))

	var market ManifoldMarket
	if err := c.getJSON(ctx, endpoint, &market); err != nil {
		return nil, nil
	}

	return &market, nil
}

func (c *ManifoldClient) getJSON(ctx context.Context, endpoint string, dest interface{}) error {
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
