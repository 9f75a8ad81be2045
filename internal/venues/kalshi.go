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

// KalshiClient fetches market data from Kalshi's public trade API.
// Market data endpoints require no authentication.
type KalshiClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewKalshiClient(baseURL string) *KalshiClient {
	return &KalshiClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// KalshiMarket represents a market as returned by the Kalshi API
type KalshiMarket struct {
	Ticker    string  `json:"ticker"`
	Title     string  `json:"title"`
	Subtitle  string  `json:"subtitle"`
	Category  string  `json:"category"`
	Status    string  `json:"status"`
	CloseTime string  `json:"close_time"`
	YesBid    float64 `json:"yes_bid"`
	YesAsk    float64 `json:"yes_ask"`
	NoBid     float64 `json:"no_bid"`
	NoAsk     float64 `json:"no_ask"`
	Volume    float64 `json:"volume"`
	Liquidity float64 `json:"liquidity"`
}

type kalshiMarketsResponse struct {
	Markets []KalshiMarket `json:"markets"`
	Cursor  string         `json:"cursor"`
}

type kalshiMarketResponse struct {
	Market *KalshiMarket `json:"market"`
}

// FetchMarkets fetches open markets from Kalshi
func (c *KalshiClient) FetchMarkets(ctx context.Context, limit int) ([]KalshiMarket, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("status", "open")

	endpoint := fmt.Sprintf("%s/markets?%s", c.baseURL, params.Encode())

	var resp kalshiMarketsResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("error fetching kalshi markets: %w", err)
	}

	return resp.Markets, nil
}

// SearchMarkets filters markets by query. The public API has no search
// endpoint, so a larger page is fetched and filtered client-side.
func (c *KalshiClient) SearchMarkets(ctx context.Context, query string, limit int) ([]KalshiMarket, error) {
	markets, err := c.FetchMarkets(ctx, 200)
	if err != nil {
		return nil, err
	}

	lowerQuery := strings.ToLower(query)
	var filtered []KalshiMarket
	for _, m := range markets {
		if strings.Contains(strings.ToLower(m.Title), lowerQuery) ||
			strings.Contains(strings.ToLower(m.Subtitle), lowerQuery) ||
			strings.Contains(strings.ToLower(m.Ticker), lowerQuery) {
			filtered = append(filtered, m)
		}
		if len(filtered) >= limit {
			break
		}
	}

	return filtered, nil
}

// GetMarket fetches a single market by ticker. Returns nil when the
// ticker is unknown.
func (c *KalshiClient) GetMarket(ctx context.Context, ticker string) (*KalshiMarket, error) {
	endpoint := fmt.Sprintf("%s/markets/%s", c.baseURL, url.PathEscape(ticker))

	var resp kalshiMarketResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, nil
	}

	return resp.Market, nil
}

func (c *KalshiClient) getJSON(ctx context.Context, endpoint string, dest interface{}) error {
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
