package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Source supplies trending news events. With a NewsAPI key configured it
// pulls live top headlines; otherwise (or on any feed failure) it falls back
// to a built-in demo set. FetchTrending never returns an error.
type Source struct {
	apiKey     string
	baseURL    string
	category   string
	httpClient *http.Client
	logger     zerolog.Logger
	now        func() time.Time
}

// NewSource creates a news source. apiKey may be empty, in which case only
// the demo fallback is served.
func NewSource(apiKey, baseURL, category string, logger zerolog.Logger) *Source {
	return &Source{
		apiKey:     apiKey,
		baseURL:    baseURL,
		category:   category,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger.With().Str("component", "news").Logger(),
		now:        time.Now,
	}
}

// FetchTrending returns up to limit events sorted by velocity descending
func (s *Source) FetchTrending(ctx context.Context, limit int) []NewsEvent {
	if s.apiKey != "" {
		events, err := s.fetchFromNewsAPI(ctx, limit)
		if err != nil {
			s.logger.Warn().Err(err).Msg("news feed fetch failed, using demo data")
		} else if len(events) > 0 {
			return events
		}
	}

	return s.demoEvents(limit)
}

// newsAPIResponse mirrors the NewsAPI top-headlines payload
type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

func (s *Source) fetchFromNewsAPI(ctx context.Context, limit int) ([]NewsEvent, error) {
	params := url.Values{}
	params.Set("apiKey", s.apiKey)
	params.Set("language", "en")
	params.Set("pageSize", strconv.Itoa(limit))
	params.Set("category", s.category)

	endpoint := fmt.Sprintf("%s/top-headlines?%s", s.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsapi error: %d", resp.StatusCode)
	}

	var data newsAPIResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}
	if data.Status != "ok" {
		return nil, fmt.Errorf("newsapi returned: %s", data.Message)
	}

	events := make([]NewsEvent, 0, len(data.Articles))
	for _, article := range data.Articles {
		keywords := ExtractKeywords(article.Title + " " + article.Description)

		publishedAt, err := time.Parse(time.RFC3339, article.PublishedAt)
		if err != nil {
			publishedAt = s.now()
		}

		events = append(events, NewsEvent{
			Title:       article.Title,
			Description: article.Description,
			Keywords:    keywords,
			Source:      "newsapi",
			Velocity:    s.velocity(publishedAt, article.Source.Name, len(keywords)),
			Category:    Categorize(keywords),
			PublishedAt: publishedAt,
			URL:         article.URL,
		})
	}

	sortByVelocity(events)
	return events, nil
}

// velocity blends recency, source authority and keyword density into a
// 0-100 rate-of-spread score.
func (s *Source) velocity(publishedAt time.Time, sourceName string, keywordCount int) int {
	hoursSince := s.now().Sub(publishedAt).Hours()

	// Recency decays linearly to zero over a 24-hour window
	recency := 100 - (hoursSince/24)*100
	if recency < 0 {
		recency = 0
	}
	if recency > 100 {
		recency = 100
	}

	authority := sourceAuthority(sourceName)

	density := float64(keywordCount) * 10
	if density > 100 {
		density = 100
	}

	return int(math.Round(recency*0.4 + authority*0.4 + density*0.2))
}

func sortByVelocity(events []NewsEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Velocity > events[j].Velocity
	})
}
