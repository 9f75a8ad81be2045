package news

import (
	"strings"
	"time"
)

// Category buckets for news events
const (
	CategoryCrypto   = "crypto"
	CategoryPolitics = "politics"
	CategoryEconomy  = "economy"
	CategoryTech     = "tech"
	CategoryGeneral  = "general"
)

// NewsEvent is a detected trending topic. Events are immutable once built
// and are never persisted.
type NewsEvent struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Keywords    []string  `json:"keywords"` // Lowercase, de-duplicated
	Source      string    `json:"source"`
	Velocity    int       `json:"velocity"` // 0-100, rate of spread
	Category    string    `json:"category"`
	PublishedAt time.Time `json:"publishedAt"`
	URL         string    `json:"url,omitempty"`
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"this": true, "that": true, "have": true, "been": true, "will": true,
	"their": true, "what": true, "which": true, "when": true, "where": true,
}

// ExtractKeywords pulls up to 10 unique keywords from text: lowercased,
// punctuation stripped, stop words and short tokens removed.
func ExtractKeywords(text string) []string {
	cleaned := strings.NewReplacer(",", "", ".", "", "\n", " ").Replace(strings.ToLower(text))

	seen := make(map[string]bool)
	var keywords []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 3 || stopWords[word] || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
		if len(keywords) == 10 {
			break
		}
	}
	return keywords
}

var (
	cryptoKeywords = map[string]bool{
		"bitcoin": true, "ethereum": true, "crypto": true, "cryptocurrency": true,
		"blockchain": true, "defi": true, "nft": true, "solana": true, "cardano": true,
	}
	politicsKeywords = map[string]bool{
		"election": true, "president": true, "congress": true, "senate": true,
		"government": true, "policy": true, "vote": true, "political": true,
		"campaign": true, "democrat": true, "republican": true,
	}
	economyKeywords = map[string]bool{
		"economy": true, "federal": true, "reserve": true, "inflation": true,
		"rates": true, "jobs": true, "market": true, "stock": true, "trading": true,
		"investor": true, "wall": true, "street": true, "recession": true,
	}
	techKeywords = map[string]bool{
		"tech": true, "startup": true, "silicon": true, "valley": true,
		"software": true, "google": true, "apple": true, "microsoft": true,
		"amazon": true, "meta": true, "nvidia": true, "openai": true, "chatgpt": true,
	}
)

// Categorize maps keywords to a category. The check order is a product
// policy: crypto beats politics beats economy beats tech, first match wins.
func Categorize(keywords []string) string {
	for _, kw := range keywords {
		if cryptoKeywords[kw] {
			return CategoryCrypto
		}
	}
	for _, kw := range keywords {
		if politicsKeywords[kw] {
			return CategoryPolitics
		}
	}
	for _, kw := range keywords {
		if economyKeywords[kw] {
			return CategoryEconomy
		}
	}
	for _, kw := range keywords {
		if techKeywords[kw] {
			return CategoryTech
		}
	}
	return CategoryGeneral
}

var (
	tier1Sources = []string{"bloomberg", "reuters", "wsj", "financial times", "cnbc"}
	tier2Sources = []string{"techcrunch", "cnn", "bbc", "nyt", "washington post"}
	tier3Sources = []string{"forbes", "business insider", "yahoo", "marketwatch"}
)

// sourceAuthority scores an outlet by tier: 90/75/60, unknown outlets get 50
func sourceAuthority(sourceName string) float64 {
	lower := strings.ToLower(sourceName)
	for _, s := range tier1Sources {
		if strings.Contains(lower, s) {
			return 90
		}
	}
	for _, s := range tier2Sources {
		if strings.Contains(lower, s) {
			return 75
		}
	}
	for _, s := range tier3Sources {
		if strings.Contains(lower, s) {
			return 60
		}
	}
	return 50
}
