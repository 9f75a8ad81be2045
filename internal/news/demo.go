package news

import "time"

// demoEvents returns the static fallback set served when no live feed is
// configured or the feed is down. Published timestamps are anchored to the
// current clock so recency looks sane in the UI.
func (s *Source) demoEvents(limit int) []NewsEvent {
	now := s.now()

	events := []NewsEvent{
		{
			Title:       "Federal Reserve Signals Rate Cut Potential",
			Description: "Fed Chair hints at possible rate cuts in Q2 amid cooling inflation",
			Keywords:    []string{"federal", "reserve", "interest", "rates", "inflation", "economy"},
			Source:      "demo",
			Velocity:    85,
			Category:    CategoryEconomy,
			PublishedAt: now.Add(-15 * time.Minute),
			URL:         "https://example.com/fed-rates",
		},
		{
			Title:       "Bitcoin Surges Past $98,000 on ETF Inflows",
			Description: "BTC hits new all-time high as institutional demand continues",
			Keywords:    []string{"bitcoin", "cryptocurrency", "price", "surge"},
			Source:      "demo",
			Velocity:    92,
			Category:    CategoryCrypto,
			PublishedAt: now.Add(-8 * time.Minute),
			URL:         "https://example.com/btc-surge",
		},
		{
			Title:       "Major Tech Layoffs at Leading AI Company",
			Description: "AI startup announces 20% workforce reduction amid restructuring",
			Keywords:    []string{"tech", "layoffs", "jobs", "startup", "economy"},
			Source:      "demo",
			Velocity:    73,
			Category:    CategoryTech,
			PublishedAt: now.Add(-22 * time.Minute),
			URL:         "https://example.com/tech-layoffs",
		},
		{
			Title:       "Presidential Election Poll Shows Tight Race",
			Description: "Latest polling data indicates neck-and-neck competition in key swing states",
			Keywords:    []string{"election", "president", "polling", "politics"},
			Source:      "demo",
			Velocity:    68,
			Category:    CategoryPolitics,
			PublishedAt: now.Add(-30 * time.Minute),
			URL:         "https://example.com/election-poll",
		},
		{
			Title:       "Ethereum Upgrade Completes Successfully",
			Description: "Network transition brings improved scalability and reduced gas fees",
			Keywords:    []string{"ethereum", "crypto", "blockchain", "upgrade"},
			Source:      "demo",
			Velocity:    79,
			Category:    CategoryCrypto,
			PublishedAt: now.Add(-12 * time.Minute),
			URL:         "https://example.com/eth-upgrade",
		},
	}

	sortByVelocity(events)
	if len(events) > limit {
		events = events[:limit]
	}
	return events
}
