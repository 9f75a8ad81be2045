// Command warm-cache pre-computes market matches for currently trending
// high-velocity events and exits. Intended to run on a schedule (e.g. every
// 10 minutes) next to the main server when both share a Redis store.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"prediction-radar/config"
	"prediction-radar/internal/ai/llm"
	"prediction-radar/internal/markets"
	"prediction-radar/internal/matchcache"
	"prediction-radar/internal/matcher"
	"prediction-radar/internal/news"
	"prediction-radar/internal/venues"
	"prediction-radar/internal/warming"

	"github.com/rs/zerolog"
)

func main() {
	threshold := flag.Int("threshold", 0, "velocity threshold (0 uses the configured default)")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall job timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if !cfg.RedisConfig.Enabled {
		logger.Warn().Msg("redis is disabled; warming an in-process cache has no effect after exit")
	}

	var adapters []markets.Adapter
	if cfg.VenuesConfig.Kalshi.Enabled {
		adapters = append(adapters, markets.NewKalshiAdapter(venues.NewKalshiClient(cfg.VenuesConfig.Kalshi.BaseURL)))
	}
	if cfg.VenuesConfig.Polymarket.Enabled {
		adapters = append(adapters, markets.NewPolymarketAdapter(venues.NewPolymarketClient(cfg.VenuesConfig.Polymarket.BaseURL)))
	}
	if cfg.VenuesConfig.Manifold.Enabled {
		adapters = append(adapters, markets.NewManifoldAdapter(venues.NewManifoldClient(cfg.VenuesConfig.Manifold.BaseURL)))
	}
	aggregator := markets.NewAggregator(adapters, cfg.VenuesConfig.FetchTimeout, logger)

	newsSource := news.NewSource(cfg.NewsConfig.APIKey, cfg.NewsConfig.BaseURL, cfg.NewsConfig.Category, logger)

	var scorer matcher.RelevanceScorer
	if cfg.AIConfig.Enabled {
		client := llm.NewClient(&llm.ClientConfig{
			Provider:  llm.Provider(cfg.AIConfig.LLMProvider),
			APIKey:    llmKeyFromConfig(cfg.AIConfig),
			Model:     cfg.AIConfig.LLMModel,
			MaxTokens: 1024,
			Timeout:   30 * time.Second,
		})
		if s := matcher.NewLLMScorer(client); s != nil {
			scorer = s
		}
	}
	eventMatcher := matcher.NewMatcher(scorer, cfg.MatcherConfig.RelevanceCutoff, cfg.MatcherConfig.Stage2Limit, logger)

	var store matchcache.Store
	if cfg.RedisConfig.Enabled {
		store = matchcache.NewRedisStore(cfg.RedisConfig)
	} else {
		store = matchcache.NewMemoryStore()
	}
	cache := matchcache.NewCache(store, cfg.CacheConfig.TTL, logger)

	warmer := warming.NewWarmer(aggregator, eventMatcher, cache, warming.Config{
		MatchLimit: cfg.WarmingConfig.MatchLimit,
		EventDelay: cfg.WarmingConfig.EventDelay,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	velocityThreshold := *threshold
	if velocityThreshold <= 0 {
		velocityThreshold = cfg.WarmingConfig.VelocityThreshold
	}

	events := newsSource.FetchTrending(ctx, 20)
	result := warmer.WarmHighVelocity(ctx, events, velocityThreshold)

	logger.Info().
		Int("warmed", result.Warmed).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("warming job finished")
}

func llmKeyFromConfig(cfg config.AIConfig) string {
	switch cfg.LLMProvider {
	case "openai":
		return cfg.OpenAIAPIKey
	case "deepseek":
		return cfg.DeepSeekAPIKey
	default:
		return cfg.ClaudeAPIKey
	}
}
