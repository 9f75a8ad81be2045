package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prediction-radar/config"
	"prediction-radar/internal/ai/analysis"
	"prediction-radar/internal/ai/llm"
	"prediction-radar/internal/api"
	"prediction-radar/internal/database"
	"prediction-radar/internal/markets"
	"prediction-radar/internal/matchcache"
	"prediction-radar/internal/matcher"
	"prediction-radar/internal/news"
	"prediction-radar/internal/secrets"
	"prediction-radar/internal/service"
	"prediction-radar/internal/ticker"
	"prediction-radar/internal/venues"
	"prediction-radar/internal/warming"

	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := newLogger(cfg.LoggingConfig)
	logger.Info().Msg("starting prediction radar")

	ctx := context.Background()

	// Secrets: Vault when enabled, otherwise pass config values through
	secretsClient, err := secrets.NewClient(cfg.VaultConfig, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize secrets client")
	}
	newsAPIKey := secretsClient.ResolveOrDefault(ctx, secrets.KeyNewsAPI, cfg.NewsConfig.APIKey)
	llmAPIKey := secretsClient.ResolveOrDefault(ctx, secrets.KeyLLM, llmKeyFromConfig(cfg.AIConfig))

	// Venue adapters and aggregator
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
	if len(adapters) == 0 {
		logger.Fatal().Msg("no venues enabled")
	}
	aggregator := markets.NewAggregator(adapters, cfg.VenuesConfig.FetchTimeout, logger)

	// News source, falls back to demo events without a feed key
	newsSource := news.NewSource(newsAPIKey, cfg.NewsConfig.BaseURL, cfg.NewsConfig.Category, logger)
	if newsAPIKey == "" {
		logger.Warn().Msg("no news feed key configured, serving demo events")
	}

	// LLM client for relevance scoring and impact analysis
	var llmClient *llm.Client
	if cfg.AIConfig.Enabled {
		llmClient = llm.NewClient(&llm.ClientConfig{
			Provider:    llm.Provider(cfg.AIConfig.LLMProvider),
			APIKey:      llmAPIKey,
			Model:       cfg.AIConfig.LLMModel,
			MaxTokens:   1024,
			Temperature: 0.3,
			Timeout:     30 * time.Second,
		})
	}
	var scorer matcher.RelevanceScorer
	if s := matcher.NewLLMScorer(llmClient); s != nil {
		scorer = s
	} else {
		logger.Warn().Msg("llm not configured, relevance falls back to keyword overlap")
	}
	eventMatcher := matcher.NewMatcher(scorer, cfg.MatcherConfig.RelevanceCutoff, cfg.MatcherConfig.Stage2Limit, logger)
	analyzer := analysis.NewAnalyzer(llmClient, logger)

	// Match cache: Redis when enabled, in-process map otherwise
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

	// Optional price ticker relay
	var hub *ticker.Hub
	var tracker *ticker.Tracker
	if cfg.TickerConfig.Enabled {
		hub = ticker.NewHub(logger)
		go hub.Run()
		tracker = ticker.NewTracker(aggregator, hub, cfg.TickerConfig.PollInterval, cfg.TickerConfig.PoolSize, logger)
		tracker.Start(ctx)
	}

	// Optional position journal
	var db *database.DB
	if cfg.DBConfig.Enabled {
		db, err = database.NewDB(cfg.DBConfig.URL, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		if err := db.RunMigrations(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	opts := service.Options{
		News:         newsSource,
		Markets:      aggregator,
		Matcher:      eventMatcher,
		Cache:        cache,
		Warmer:       warmer,
		MatchTimeout: time.Duration(cfg.MatcherConfig.MatchTimeout) * time.Second,
	}
	if tracker != nil {
		opts.Momentum = tracker
	}
	svc := service.New(opts, logger)

	server := api.NewServer(cfg.ServerConfig, svc, aggregator, analyzer, db, hub, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()
	logger.Info().
		Str("host", cfg.ServerConfig.Host).
		Int("port", cfg.ServerConfig.Port).
		Msg("api available")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.ServerConfig.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}
	if tracker != nil {
		tracker.Stop()
	}
	if db != nil {
		db.Close()
	}
	logger.Info().Msg("shutdown complete")
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

// llmKeyFromConfig picks the API key matching the configured provider
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
