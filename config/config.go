package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerConfig  ServerConfig  `json:"server"`
	VenuesConfig  VenuesConfig  `json:"venues"`
	NewsConfig    NewsConfig    `json:"news"`
	AIConfig      AIConfig      `json:"ai"`
	MatcherConfig MatcherConfig `json:"matcher"`
	CacheConfig   CacheConfig   `json:"cache"`
	WarmingConfig WarmingConfig `json:"warming"`
	TickerConfig  TickerConfig  `json:"ticker"`
	RedisConfig   RedisConfig   `json:"redis"`
	DBConfig      DBConfig      `json:"database"`
	VaultConfig   VaultConfig   `json:"vault"`
	LoggingConfig LoggingConfig `json:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int    `json:"port"`
	Host            string `json:"host"`
	AllowedOrigins  string `json:"allowed_origins"`
	ProductionMode  bool   `json:"production_mode"`
	ReadTimeout     int    `json:"read_timeout"`     // Seconds
	WriteTimeout    int    `json:"write_timeout"`    // Seconds
	ShutdownTimeout int    `json:"shutdown_timeout"` // Seconds
}

// VenuesConfig holds per-venue market source configuration
type VenuesConfig struct {
	Kalshi     VenueConfig `json:"kalshi"`
	Polymarket VenueConfig `json:"polymarket"`
	Manifold   VenueConfig `json:"manifold"`
	// Timeout applied to each venue call during aggregation
	FetchTimeout time.Duration `json:"fetch_timeout"`
}

type VenueConfig struct {
	Enabled bool   `json:"enabled"`
	BaseURL string `json:"base_url"`
}

// NewsConfig holds news feed configuration
type NewsConfig struct {
	APIKey   string `json:"api_key"`
	BaseURL  string `json:"base_url"`
	Category string `json:"category"` // NewsAPI top-headlines category
}

// AIConfig holds LLM configuration for relevance scoring and news analysis
type AIConfig struct {
	Enabled        bool   `json:"enabled"`
	LLMProvider    string `json:"llm_provider"` // "claude", "openai", or "deepseek"
	ClaudeAPIKey   string `json:"claude_api_key"`
	OpenAIAPIKey   string `json:"openai_api_key"`
	DeepSeekAPIKey string `json:"deepseek_api_key"`
	LLMModel       string `json:"llm_model"`
}

// MatcherConfig holds relevance matcher configuration
type MatcherConfig struct {
	RelevanceCutoff int `json:"relevance_cutoff"` // Candidates scoring at or below are dropped
	Stage2Limit     int `json:"stage2_limit"`     // Max candidates scored by the LLM per event
	MatchTimeout    int `json:"match_timeout"`    // Seconds per event in multi-event requests
}

// CacheConfig holds match cache configuration
type CacheConfig struct {
	TTL time.Duration `json:"ttl"`
}

// WarmingConfig holds cache warming configuration
type WarmingConfig struct {
	VelocityThreshold int           `json:"velocity_threshold"`
	MatchLimit        int           `json:"match_limit"`
	EventDelay        time.Duration `json:"event_delay"` // Pause between events to stay under LLM rate limits
}

// TickerConfig holds price ticker relay configuration
type TickerConfig struct {
	Enabled      bool          `json:"enabled"`
	PollInterval time.Duration `json:"poll_interval"`
	PoolSize     int           `json:"pool_size"` // Markets tracked per poll
}

// RedisConfig holds Redis configuration for the match cache store
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

// DBConfig holds Postgres configuration for the position journal
type DBConfig struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
}

// VaultConfig holds HashiCorp Vault configuration for API key lookup
type VaultConfig struct {
	Enabled    bool   `json:"enabled"`
	Address    string `json:"address"`
	Token      string `json:"token"`
	MountPath  string `json:"mount_path"`
	SecretPath string `json:"secret_path"`
}

type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Pretty bool   `json:"pretty"` // Console writer instead of JSON
}

func Load() (*Config, error) {
	// First try to load base config from file
	cfg, err := loadFromFile("config.json")
	if err != nil {
		// If no config file, start with empty config
		cfg = &Config{}
	}

	// Apply environment variable overrides (these take precedence)
	applyEnvOverrides(cfg)

	return cfg, nil
}

func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	// Server config
	cfg.ServerConfig.Port = getEnvIntOrDefault("WEB_PORT", 8080)
	cfg.ServerConfig.Host = getEnvOrDefault("WEB_HOST", "0.0.0.0")
	cfg.ServerConfig.AllowedOrigins = getEnvOrDefault("SERVER_ALLOWED_ORIGINS", "*")
	cfg.ServerConfig.ProductionMode = getEnvOrDefault("SERVER_PRODUCTION", "false") == "true"
	cfg.ServerConfig.ReadTimeout = getEnvIntOrDefault("SERVER_READ_TIMEOUT", 30)
	cfg.ServerConfig.WriteTimeout = getEnvIntOrDefault("SERVER_WRITE_TIMEOUT", 60)
	cfg.ServerConfig.ShutdownTimeout = getEnvIntOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10)

	// Venue config
	cfg.VenuesConfig.Kalshi.Enabled = getEnvOrDefault("KALSHI_ENABLED", "true") == "true"
	cfg.VenuesConfig.Kalshi.BaseURL = getEnvOrDefault("KALSHI_BASE_URL", "https://api.elections.kalshi.com/trade-api/v2")
	cfg.VenuesConfig.Polymarket.Enabled = getEnvOrDefault("POLYMARKET_ENABLED", "true") == "true"
	cfg.VenuesConfig.Polymarket.BaseURL = getEnvOrDefault("POLYMARKET_BASE_URL", "https://gamma-api.polymarket.com")
	cfg.VenuesConfig.Manifold.Enabled = getEnvOrDefault("MANIFOLD_ENABLED", "true") == "true"
	cfg.VenuesConfig.Manifold.BaseURL = getEnvOrDefault("MANIFOLD_BASE_URL", "https://api.manifold.markets/v0")
	cfg.VenuesConfig.FetchTimeout = getEnvDurationOrDefault("VENUE_FETCH_TIMEOUT", 10*time.Second)

	// News config
	cfg.NewsConfig.APIKey = getEnvOrDefault("NEWSAPI_KEY", cfg.NewsConfig.APIKey)
	cfg.NewsConfig.BaseURL = getEnvOrDefault("NEWSAPI_BASE_URL", "https://newsapi.org/v2")
	cfg.NewsConfig.Category = getEnvOrDefault("NEWSAPI_CATEGORY", "business")

	// AI config
	cfg.AIConfig.Enabled = getEnvOrDefault("AI_ENABLED", "true") == "true"
	cfg.AIConfig.LLMProvider = getEnvOrDefault("AI_LLM_PROVIDER", "claude")
	cfg.AIConfig.ClaudeAPIKey = getEnvOrDefault("AI_CLAUDE_API_KEY", cfg.AIConfig.ClaudeAPIKey)
	cfg.AIConfig.OpenAIAPIKey = getEnvOrDefault("AI_OPENAI_API_KEY", cfg.AIConfig.OpenAIAPIKey)
	cfg.AIConfig.DeepSeekAPIKey = getEnvOrDefault("AI_DEEPSEEK_API_KEY", cfg.AIConfig.DeepSeekAPIKey)
	cfg.AIConfig.LLMModel = getEnvOrDefault("AI_LLM_MODEL", "claude-3-haiku-20240307")

	// Matcher config
	cfg.MatcherConfig.RelevanceCutoff = getEnvIntOrDefault("MATCHER_RELEVANCE_CUTOFF", 60)
	cfg.MatcherConfig.Stage2Limit = getEnvIntOrDefault("MATCHER_STAGE2_LIMIT", 20)
	cfg.MatcherConfig.MatchTimeout = getEnvIntOrDefault("MATCHER_MATCH_TIMEOUT", 10)

	// Cache config
	cfg.CacheConfig.TTL = getEnvDurationOrDefault("MATCH_CACHE_TTL", 5*time.Minute)

	// Warming config
	cfg.WarmingConfig.VelocityThreshold = getEnvIntOrDefault("WARMING_VELOCITY_THRESHOLD", 60)
	cfg.WarmingConfig.MatchLimit = getEnvIntOrDefault("WARMING_MATCH_LIMIT", 3)
	cfg.WarmingConfig.EventDelay = getEnvDurationOrDefault("WARMING_EVENT_DELAY", 500*time.Millisecond)

	// Ticker config
	cfg.TickerConfig.Enabled = getEnvOrDefault("TICKER_ENABLED", "true") == "true"
	cfg.TickerConfig.PollInterval = getEnvDurationOrDefault("TICKER_POLL_INTERVAL", 30*time.Second)
	cfg.TickerConfig.PoolSize = getEnvIntOrDefault("TICKER_POOL_SIZE", 50)

	// Redis config
	cfg.RedisConfig.Enabled = getEnvOrDefault("REDIS_ENABLED", "false") == "true"
	cfg.RedisConfig.Address = getEnvOrDefault("REDIS_ADDRESS", "localhost:6379")
	cfg.RedisConfig.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.RedisConfig.Password)
	cfg.RedisConfig.DB = getEnvIntOrDefault("REDIS_DB", 0)
	cfg.RedisConfig.PoolSize = getEnvIntOrDefault("REDIS_POOL_SIZE", 10)

	// Database config
	cfg.DBConfig.Enabled = getEnvOrDefault("DATABASE_ENABLED", "false") == "true"
	cfg.DBConfig.URL = getEnvOrDefault("DATABASE_URL", cfg.DBConfig.URL)

	// Vault config
	cfg.VaultConfig.Enabled = getEnvOrDefault("VAULT_ENABLED", "false") == "true"
	cfg.VaultConfig.Address = getEnvOrDefault("VAULT_ADDR", "http://localhost:8200")
	cfg.VaultConfig.Token = getEnvOrDefault("VAULT_TOKEN", cfg.VaultConfig.Token)
	cfg.VaultConfig.MountPath = getEnvOrDefault("VAULT_MOUNT_PATH", "secret")
	cfg.VaultConfig.SecretPath = getEnvOrDefault("VAULT_SECRET_PATH", "prediction-radar/api-keys")

	// Logging config
	cfg.LoggingConfig.Level = getEnvOrDefault("LOG_LEVEL", "info")
	cfg.LoggingConfig.Pretty = getEnvOrDefault("LOG_PRETTY", "false") == "true"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
