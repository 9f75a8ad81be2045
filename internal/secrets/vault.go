// Package secrets resolves third-party API keys from HashiCorp Vault,
// falling back to values already present in the environment-driven config
// when Vault is disabled or a key is absent.
package secrets

import (
	"context"
	"fmt"
	"sync"

	"prediction-radar/config"

	"github.com/hashicorp/vault/api"
	"github.com/rs/zerolog"
)

// Well-known key names under the configured secret path
const (
	KeyNewsAPI = "news_api_key"
	KeyLLM     = "llm_api_key"
	KeyKalshi  = "kalshi_api_key"
)

// Client wraps the HashiCorp Vault client with a read-through cache
type Client struct {
	client *api.Client
	config config.VaultConfig
	logger zerolog.Logger

	mu    sync.RWMutex
	cache map[string]string
}

// NewClient creates a Vault client. With Vault disabled the client still
// works as a process-local secret cache so callers never need a nil check.
func NewClient(cfg config.VaultConfig, logger zerolog.Logger) (*Client, error) {
	c := &Client{
		config: cfg,
		logger: logger.With().Str("component", "secrets").Logger(),
		cache:  make(map[string]string),
	}

	if !cfg.Enabled {
		return c, nil
	}

	vaultConfig := api.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(cfg.Token)
	c.client = client

	return c, nil
}

// Get returns the named secret, or "" when it is not stored anywhere
func (c *Client) Get(ctx context.Context, name string) (string, error) {
	c.mu.RLock()
	if v, ok := c.cache[name]; ok {
		c.mu.RUnlock()
		return v, nil
	}
	c.mu.RUnlock()

	if !c.config.Enabled {
		return "", nil
	}

	path := fmt.Sprintf("%s/data/%s", c.config.MountPath, c.config.SecretPath)
	secret, err := c.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to read secrets from vault: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return "", nil
	}

	// KV v2 nests the payload under "data"
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("unexpected secret format at %s", path)
	}

	c.mu.Lock()
	for k, v := range data {
		if s, ok := v.(string); ok {
			c.cache[k] = s
		}
	}
	value := c.cache[name]
	c.mu.Unlock()

	return value, nil
}

// Set stores a secret in Vault (and the cache). With Vault disabled the
// value lives only in the process cache.
func (c *Client) Set(ctx context.Context, name, value string) error {
	c.mu.Lock()
	c.cache[name] = value
	c.mu.Unlock()

	if !c.config.Enabled {
		return nil
	}

	c.mu.RLock()
	payload := make(map[string]interface{}, len(c.cache))
	for k, v := range c.cache {
		payload[k] = v
	}
	c.mu.RUnlock()

	path := fmt.Sprintf("%s/data/%s", c.config.MountPath, c.config.SecretPath)
	_, err := c.client.Logical().WriteWithContext(ctx, path, map[string]interface{}{
		"data": payload,
	})
	if err != nil {
		return fmt.Errorf("failed to write secret to vault: %w", err)
	}
	return nil
}

// ResolveOrDefault returns the Vault value for name, or fallback when Vault
// has nothing. Lookup failures log and fall back rather than aborting startup.
func (c *Client) ResolveOrDefault(ctx context.Context, name, fallback string) string {
	value, err := c.Get(ctx, name)
	if err != nil {
		c.logger.Warn().Err(err).Str("secret", name).Msg("vault lookup failed, using config value")
		return fallback
	}
	if value == "" {
		return fallback
	}
	return value
}
