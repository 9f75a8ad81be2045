package secrets

import (
	"context"
	"testing"

	"prediction-radar/config"

	"github.com/rs/zerolog"
)

func TestDisabledVaultActsAsLocalCache(t *testing.T) {
	c, err := NewClient(config.VaultConfig{Enabled: false}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	ctx := context.Background()

	if v, err := c.Get(ctx, KeyNewsAPI); err != nil || v != "" {
		t.Errorf("Get on empty cache = (%q, %v), want empty", v, err)
	}

	if err := c.Set(ctx, KeyNewsAPI, "abc123"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, _ := c.Get(ctx, KeyNewsAPI); v != "abc123" {
		t.Errorf("Get after Set = %q, want abc123", v)
	}
}

func TestResolveOrDefault(t *testing.T) {
	c, _ := NewClient(config.VaultConfig{Enabled: false}, zerolog.Nop())
	ctx := context.Background()

	if got := c.ResolveOrDefault(ctx, KeyLLM, "from-env"); got != "from-env" {
		t.Errorf("ResolveOrDefault on miss = %q, want from-env", got)
	}

	c.Set(ctx, KeyLLM, "from-vault")
	if got := c.ResolveOrDefault(ctx, KeyLLM, "from-env"); got != "from-vault" {
		t.Errorf("ResolveOrDefault on hit = %q, want from-vault", got)
	}
}
