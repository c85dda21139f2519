package cache_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/JaimeStill/cliprank/pkg/cache"
)

type entry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()

	var got entry
	if hit, err := c.Get(ctx, "k", &got); err != nil || hit {
		t.Fatalf("empty cache: hit=%v err=%v", hit, err)
	}

	if err := c.Set(ctx, "k", entry{Name: "a", Count: 2}); err != nil {
		t.Fatalf("set: %v", err)
	}

	hit, err := c.Get(ctx, "k", &got)
	if err != nil || !hit {
		t.Fatalf("get: hit=%v err=%v", hit, err)
	}
	if got != (entry{Name: "a", Count: 2}) {
		t.Errorf("got %+v", got)
	}

	if err := c.Delete(ctx, "k", "missing"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if hit, _ := c.Get(ctx, "k", &got); hit {
		t.Error("deleted key still cached")
	}
}

func TestDisabled(t *testing.T) {
	ctx := context.Background()
	c := cache.Disabled()

	if c.Enabled() {
		t.Error("disabled cache reports enabled")
	}
	if err := c.Set(ctx, "k", entry{}); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got entry
	if hit, err := c.Get(ctx, "k", &got); hit || err != nil {
		t.Errorf("hit=%v err=%v", hit, err)
	}
}

func TestNewWithoutURL(t *testing.T) {
	cfg := &cache.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	c, err := cache.New(cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if c.Enabled() {
		t.Error("cache without url should be disabled")
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	cfg := &cache.Config{URL: "not a url"}
	cfg.Finalize(nil)

	if _, err := cache.New(cfg, slog.New(slog.DiscardHandler)); err == nil {
		t.Error("expected parse error")
	}
}

func TestConfigDefaultsAndEnv(t *testing.T) {
	t.Setenv("TEST_CACHE_TTL", "30s")

	cfg := &cache.Config{}
	if err := cfg.Finalize(&cache.Env{TTL: "TEST_CACHE_TTL"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.TTL != "30s" || cfg.PingTimeout != "3s" {
		t.Errorf("unexpected config: %+v", cfg)
	}

	bad := &cache.Config{TTL: "soon"}
	if err := bad.Finalize(nil); err == nil {
		t.Error("expected invalid ttl error")
	}
}
