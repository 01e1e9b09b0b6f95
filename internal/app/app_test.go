package app

import (
	"context"
	"testing"

	"github.com/windoze95/saltybytes-chef/internal/ai"
	"github.com/windoze95/saltybytes-chef/internal/cache"
	"github.com/windoze95/saltybytes-chef/internal/config"
	"github.com/windoze95/saltybytes-chef/internal/testutil"
)

func TestNewStore(t *testing.T) {
	store, err := NewStore(context.Background(), config.EnvVars{CacheBackend: config.CacheBackendMemory, CacheMaxSize: 10})
	if err != nil {
		t.Fatalf("NewStore(memory): %v", err)
	}
	defer store.Close()
	if _, ok := store.(*cache.MemoryStore); !ok {
		t.Errorf("store = %T, want *cache.MemoryStore", store)
	}

	if _, err := NewStore(context.Background(), config.EnvVars{CacheBackend: "memcached"}); err == nil {
		t.Error("unknown backend should fail")
	}
}

func TestNewGenerator(t *testing.T) {
	cfg := testutil.TestSuggestConfig()
	if _, ok := NewGenerator(cfg, nil).(*ai.OpenAIGenerator); !ok {
		t.Error("openai provider should build an OpenAIGenerator")
	}

	cfg.LLMProvider = config.ProviderAnthropic
	cfg.AnthropicModel = "claude-3-5-haiku-latest"
	if NewGenerator(cfg, nil) != nil {
		t.Error("anthropic provider without a key should build no generator")
	}
	cfg.AnthropicAPIKey = "sk-ant-test"
	gen := NewGenerator(cfg, nil)
	if _, ok := gen.(*ai.AnthropicGenerator); !ok {
		t.Fatalf("generator = %T, want *ai.AnthropicGenerator", gen)
	}
	if gen.Model() != "claude-3-5-haiku-latest" {
		t.Errorf("Model() = %q, want claude-3-5-haiku-latest", gen.Model())
	}
}

func TestNewPipeline(t *testing.T) {
	cfg := &config.Config{
		EnvVars: config.EnvVars{CacheBackend: config.CacheBackendMemory, CacheMaxSize: 10},
		Suggest: testutil.TestSuggestConfig(),
	}
	p, err := NewPipeline(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	defer p.Close()

	if !p.Suggestions.Configured() {
		t.Error("pipeline with full credentials should be configured")
	}
	if !p.Suggestions.Cache.Enabled() {
		t.Error("result cache should be enabled")
	}
}
