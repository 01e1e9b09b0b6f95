// Package app assembles the suggestion pipeline from configuration. Both
// the HTTP server and the CLI build their services here.
package app

import (
	"context"
	"fmt"

	"github.com/windoze95/saltybytes-chef/internal/ai"
	"github.com/windoze95/saltybytes-chef/internal/cache"
	"github.com/windoze95/saltybytes-chef/internal/config"
	"github.com/windoze95/saltybytes-chef/internal/logger"
	"github.com/windoze95/saltybytes-chef/internal/service"
	"go.uber.org/zap"
)

// Pipeline is a fully wired suggestion service and the cache backend it
// owns. Close releases the backend.
type Pipeline struct {
	Suggestions *service.SuggestionService
	Store       cache.Store
}

// Close releases the cache backend.
func (p *Pipeline) Close() error {
	if p.Store == nil {
		return nil
	}
	return p.Store.Close()
}

// NewStore opens the configured cache backend.
func NewStore(ctx context.Context, env config.EnvVars) (cache.Store, error) {
	switch env.CacheBackend {
	case config.CacheBackendRedis:
		store, err := cache.NewRedisStore(ctx, env.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return store, nil
	case "", config.CacheBackendMemory:
		return cache.NewMemoryStore(env.CacheMaxSize, env.CacheSweep), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", env.CacheBackend)
	}
}

// NewGenerator builds the generator for the configured provider. It
// returns nil when the provider's key is missing.
func NewGenerator(cfg config.SuggestConfig, prompts *config.Prompts) ai.Generator {
	key := cfg.GenerationKey()
	if key == "" {
		return nil
	}
	settings := ai.GeneratorSettings{
		Model:       cfg.Model(),
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.LLMTimeout,
	}
	if prompts != nil {
		settings.SystemPrompt = prompts.Suggest.System
	}
	if cfg.LLMProvider == config.ProviderAnthropic {
		return ai.NewAnthropicGenerator(key, settings)
	}
	settings.BaseURL = cfg.LLMBaseURL
	return ai.NewOpenAIGenerator(key, settings)
}

// NewPipeline wires cache namespaces, search and generation into a
// SuggestionService.
func NewPipeline(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	store, err := NewStore(ctx, cfg.EnvVars)
	if err != nil {
		return nil, err
	}

	sc := cfg.Suggest
	searchCache := cache.NewNamespace(store, sc.CachePrefix, cache.NamespaceSearch, sc.SearchCacheTTL, sc.CacheEnabled)
	resultCache := cache.NewNamespace(store, sc.CachePrefix, cache.NamespaceRecipe, sc.CacheTTL, sc.CacheEnabled)

	var provider ai.SearchProvider
	if sc.SearchEnabled && sc.SerperAPIKey != "" {
		provider = ai.NewSerperProvider(sc.SerperAPIKey, sc.SearchEndpoint, sc.SearchTimeout)
	}
	searcher := ai.NewRecipeSearcher(provider, searchCache, ai.SearchSettings{
		Enabled:    sc.SearchEnabled,
		Timeout:    sc.SearchTimeout,
		MaxResults: sc.SearchMaxResults,
	})

	generator := NewGenerator(sc, cfg.Prompts)
	svc := service.NewSuggestionService(sc, cfg.Prompts, searcher, generator, resultCache)

	caps := cfg.Capabilities()
	logger.Get().Info("suggestion pipeline ready",
		zap.String("provider", caps.Provider),
		zap.String("model", caps.Model),
		zap.Bool("search_enabled", caps.SearchEnabled),
		zap.Bool("cache_enabled", caps.CacheEnabled),
		zap.String("cache_backend", caps.CacheBackend),
		zap.Strings("missing_credentials", sc.MissingCredentials()),
	)

	return &Pipeline{Suggestions: svc, Store: store}, nil
}
