package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/windoze95/saltybytes-chef/internal/cache"
	"github.com/windoze95/saltybytes-chef/internal/logger"
	"github.com/windoze95/saltybytes-chef/internal/telemetry"
	"github.com/windoze95/saltybytes-chef/internal/util"
	"go.uber.org/zap"
)

// Fallback notes returned in SearchResult.Context when search fails.
const (
	SearchTimedOutNote    = "Search timed out - generating recipe from AI knowledge only."
	SearchUnavailableNote = "Search unavailable - generating recipe from AI knowledge only."
	SearchErrorNote       = "Search error - generating recipe from AI knowledge only."
)

// SearchSettings configures a RecipeSearcher.
type SearchSettings struct {
	Enabled    bool
	Timeout    time.Duration
	MaxResults int

	// BreakerFailures is the number of consecutive failures that opens the
	// breaker. BreakerCooldown is how long it stays open.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// RecipeSearcher implements Searcher: it fronts a SearchProvider with a
// result cache, a hard timeout and a circuit breaker, and renders hits into
// prompt context.
type RecipeSearcher struct {
	provider SearchProvider
	cache    *cache.Namespace
	breaker  *gobreaker.CircuitBreaker[[]SearchHit]
	settings SearchSettings
}

type cachedSearch struct {
	Context string `json:"context"`
}

// NewRecipeSearcher creates a searcher. A nil provider behaves as disabled.
func NewRecipeSearcher(provider SearchProvider, ns *cache.Namespace, settings SearchSettings) *RecipeSearcher {
	if settings.MaxResults <= 0 {
		settings.MaxResults = 3
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 4 * time.Second
	}
	if settings.BreakerFailures == 0 {
		settings.BreakerFailures = 5
	}
	if settings.BreakerCooldown <= 0 {
		settings.BreakerCooldown = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[[]SearchHit](gobreaker.Settings{
		Name:        "serper",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     settings.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Get().Warn("search breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &RecipeSearcher{
		provider: provider,
		cache:    ns,
		breaker:  breaker,
		settings: settings,
	}
}

// Search returns reference context for query. It never returns an error.
func (s *RecipeSearcher) Search(ctx context.Context, query string, skipCache bool) SearchResult {
	log := logger.FromContext(ctx)
	if !s.settings.Enabled || s.provider == nil {
		log.Debug("search disabled, skipping")
		return SearchResult{}
	}

	key := s.cache.Key(query)
	if !skipCache {
		var cached cachedSearch
		if s.cache.Lookup(ctx, key, &cached) {
			telemetry.Inc(ctx, telemetry.CounterCacheHits)
			log.Debug("search cache hit", zap.String("query", util.Truncate(query, 30)))
			return SearchResult{Context: cached.Context, Used: true}
		}
	}
	telemetry.Inc(ctx, telemetry.CounterCacheMisses)
	telemetry.Inc(ctx, telemetry.CounterSearchCalls)

	stage := telemetry.Begin(ctx, "search_api_call", map[string]interface{}{
		"query":   util.Truncate(query, 50),
		"timeout": s.settings.Timeout.Seconds(),
	})
	defer stage.End()

	callCtx, cancel := context.WithTimeout(ctx, s.settings.Timeout)
	defer cancel()

	hits, err := s.breaker.Execute(func() ([]SearchHit, error) {
		return s.provider.SearchRecipes(callCtx, query, s.settings.MaxResults)
	})
	if err != nil {
		telemetry.Inc(ctx, telemetry.CounterErrors)
		note := s.failureNote(ctx, query, err)
		stage.Set("error", note)
		return SearchResult{Context: note}
	}

	text := RenderHits(hits, s.settings.MaxResults)
	if !skipCache {
		s.cache.Save(ctx, key, cachedSearch{Context: text})
	}
	stage.Set("results", len(hits))
	log.Debug("search returned results", zap.Int("count", len(hits)))
	return SearchResult{Context: text, Used: true}
}

func (s *RecipeSearcher) failureNote(ctx context.Context, query string, err error) string {
	log := logger.FromContext(ctx)
	var decodeErr *DecodeError
	switch {
	case isTimeout(err):
		log.Warn("search timed out",
			zap.Duration("timeout", s.settings.Timeout), zap.String("query", util.Truncate(query, 50)))
		return SearchTimedOutNote
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		log.Warn("search breaker open, skipping call", zap.Error(err))
		return SearchUnavailableNote
	case errors.As(err, &decodeErr):
		log.Error("unexpected search error", zap.Error(err))
		return SearchErrorNote
	default:
		log.Warn("search request failed", zap.Error(err))
		return SearchUnavailableNote
	}
}

// RenderHits formats up to max hits as "- <title>: <snippet>" lines. Hits
// without a snippet are skipped.
func RenderHits(hits []SearchHit, max int) string {
	if max > 0 && len(hits) > max {
		hits = hits[:max]
	}
	lines := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.Snippet == "" {
			continue
		}
		lines = append(lines, "- "+h.Title+": "+h.Snippet)
	}
	return strings.Join(lines, "\n")
}
