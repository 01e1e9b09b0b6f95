package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/windoze95/saltybytes-chef/internal/ai"
	"github.com/windoze95/saltybytes-chef/internal/cache"
	"github.com/windoze95/saltybytes-chef/internal/config"
	"github.com/windoze95/saltybytes-chef/internal/format"
	"github.com/windoze95/saltybytes-chef/internal/logger"
	"github.com/windoze95/saltybytes-chef/internal/telemetry"
	"github.com/windoze95/saltybytes-chef/internal/util"
	"go.uber.org/zap"
)

// Suggester produces recipe suggestions.
type Suggester interface {
	Suggest(ctx context.Context, req SuggestionRequest) (*SuggestionResult, error)
}

// SuggestionRequest is a single suggestion request.
type SuggestionRequest struct {
	Prompt    string `json:"prompt"`
	Dietary   string `json:"dietary"`
	SkipCache bool   `json:"skip_cache"`
}

// SuggestionMetadata describes how a result was produced.
type SuggestionMetadata struct {
	TimingMS      float64           `json:"timing_ms"`
	CacheHit      bool              `json:"cache_hit"`
	UsedRetrieval bool              `json:"used_retrieval"`
	Profile       telemetry.Summary `json:"profile"`
}

// SuggestionResult is the unit returned to callers and stored in the
// result cache.
type SuggestionResult struct {
	DisplayText string             `json:"display_text"`
	FormFields  format.Fields      `json:"form_fields"`
	Raw         ai.RecipeDraft     `json:"raw"`
	Metadata    SuggestionMetadata `json:"metadata"`
}

// SuggestionService orchestrates cache, search, prompt, generation and
// formatting for one request. It is safe for concurrent use.
type SuggestionService struct {
	Cfg       config.SuggestConfig
	Prompts   *config.Prompts
	Searcher  ai.Searcher
	Generator ai.Generator
	Cache     *cache.Namespace
	Caps      format.Caps
}

// NewSuggestionService is the constructor function for initializing a new
// SuggestionService.
func NewSuggestionService(cfg config.SuggestConfig, prompts *config.Prompts, searcher ai.Searcher, generator ai.Generator, resultCache *cache.Namespace) *SuggestionService {
	if prompts == nil {
		if p, err := config.DefaultPrompts(); err == nil {
			prompts = p
		} else {
			logger.Get().Error("failed to load built-in prompts", zap.Error(err))
			prompts = &config.Prompts{}
		}
	}
	return &SuggestionService{
		Cfg:       cfg,
		Prompts:   prompts,
		Searcher:  searcher,
		Generator: generator,
		Cache:     resultCache,
		Caps:      CapsFromConfig(cfg),
	}
}

// CapsFromConfig returns the output caps configured in cfg.
func CapsFromConfig(cfg config.SuggestConfig) format.Caps {
	return format.Caps{
		MaxIngredients:  cfg.MaxIngredients,
		MaxSteps:        cfg.MaxSteps,
		MaxSummaryChars: cfg.MaxSummaryChars,
		MaxTitleChars:   cfg.MaxTitleChars,
		MaxNotesChars:   cfg.MaxNotesChars,
	}
}

// Configured reports whether the credentials needed by the current settings
// are present.
func (s *SuggestionService) Configured() bool {
	return s.Generator != nil && len(s.Cfg.MissingCredentials()) == 0
}

// Suggest turns a prompt into a structured recipe. A non-cached call makes
// exactly one generation call; generation failures are returned and never
// cached or retried.
func (s *SuggestionService) Suggest(ctx context.Context, req SuggestionRequest) (*SuggestionResult, error) {
	rec := telemetry.New()
	ctx = telemetry.WithRecorder(ctx, rec)
	log := logger.FromContext(ctx)

	req.Prompt = strings.TrimSpace(req.Prompt)
	req.Dietary = strings.TrimSpace(req.Dietary)
	if req.Prompt == "" {
		return nil, &ValidationError{Message: "prompt is required"}
	}
	if err := checkPromptLength(req.Prompt); err != nil {
		return nil, err
	}
	if missing := s.Cfg.MissingCredentials(); len(missing) > 0 || s.Generator == nil {
		cfgErr := &ConfigurationError{Missing: missing}
		log.Error("suggestion rejected", zap.Error(cfgErr))
		return nil, cfgErr
	}

	log.Info("starting suggestion", zap.String("prompt", util.Truncate(req.Prompt, 50)), zap.Bool("skip_cache", req.SkipCache))

	key := s.Cache.Key(req.Prompt, req.Dietary)
	if !req.SkipCache {
		stage := rec.Begin("cache_check", map[string]interface{}{"enabled": s.Cache.Enabled()})
		var cached SuggestionResult
		hit := s.Cache.Lookup(ctx, key, &cached)
		stage.Set("hit", hit)
		stage.End()

		if hit {
			rec.Inc(telemetry.CounterCacheHits)
			cached.Metadata = newMetadata(rec, true, cached.Metadata.UsedRetrieval)
			s.finish(ctx, rec, "success", true)
			return &cached, nil
		}
	}
	rec.Inc(telemetry.CounterCacheMisses)

	stage := rec.Begin("search_total", nil)
	var search ai.SearchResult
	if s.Searcher != nil {
		search = s.Searcher.Search(ctx, req.Prompt, req.SkipCache)
	}
	stage.Set("used_retrieval", search.Used)
	stage.End()

	stage = rec.Begin("prompt_build", nil)
	prompt, err := BuildPrompt(s.Prompts.Suggest.User, req, search, s.Caps)
	stage.Set("chars", len(prompt))
	stage.End()
	if err != nil {
		s.finish(ctx, rec, "error", false)
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	rec.Inc(telemetry.CounterLLMCalls)
	stage = rec.Begin("llm_total", map[string]interface{}{"model": s.Generator.Model()})
	draft, err := s.Generator.Generate(ctx, prompt)
	stage.End()
	if err != nil {
		s.finish(ctx, rec, "generation_error", false)
		return nil, err
	}
	if draft == nil {
		s.finish(ctx, rec, "generation_error", false)
		return nil, &ai.GenerationError{Kind: ai.GenerationFormat, Err: errors.New("generator returned no draft")}
	}
	if !draft.HasTimings() {
		log.Warn("recipe has no prep time, cook time or servings", zap.String("title", draft.Title))
	}

	stage = rec.Begin("formatting", nil)
	result := &SuggestionResult{
		DisplayText: format.Display(draft, s.Caps),
		FormFields:  format.FormFields(draft, s.Caps),
		Raw:         *draft,
	}
	stage.End()

	result.Metadata = newMetadata(rec, false, search.Used)
	if !req.SkipCache && s.Cache.Enabled() {
		stage = rec.Begin("cache_write", nil)
		s.Cache.Save(ctx, key, result)
		stage.End()
	}

	result.Metadata = newMetadata(rec, false, search.Used)
	s.finish(ctx, rec, "success", false)
	return result, nil
}

func newMetadata(rec *telemetry.Recorder, cacheHit, usedRetrieval bool) SuggestionMetadata {
	summary := rec.Summary()
	return SuggestionMetadata{
		TimingMS:      summary.WallMS,
		CacheHit:      cacheHit,
		UsedRetrieval: usedRetrieval,
		Profile:       summary,
	}
}

// finish logs the outcome and exports metrics. Canceled requests are not
// exported.
func (s *SuggestionService) finish(ctx context.Context, rec *telemetry.Recorder, outcome string, cacheHit bool) {
	summary := rec.Summary()
	log := logger.FromContext(ctx)
	log.Info("suggestion finished",
		zap.String("outcome", outcome),
		zap.Bool("cache_hit", cacheHit),
		zap.Float64("wall_ms", summary.WallMS),
		zap.String("slowest", summary.Slowest),
		zap.Int("llm_calls", summary.Counters.LLMCalls),
		zap.Int("search_calls", summary.Counters.SearchCalls),
		zap.Int("errors", summary.Counters.Errors),
	)
	log.Debug(summary.Table())

	if errors.Is(ctx.Err(), context.Canceled) {
		return
	}
	telemetry.Observe(summary, outcome, cacheHit)
}
