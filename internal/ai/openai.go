package ai

import (
	"context"
	"errors"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/windoze95/saltybytes-chef/internal/logger"
	"github.com/windoze95/saltybytes-chef/internal/telemetry"
	"go.uber.org/zap"
)

// GeneratorSettings configures a Generator.
type GeneratorSettings struct {
	Model        string
	BaseURL      string
	MaxTokens    int
	Temperature  float64
	Timeout      time.Duration
	SystemPrompt string
}

func (s *GeneratorSettings) applyDefaults(model string) {
	if s.Model == "" {
		s.Model = model
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = 1200
	}
	if s.Timeout <= 0 {
		s.Timeout = 30 * time.Second
	}
	if s.SystemPrompt == "" {
		s.SystemPrompt = "You are a professional chef. Output only valid JSON."
	}
}

// OpenAIGenerator implements Generator against an OpenAI-compatible chat
// completions endpoint, requesting a JSON object response.
type OpenAIGenerator struct {
	client   *openai.Client
	settings GeneratorSettings
}

// NewOpenAIGenerator creates a generator for apiKey. settings.BaseURL
// overrides the API base (for compatible gateways).
func NewOpenAIGenerator(apiKey string, settings GeneratorSettings) *OpenAIGenerator {
	settings.applyDefaults(openai.GPT4oMini)
	cfg := openai.DefaultConfig(apiKey)
	if settings.BaseURL != "" {
		cfg.BaseURL = settings.BaseURL
	}
	return &OpenAIGenerator{
		client:   openai.NewClientWithConfig(cfg),
		settings: settings,
	}
}

// Model returns the configured model name.
func (g *OpenAIGenerator) Model() string { return g.settings.Model }

// Generate performs exactly one chat completion call. It does not retry.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (*RecipeDraft, error) {
	log := logger.FromContext(ctx)
	stage := telemetry.Begin(ctx, "llm_api_call", map[string]interface{}{
		"model":      g.settings.Model,
		"max_tokens": g.settings.MaxTokens,
		"timeout":    g.settings.Timeout.Seconds(),
	})
	defer stage.End()

	callCtx, cancel := context.WithTimeout(ctx, g.settings.Timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: g.settings.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: g.settings.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   g.settings.MaxTokens,
		Temperature: float32(g.settings.Temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := g.client.CreateChatCompletion(callCtx, req)
	if err != nil {
		ge := classifyCallError(err)
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			stage.Set("status", apiErr.HTTPStatusCode)
		}
		return nil, g.fail(ctx, stage, ge)
	}

	stage.Set("prompt_tokens", resp.Usage.PromptTokens)
	stage.Set("completion_tokens", resp.Usage.CompletionTokens)
	log.Debug("model token usage",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	if len(resp.Choices) == 0 {
		return nil, g.fail(ctx, stage, &GenerationError{Kind: GenerationFormat, Err: errors.New("response has no choices")})
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return nil, g.fail(ctx, stage, &GenerationError{Kind: GenerationFormat, Err: errors.New("response message has no content")})
	}

	draft, err := ParseDraft([]byte(content))
	if err != nil {
		return nil, g.fail(ctx, stage, err)
	}
	return draft, nil
}

func (g *OpenAIGenerator) fail(ctx context.Context, stage *telemetry.Stage, err error) error {
	telemetry.Inc(ctx, telemetry.CounterErrors)
	stage.Set("error", err.Error())
	logger.FromContext(ctx).Error("recipe generation failed",
		zap.String("model", g.settings.Model),
		zap.Error(err),
	)
	return err
}
