package ai

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/windoze95/saltybytes-chef/internal/logger"
	"github.com/windoze95/saltybytes-chef/internal/telemetry"
	"go.uber.org/zap"
)

const createRecipeToolName = "create_recipe"

// AnthropicGenerator implements Generator using Claude with a forced
// create_recipe tool call for structured output.
type AnthropicGenerator struct {
	client   anthropic.Client
	settings GeneratorSettings
}

// NewAnthropicGenerator creates a generator for apiKey. SDK retries are
// disabled so each Generate makes a single request.
func NewAnthropicGenerator(apiKey string, settings GeneratorSettings) *AnthropicGenerator {
	settings.applyDefaults("claude-3-5-haiku-latest")
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if settings.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(settings.BaseURL))
	}
	return &AnthropicGenerator{
		client:   anthropic.NewClient(opts...),
		settings: settings,
	}
}

// Model returns the configured model name.
func (g *AnthropicGenerator) Model() string { return g.settings.Model }

// createRecipeTool mirrors the JSON object the OpenAI path asks for.
func createRecipeTool() anthropic.ToolUnionParam {
	integer := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "integer", "description": desc}
	}
	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        createRecipeToolName,
			Description: anthropic.String("Create a structured recipe with all required fields."),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: map[string]interface{}{
					"title":   map[string]interface{}{"type": "string", "description": "Recipe title"},
					"summary": map[string]interface{}{"type": "string", "description": "Brief 2-3 sentence description"},
					"ingredients": map[string]interface{}{
						"type":        "array",
						"description": "Ingredients as 'quantity ingredient - optional notes'",
						"items":       map[string]interface{}{"type": "string"},
					},
					"instructions": map[string]interface{}{
						"type":        "array",
						"description": "Preparation steps in order",
						"items":       map[string]interface{}{"type": "string"},
					},
					"prep_time_minutes": integer("Realistic prep time in minutes"),
					"cook_time_minutes": integer("Realistic cooking time in minutes"),
					"servings":          integer("Appropriate portion count"),
					"dietary_notes":     map[string]interface{}{"type": "string", "description": "Relevant dietary info and allergy warnings"},
				},
				Required: []string{"title", "ingredients", "instructions", "prep_time_minutes", "cook_time_minutes", "servings"},
			},
		},
	}
}

// Generate performs exactly one Messages call with forced tool use.
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (*RecipeDraft, error) {
	stage := telemetry.Begin(ctx, "llm_api_call", map[string]interface{}{
		"model":      g.settings.Model,
		"max_tokens": g.settings.MaxTokens,
		"timeout":    g.settings.Timeout.Seconds(),
	})
	defer stage.End()

	callCtx, cancel := context.WithTimeout(ctx, g.settings.Timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(g.settings.Model),
		MaxTokens:   int64(g.settings.MaxTokens),
		Temperature: anthropic.Float(g.settings.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: g.settings.SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Tools: []anthropic.ToolUnionParam{createRecipeTool()},
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: createRecipeToolName},
		},
	}

	msg, err := g.client.Messages.New(callCtx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			stage.Set("status", apiErr.StatusCode)
		}
		return nil, g.fail(ctx, stage, classifyCallError(err))
	}

	stage.Set("prompt_tokens", msg.Usage.InputTokens)
	stage.Set("completion_tokens", msg.Usage.OutputTokens)

	for _, block := range msg.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.ToolUseBlock:
			if variant.Name != createRecipeToolName {
				continue
			}
			draft, err := ParseDraft(variant.Input)
			if err != nil {
				return nil, g.fail(ctx, stage, err)
			}
			return draft, nil
		}
	}
	return nil, g.fail(ctx, stage, &GenerationError{Kind: GenerationFormat, Err: errors.New("no create_recipe tool_use block in response")})
}

func (g *AnthropicGenerator) fail(ctx context.Context, stage *telemetry.Stage, err error) error {
	telemetry.Inc(ctx, telemetry.CounterErrors)
	stage.Set("error", err.Error())
	logger.FromContext(ctx).Error("recipe generation failed",
		zap.String("model", g.settings.Model),
		zap.Error(err),
	)
	return err
}
