package testutil

import (
	"time"

	"github.com/windoze95/saltybytes-chef/internal/ai"
	"github.com/windoze95/saltybytes-chef/internal/config"
)

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// TestDraft creates a test recipe draft with realistic fields.
func TestDraft() *ai.RecipeDraft {
	return &ai.RecipeDraft{
		Title:           "Lemon Herb Chicken",
		Summary:         "Juicy pan-seared chicken with a bright lemon herb sauce.",
		Ingredients:     []string{"2 chicken breasts", "1 lemon, juiced", "2 tbsp olive oil", "1 tsp dried thyme"},
		Instructions:    []string{"Step 1: Season the chicken with thyme", "Step 2: Sear in olive oil for 6 minutes per side", "Step 3: Finish with lemon juice"},
		PrepTimeMinutes: IntPtr(10),
		CookTimeMinutes: IntPtr(15),
		Servings:        IntPtr(2),
		DietaryNotes:    "Gluten-free",
	}
}

// TestSuggestConfig returns a fully credentialed suggestion config.
func TestSuggestConfig() config.SuggestConfig {
	return config.SuggestConfig{
		SearchEnabled:    true,
		SearchEndpoint:   "https://google.serper.dev/search",
		SearchTimeout:    4 * time.Second,
		SearchMaxResults: 3,
		LLMProvider:      config.ProviderOpenAI,
		LLMBaseURL:       "https://api.openai.com/v1",
		LLMModel:         "gpt-4o-mini",
		LLMMaxTokens:     1200,
		LLMTemperature:   0.7,
		LLMTimeout:       30 * time.Second,
		MaxIngredients:   12,
		MaxSteps:         10,
		MaxSummaryChars:  200,
		MaxTitleChars:    200,
		MaxNotesChars:    255,
		CacheEnabled:     true,
		CachePrefix:      "fast_recipe",
		CacheTTL:         72 * time.Hour,
		SearchCacheTTL:   24 * time.Hour,
		OpenAIAPIKey:     "sk-test",
		SerperAPIKey:     "serper-test",
	}
}
