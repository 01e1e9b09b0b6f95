package service

import (
	"github.com/windoze95/saltybytes-chef/internal/ai"
	"github.com/windoze95/saltybytes-chef/internal/config"
	"github.com/windoze95/saltybytes-chef/internal/format"
)

// BuildPrompt renders the user prompt for a suggestion. Search context is
// included only when search succeeded; otherwise the prompt says search was
// unavailable.
func BuildPrompt(tmpl string, req SuggestionRequest, search ai.SearchResult, caps format.Caps) (string, error) {
	searchContext := ""
	if search.Used {
		searchContext = search.Context
	}
	return config.RenderPrompt(tmpl, map[string]interface{}{
		"Prompt":          req.Prompt,
		"Dietary":         req.Dietary,
		"UsedSearch":      search.Used,
		"SearchContext":   searchContext,
		"MaxIngredients":  caps.MaxIngredients,
		"MaxSteps":        caps.MaxSteps,
		"MaxSummaryChars": caps.MaxSummaryChars,
		"MaxTitleChars":   caps.MaxTitleChars,
	})
}
