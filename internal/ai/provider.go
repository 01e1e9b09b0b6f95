package ai

import "context"

// SearchProvider runs a web recipe search against one backend.
type SearchProvider interface {
	SearchRecipes(ctx context.Context, query string, count int) ([]SearchHit, error)
}

// Searcher produces reference context for a prompt. It never fails: every
// failure is folded into a SearchResult with Used=false.
type Searcher interface {
	Search(ctx context.Context, query string, skipCache bool) SearchResult
}

// Generator turns a fully rendered user prompt into a recipe draft using a
// single language-model call.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*RecipeDraft, error)
	Model() string
}

// SearchHit is a single organic search result.
type SearchHit struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// SearchResult is the outcome of a search attempt. When Used is false,
// Context holds a human-readable reason, or is empty when search is off.
type SearchResult struct {
	Context string `json:"context"`
	Used    bool   `json:"used"`
}

// RecipeDraft is the structured recipe returned by the language model.
type RecipeDraft struct {
	Title           string   `json:"title"`
	Summary         string   `json:"summary"`
	Ingredients     []string `json:"ingredients"`
	Instructions    []string `json:"instructions"`
	PrepTimeMinutes *int     `json:"prep_time_minutes"`
	CookTimeMinutes *int     `json:"cook_time_minutes"`
	Servings        *int     `json:"servings"`
	DietaryNotes    string   `json:"dietary_notes"`
}

// HasTimings reports whether any of prep time, cook time or servings is set.
func (d *RecipeDraft) HasTimings() bool {
	return d.PrepTimeMinutes != nil || d.CookTimeMinutes != nil || d.Servings != nil
}

// IsEmpty reports whether the draft carries no title, ingredients or
// instructions.
func (d *RecipeDraft) IsEmpty() bool {
	return d.Title == "" && len(d.Ingredients) == 0 && len(d.Instructions) == 0
}
