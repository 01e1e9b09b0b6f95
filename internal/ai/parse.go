package ai

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/goccy/go-json"
)

// draftWire is the JSON shape the model is asked to emit. Numeric fields
// decode as floats so that integral values such as 10.0 are accepted.
type draftWire struct {
	Title           string   `json:"title"`
	Summary         string   `json:"summary"`
	Ingredients     []string `json:"ingredients"`
	Instructions    []string `json:"instructions"`
	PrepTimeMinutes *float64 `json:"prep_time_minutes"`
	CookTimeMinutes *float64 `json:"cook_time_minutes"`
	Servings        *float64 `json:"servings"`
	DietaryNotes    string   `json:"dietary_notes"`
}

// ParseDraft decodes a model response into a RecipeDraft. The content must
// be a single JSON object; anything else is a parse error. An object that
// decodes to an all-default draft is a format error.
func ParseDraft(content []byte) (*RecipeDraft, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return nil, &GenerationError{Kind: GenerationFormat, Err: errors.New("empty response content")}
	}
	if trimmed[0] != '{' {
		return nil, &GenerationError{Kind: GenerationParse, Err: errors.New("response is not a JSON object")}
	}

	var wire draftWire
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return nil, &GenerationError{Kind: GenerationParse, Err: fmt.Errorf("decode recipe JSON: %w", err)}
	}

	draft := &RecipeDraft{
		Title:        wire.Title,
		Summary:      wire.Summary,
		Ingredients:  wire.Ingredients,
		Instructions: wire.Instructions,
		DietaryNotes: wire.DietaryNotes,
	}
	var err error
	if draft.PrepTimeMinutes, err = roundCount("prep_time_minutes", wire.PrepTimeMinutes); err != nil {
		return nil, err
	}
	if draft.CookTimeMinutes, err = roundCount("cook_time_minutes", wire.CookTimeMinutes); err != nil {
		return nil, err
	}
	if draft.Servings, err = roundCount("servings", wire.Servings); err != nil {
		return nil, err
	}
	if draft.IsEmpty() {
		return nil, &GenerationError{Kind: GenerationFormat, Err: errors.New("recipe has no title, ingredients or instructions")}
	}
	return draft, nil
}

// maxCount bounds minutes and servings so they fit a 32-bit column.
const maxCount = math.MaxInt32

// roundCount rounds a decoded count to the nearest integer. Counts outside
// [0, maxCount] are a parse error.
func roundCount(field string, f *float64) (*int, error) {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return nil, nil
	}
	r := math.Round(*f)
	if r < 0 || r > maxCount {
		return nil, &GenerationError{Kind: GenerationParse, Err: fmt.Errorf("%s out of range: %g", field, *f)}
	}
	v := int(r)
	return &v, nil
}
