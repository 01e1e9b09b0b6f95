package format

import (
	"fmt"
	"strings"
	"testing"

	"github.com/windoze95/saltybytes-chef/internal/ai"
)

func intPtr(v int) *int { return &v }

func sampleDraft() *ai.RecipeDraft {
	return &ai.RecipeDraft{
		Title:           "Tomato Soup",
		Summary:         "A cozy classic.",
		Ingredients:     []string{"4 tomatoes", "1 onion"},
		Instructions:    []string{"Step 1: Chop everything", "2. Simmer for 20 minutes", "3) Blend"},
		PrepTimeMinutes: intPtr(10),
		CookTimeMinutes: intPtr(25),
		Servings:        intPtr(4),
		DietaryNotes:    "Vegan",
	}
}

func TestDisplay_Full(t *testing.T) {
	got := Display(sampleDraft(), DefaultCaps)
	want := strings.Join([]string{
		"🍳 **Tomato Soup**",
		"",
		"A cozy classic.",
		"",
		"Prep: 10 min | Cook: 25 min | Serves: 4",
		"",
		"**Ingredients:**",
		"• 4 tomatoes",
		"• 1 onion",
		"",
		"**Instructions:**",
		"1. Chop everything",
		"2. Simmer for 20 minutes",
		"3. Blend",
		"",
		"📝 Vegan",
	}, "\n")
	if got != want {
		t.Errorf("Display =\n%s\n\nwant\n%s", got, want)
	}
}

func TestDisplay_Defaults(t *testing.T) {
	got := Display(&ai.RecipeDraft{Ingredients: []string{"egg"}}, DefaultCaps)
	if !strings.HasPrefix(got, "🍳 **Recipe**") {
		t.Errorf("Display title = %q, want default Recipe", got)
	}
	if strings.Contains(got, "Prep:") || strings.Contains(got, "Serves:") {
		t.Errorf("meta line should be omitted when no timings: %q", got)
	}
	if strings.Contains(got, "📝") {
		t.Errorf("notes line should be omitted: %q", got)
	}
}

func TestDisplay_PartialMeta(t *testing.T) {
	d := &ai.RecipeDraft{Title: "X", CookTimeMinutes: intPtr(15), PrepTimeMinutes: intPtr(0)}
	got := Display(d, DefaultCaps)
	if !strings.HasSuffix(got, "\n\nCook: 15 min") || strings.Contains(got, "Prep:") {
		t.Errorf("Display = %q, want only the cook segment", got)
	}
}

func TestDisplay_Nil(t *testing.T) {
	if got := Display(nil, DefaultCaps); got != "" {
		t.Errorf("Display(nil) = %q, want empty", got)
	}
}

func TestFormFields_Caps(t *testing.T) {
	d := &ai.RecipeDraft{Title: "Big Feast"}
	for i := 1; i <= 20; i++ {
		d.Ingredients = append(d.Ingredients, fmt.Sprintf("ingredient %d", i))
	}
	for i := 1; i <= 15; i++ {
		d.Instructions = append(d.Instructions, fmt.Sprintf("Step %d: do thing %d", i, i))
	}

	f := FormFields(d, DefaultCaps)
	ings := strings.Split(f.Ingredients, "\n")
	if len(ings) != 12 {
		t.Fatalf("len(ingredients) = %d, want 12", len(ings))
	}
	if ings[0] != "ingredient 1" || ings[11] != "ingredient 12" {
		t.Errorf("ingredients not the first 12 in order: %q .. %q", ings[0], ings[11])
	}
	steps := strings.Split(f.Instructions, "\n")
	if len(steps) != 10 {
		t.Fatalf("len(instructions) = %d, want 10", len(steps))
	}
	if steps[0] != "do thing 1" || steps[9] != "do thing 10" {
		t.Errorf("steps not the first 10 in order: %q .. %q", steps[0], steps[9])
	}

	display := Display(d, DefaultCaps)
	if strings.Count(display, "• ") != 12 {
		t.Errorf("display bullets = %d, want 12", strings.Count(display, "• "))
	}
	if !strings.Contains(display, "10. do thing 10") || strings.Contains(display, "11. ") {
		t.Errorf("display steps not capped at 10:\n%s", display)
	}
}

func TestFormFields_Truncation(t *testing.T) {
	d := &ai.RecipeDraft{
		Title:        strings.Repeat("é", 250),
		Summary:      strings.Repeat("s", 300),
		DietaryNotes: strings.Repeat("n", 300),
	}
	f := FormFields(d, DefaultCaps)
	if n := len([]rune(f.Title)); n != 200 {
		t.Errorf("title runes = %d, want 200", n)
	}
	if n := len([]rune(f.Summary)); n != 200 {
		t.Errorf("summary runes = %d, want 200", n)
	}
	if n := len([]rune(f.DietaryNotes)); n != 255 {
		t.Errorf("notes runes = %d, want 255", n)
	}
}

func TestFormFields_Passthrough(t *testing.T) {
	f := FormFields(&ai.RecipeDraft{Ingredients: []string{"salt"}, Servings: intPtr(0)}, DefaultCaps)
	if f.Title != "Untitled Recipe" {
		t.Errorf("Title = %q, want Untitled Recipe", f.Title)
	}
	if f.PrepTimeMinutes != nil || f.CookTimeMinutes != nil {
		t.Error("nil timings should stay nil")
	}
	if f.Servings == nil || *f.Servings != 0 {
		t.Errorf("Servings = %v, want 0 passed through", f.Servings)
	}

	full := FormFields(sampleDraft(), DefaultCaps)
	if *full.PrepTimeMinutes != 10 || *full.CookTimeMinutes != 25 || *full.Servings != 4 {
		t.Errorf("timings = %d/%d/%d, want 10/25/4", *full.PrepTimeMinutes, *full.CookTimeMinutes, *full.Servings)
	}
}

func TestFormFields_Deterministic(t *testing.T) {
	a := FormFields(sampleDraft(), DefaultCaps)
	b := FormFields(sampleDraft(), DefaultCaps)
	if a.Title != b.Title || a.Ingredients != b.Ingredients || a.Instructions != b.Instructions {
		t.Error("FormFields is not deterministic")
	}
	if Display(sampleDraft(), DefaultCaps) != Display(sampleDraft(), DefaultCaps) {
		t.Error("Display is not deterministic")
	}
}

func TestStripStepPrefix(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Step 1: Chop", "Chop"},
		{"step 2. Stir", "Stir"},
		{"STEP 3 - Serve", "Serve"},
		{"4. Bake", "Bake"},
		{"5) Cool", "Cool"},
		{"2.5 cups of flour go in", "2.5 cups of flour go in"},
		{"10 minutes of resting", "10 minutes of resting"},
		{"Whisk eggs", "Whisk eggs"},
	}
	for _, tt := range tests {
		if got := StripStepPrefix(tt.in); got != tt.want {
			t.Errorf("StripStepPrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if again := StripStepPrefix(StripStepPrefix(tt.in)); again != tt.want {
			t.Errorf("StripStepPrefix not idempotent for %q: %q", tt.in, again)
		}
	}
}
