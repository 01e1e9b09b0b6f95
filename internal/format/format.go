// Package format renders recipe drafts for chat display and for the recipe
// creation form. Every function here is pure and deterministic.
package format

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/windoze95/saltybytes-chef/internal/ai"
	"github.com/windoze95/saltybytes-chef/internal/util"
)

// Caps bounds the size of rendered output. Exceeding a cap truncates, it
// never rejects.
type Caps struct {
	MaxIngredients  int
	MaxSteps        int
	MaxSummaryChars int
	MaxTitleChars   int
	MaxNotesChars   int
}

// DefaultCaps are the production limits.
var DefaultCaps = Caps{
	MaxIngredients:  12,
	MaxSteps:        10,
	MaxSummaryChars: 200,
	MaxTitleChars:   200,
	MaxNotesChars:   255,
}

// Fields is the recipe creation form payload.
type Fields struct {
	Title           string `json:"title"`
	Summary         string `json:"summary"`
	Ingredients     string `json:"ingredients"`
	Instructions    string `json:"instructions"`
	PrepTimeMinutes *int   `json:"prep_time_minutes"`
	CookTimeMinutes *int   `json:"cook_time_minutes"`
	Servings        *int   `json:"servings"`
	DietaryNotes    string `json:"dietary_notes"`
}

var stepPrefix = regexp.MustCompile(`(?i)^\s*(?:step\s*\d+\s*[:.)-]?\s*|\d+[.)]\s+)`)

// StripStepPrefix removes a leading "Step N:", "Step N.", "N." or "N)"
// marker from an instruction.
func StripStepPrefix(s string) string {
	return strings.TrimSpace(stepPrefix.ReplaceAllString(s, ""))
}

// Display renders a draft as chat-friendly markdown.
func Display(d *ai.RecipeDraft, caps Caps) string {
	if d == nil {
		return ""
	}
	var b strings.Builder

	title := strings.TrimSpace(d.Title)
	if title == "" {
		title = "Recipe"
	}
	fmt.Fprintf(&b, "🍳 **%s**\n\n", title)

	if summary := strings.TrimSpace(d.Summary); summary != "" {
		b.WriteString(summary)
		b.WriteString("\n\n")
	}

	var meta []string
	if v, ok := positive(d.PrepTimeMinutes); ok {
		meta = append(meta, fmt.Sprintf("Prep: %d min", v))
	}
	if v, ok := positive(d.CookTimeMinutes); ok {
		meta = append(meta, fmt.Sprintf("Cook: %d min", v))
	}
	if v, ok := positive(d.Servings); ok {
		meta = append(meta, fmt.Sprintf("Serves: %d", v))
	}
	if len(meta) > 0 {
		b.WriteString(strings.Join(meta, " | "))
		b.WriteString("\n\n")
	}

	if ingredients := capList(d.Ingredients, caps.MaxIngredients); len(ingredients) > 0 {
		b.WriteString("**Ingredients:**\n")
		for _, ing := range ingredients {
			fmt.Fprintf(&b, "• %s\n", ing)
		}
		b.WriteString("\n")
	}

	if steps := cleanSteps(d.Instructions, caps.MaxSteps); len(steps) > 0 {
		b.WriteString("**Instructions:**\n")
		for i, step := range steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
		b.WriteString("\n")
	}

	if notes := strings.TrimSpace(d.DietaryNotes); notes != "" {
		fmt.Fprintf(&b, "📝 %s\n", notes)
	}

	return strings.TrimSpace(b.String())
}

// FormFields maps a draft onto the recipe creation form. Numeric fields pass
// through untouched.
func FormFields(d *ai.RecipeDraft, caps Caps) Fields {
	if d == nil {
		return Fields{Title: "Untitled Recipe"}
	}
	title := strings.TrimSpace(d.Title)
	if title == "" {
		title = "Untitled Recipe"
	}
	return Fields{
		Title:           util.Truncate(title, caps.MaxTitleChars),
		Summary:         util.Truncate(strings.TrimSpace(d.Summary), caps.MaxSummaryChars),
		Ingredients:     strings.Join(capList(d.Ingredients, caps.MaxIngredients), "\n"),
		Instructions:    strings.Join(cleanSteps(d.Instructions, caps.MaxSteps), "\n"),
		PrepTimeMinutes: d.PrepTimeMinutes,
		CookTimeMinutes: d.CookTimeMinutes,
		Servings:        d.Servings,
		DietaryNotes:    util.Truncate(strings.TrimSpace(d.DietaryNotes), caps.MaxNotesChars),
	}
}

// capList trims entries, drops blanks, and keeps the first max in order.
func capList(items []string, max int) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

func cleanSteps(steps []string, max int) []string {
	cleaned := make([]string, 0, len(steps))
	for _, s := range steps {
		if s = StripStepPrefix(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if max > 0 && len(cleaned) > max {
		cleaned = cleaned[:max]
	}
	return cleaned
}

func positive(v *int) (int, bool) {
	if v == nil || *v <= 0 {
		return 0, false
	}
	return *v, true
}
