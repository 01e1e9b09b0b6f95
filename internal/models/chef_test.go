package models

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/windoze95/saltybytes-chef/internal/config"
	"github.com/windoze95/saltybytes-chef/internal/format"
)

func TestDraftPayload_ValueScan(t *testing.T) {
	servings := 4
	in := DraftPayload(format.Fields{
		Title:        "Tomato Soup",
		Ingredients:  "4 tomatoes\n1 onion",
		Instructions: "Chop\nSimmer",
		Servings:     &servings,
	})

	v, err := in.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	b, ok := v.([]byte)
	if !ok {
		t.Fatalf("Value type = %T, want []byte", v)
	}

	var out DraftPayload
	if err := out.Scan(b); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if out.Title != "Tomato Soup" || out.Ingredients != in.Ingredients {
		t.Errorf("Scan = %+v", out)
	}
	if out.Servings == nil || *out.Servings != 4 {
		t.Errorf("Servings = %v, want 4", out.Servings)
	}
	if out.PrepTimeMinutes != nil {
		t.Errorf("PrepTimeMinutes = %v, want nil", out.PrepTimeMinutes)
	}
}

func TestDraftPayload_ScanRejectsNonBytes(t *testing.T) {
	var p DraftPayload
	if err := p.Scan("not bytes"); err == nil {
		t.Error("Scan(string) error = nil, want error")
	}
}

func TestRecipe_ColumnSizesMatchCaps(t *testing.T) {
	typ := reflect.TypeOf(Recipe{})
	columns := map[string]int{
		"Title":        config.TitleColumnChars,
		"DietaryNotes": config.NotesColumnChars,
	}
	for field, size := range columns {
		f, ok := typ.FieldByName(field)
		if !ok {
			t.Fatalf("Recipe has no field %s", field)
		}
		want := fmt.Sprintf("type:varchar(%d)", size)
		if tag := f.Tag.Get("gorm"); !strings.Contains(tag, want) {
			t.Errorf("Recipe.%s gorm tag = %q, want %s", field, tag, want)
		}
	}
}
