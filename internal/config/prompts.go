package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// PromptPair holds a system and user prompt template.
type PromptPair struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// ChefMessages holds the assistant chat message templates.
type ChefMessages struct {
	DraftReady string `yaml:"draft_ready"`
	Failure    string `yaml:"failure"`
	Published  string `yaml:"published"`
}

// Prompts is the top-level prompt configuration loaded from YAML.
type Prompts struct {
	Suggest PromptPair   `yaml:"suggest"`
	Chef    ChefMessages `yaml:"chef"`
}

// LoadPrompts reads and parses a YAML prompt configuration file. An empty
// path returns the built-in prompts.
func LoadPrompts(path string) (*Prompts, error) {
	if path == "" {
		return DefaultPrompts()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}
	return parsePrompts(data)
}

// DefaultPrompts returns the prompts compiled into the binary.
func DefaultPrompts() (*Prompts, error) {
	return parsePrompts(defaultPrompts)
}

func parsePrompts(data []byte) (*Prompts, error) {
	var prompts Prompts
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompts YAML: %w", err)
	}
	if strings.TrimSpace(prompts.Suggest.User) == "" {
		return nil, fmt.Errorf("prompts YAML is missing suggest.user")
	}
	return &prompts, nil
}

// RenderPrompt executes Go template interpolation on a prompt string.
// The data map provides values for template placeholders like {{.Prompt}},
// {{.Dietary}} and {{.SearchContext}}.
func RenderPrompt(tmpl string, data map[string]interface{}) (string, error) {
	t, err := template.New("prompt").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt template: %w", err)
	}

	return strings.TrimSpace(buf.String()), nil
}
