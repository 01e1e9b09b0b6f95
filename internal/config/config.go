package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Supported generation providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Supported cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config holds the application configuration.
type Config struct {
	EnvVars EnvVars       `json:"env"`
	Suggest SuggestConfig `json:"suggest"`
	Prompts *Prompts      `json:"-"`
}

// EnvVars holds environment variables required by the HTTP server.
// Fields tagged `optional:"true"` are skipped by CheckConfigEnvFields.
type EnvVars struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	DatabaseUrl    string        `env:"DATABASE_URL"`
	JwtSecretKey   string        `env:"JWT_SECRET_KEY"`
	Debug          bool          `env:"DEBUG" envDefault:"false" optional:"true"`
	CacheBackend   string        `env:"CACHE_BACKEND" envDefault:"memory"`
	RedisURL       string        `env:"REDIS_URL" optional:"true"`
	CacheMaxSize   int           `env:"CACHE_MAX_SIZE" envDefault:"1000"`
	CacheSweep     time.Duration `env:"CACHE_CLEANUP_INTERVAL" envDefault:"10m"`
	SuggestRate    float64       `env:"SUGGEST_RATE_PER_SECOND" envDefault:"0.2"`
	SuggestBurst   int           `env:"SUGGEST_RATE_BURST" envDefault:"3"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," optional:"true"`
	PromptsPath    string        `env:"PROMPTS_PATH" optional:"true"`
}

// SuggestConfig holds the tunables of the suggestion pipeline.
type SuggestConfig struct {
	SearchEnabled    bool          `env:"SEARCH_ENABLED" envDefault:"true"`
	SearchEndpoint   string        `env:"SEARCH_ENDPOINT" envDefault:"https://google.serper.dev/search"`
	SearchTimeout    time.Duration `env:"SEARCH_TIMEOUT" envDefault:"4s"`
	SearchMaxResults int           `env:"SEARCH_MAX_RESULTS" envDefault:"3"`

	LLMProvider    string        `env:"LLM_PROVIDER" envDefault:"openai"`
	LLMBaseURL     string        `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel       string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	AnthropicModel string        `env:"ANTHROPIC_MODEL" envDefault:"claude-3-5-haiku-latest"`
	LLMMaxTokens   int           `env:"LLM_MAX_TOKENS" envDefault:"1200"`
	LLMTemperature float64       `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	LLMTimeout     time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`

	MaxIngredients  int `env:"MAX_INGREDIENTS" envDefault:"12"`
	MaxSteps        int `env:"MAX_STEPS" envDefault:"10"`
	MaxSummaryChars int `env:"MAX_SUMMARY_CHARS" envDefault:"200"`
	MaxTitleChars   int `env:"MAX_TITLE_CHARS" envDefault:"200"`
	MaxNotesChars   int `env:"MAX_NOTES_CHARS" envDefault:"255"`

	CacheEnabled   bool          `env:"CACHE_ENABLED" envDefault:"true"`
	CachePrefix    string        `env:"CACHE_PREFIX" envDefault:"fast_recipe"`
	CacheTTL       time.Duration `env:"CACHE_TTL" envDefault:"72h"`
	SearchCacheTTL time.Duration `env:"SEARCH_CACHE_TTL" envDefault:"24h"`

	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	SerperAPIKey    string `env:"SERPER_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
}

// Capabilities are the optional features resolved once at startup.
type Capabilities struct {
	Provider      string `json:"provider"`
	Model         string `json:"model"`
	SearchEnabled bool   `json:"search_enabled"`
	CacheEnabled  bool   `json:"cache_enabled"`
	CacheBackend  string `json:"cache_backend"`
}

// LoadDotEnv loads variables from the given .env files (default ".env").
// A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// LoadConfig parses environment variables into the Config struct.
func LoadConfig() (*Config, error) {
	var config Config
	if err := env.Parse(&config.EnvVars); err != nil {
		return nil, err
	}
	suggest, err := LoadSuggestConfig()
	if err != nil {
		return nil, err
	}
	config.Suggest = *suggest
	return &config, nil
}

// LoadSuggestConfig parses only the suggestion pipeline settings.
func LoadSuggestConfig() (*SuggestConfig, error) {
	var sc SuggestConfig
	if err := env.Parse(&sc); err != nil {
		return nil, err
	}
	sc.LLMProvider = strings.ToLower(strings.TrimSpace(sc.LLMProvider))
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// CheckConfigEnvFields validates that all required EnvVars fields are set.
func (c *Config) CheckConfigEnvFields() error {
	if err := checkFieldsRecursive(reflect.ValueOf(c.EnvVars)); err != nil {
		return err
	}
	if c.EnvVars.CacheBackend == CacheBackendRedis && c.EnvVars.RedisURL == "" {
		return fmt.Errorf("$RedisURL must be set when CACHE_BACKEND=redis")
	}
	return nil
}

// Capabilities resolves the optional features from the loaded config.
func (c *Config) Capabilities() Capabilities {
	backend := c.EnvVars.CacheBackend
	if backend == "" {
		backend = CacheBackendMemory
	}
	return Capabilities{
		Provider:      c.Suggest.LLMProvider,
		Model:         c.Suggest.Model(),
		SearchEnabled: c.Suggest.SearchEnabled,
		CacheEnabled:  c.Suggest.CacheEnabled,
		CacheBackend:  backend,
	}
}

// Model returns the model name for the configured provider.
func (s SuggestConfig) Model() string {
	if s.LLMProvider == ProviderAnthropic {
		return s.AnthropicModel
	}
	return s.LLMModel
}

// Column sizes of the published recipe's title and dietary notes. The
// title and notes caps may not exceed them.
const (
	TitleColumnChars = 200
	NotesColumnChars = 255
)

// Validate checks ranges and endpoint formats.
func (s SuggestConfig) Validate() error {
	switch s.LLMProvider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("$LLM_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderAnthropic, s.LLMProvider)
	}
	if s.SearchEnabled && !govalidator.IsURL(s.SearchEndpoint) {
		return fmt.Errorf("$SEARCH_ENDPOINT is not a valid URL: %q", s.SearchEndpoint)
	}
	if s.LLMProvider == ProviderOpenAI && !govalidator.IsURL(s.LLMBaseURL) {
		return fmt.Errorf("$LLM_BASE_URL is not a valid URL: %q", s.LLMBaseURL)
	}
	positive := []struct {
		name  string
		value int
	}{
		{"SEARCH_MAX_RESULTS", s.SearchMaxResults},
		{"LLM_MAX_TOKENS", s.LLMMaxTokens},
		{"MAX_INGREDIENTS", s.MaxIngredients},
		{"MAX_STEPS", s.MaxSteps},
		{"MAX_SUMMARY_CHARS", s.MaxSummaryChars},
		{"MAX_TITLE_CHARS", s.MaxTitleChars},
		{"MAX_NOTES_CHARS", s.MaxNotesChars},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("$%s must be positive, got %d", p.name, p.value)
		}
	}
	if s.MaxTitleChars > TitleColumnChars {
		return fmt.Errorf("$MAX_TITLE_CHARS must be at most %d, got %d", TitleColumnChars, s.MaxTitleChars)
	}
	if s.MaxNotesChars > NotesColumnChars {
		return fmt.Errorf("$MAX_NOTES_CHARS must be at most %d, got %d", NotesColumnChars, s.MaxNotesChars)
	}
	if s.SearchTimeout <= 0 || s.LLMTimeout <= 0 {
		return fmt.Errorf("$SEARCH_TIMEOUT and $LLM_TIMEOUT must be positive")
	}
	if s.LLMTemperature < 0 || s.LLMTemperature > 2 {
		return fmt.Errorf("$LLM_TEMPERATURE must be within [0, 2], got %v", s.LLMTemperature)
	}
	if s.CacheEnabled && (s.CacheTTL <= 0 || s.SearchCacheTTL <= 0) {
		return fmt.Errorf("$CACHE_TTL and $SEARCH_CACHE_TTL must be positive")
	}
	return nil
}

// MissingCredentials lists the credential variables the current settings
// require but that are unset. A search key is only required while search
// is enabled.
func (s SuggestConfig) MissingCredentials() []string {
	var missing []string
	switch s.LLMProvider {
	case ProviderAnthropic:
		if s.AnthropicAPIKey == "" {
			missing = append(missing, "ANTHROPIC_API_KEY")
		}
	default:
		if s.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	}
	if s.SearchEnabled && s.SerperAPIKey == "" {
		missing = append(missing, "SERPER_API_KEY")
	}
	return missing
}

// GenerationKey returns the credential of the configured provider.
func (s SuggestConfig) GenerationKey() string {
	if s.LLMProvider == ProviderAnthropic {
		return s.AnthropicAPIKey
	}
	return s.OpenAIAPIKey
}

func checkFieldsRecursive(v reflect.Value) error {
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := v.Type().Field(i)
		if fieldType.Tag.Get("optional") == "true" {
			continue
		}
		if isZeroValue(field) {
			return fmt.Errorf("$%s must be set", fieldType.Name)
		}
		if field.Kind() == reflect.Struct {
			if err := checkFieldsRecursive(field); err != nil {
				return err
			}
		}
	}
	return nil
}

func isZeroValue(v reflect.Value) bool {
	return v.IsZero()
}
