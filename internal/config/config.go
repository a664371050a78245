package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Recognized provider identifiers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

// Default vision model per provider, overridable with AI_MODEL_VISION.
const (
	defaultAnthropicModel = "claude-sonnet-4-20250514"
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultGeminiModel    = "gemini-1.5-flash"
)

// ErrMissingCredential marks a configuration failure: the credential for the
// selected provider is absent. It is terminal and never retried.
var ErrMissingCredential = errors.New("missing AI provider credential")

// Config holds the application configuration. It is built once at startup
// and passed explicitly into constructors so clients stay testable.
type Config struct {
	Provider        string
	Model           string
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GeminiAPIKey    string
	ListenAddr      string
}

// Load reads configuration from a .env file (if present) and the
// environment. An unknown AI_PROVIDER is rejected here rather than at the
// first request.
func Load() (*Config, error) {
	// A missing .env file is fine; the environment may carry everything.
	_ = godotenv.Load()

	cfg := &Config{
		Provider:        envOr("AI_PROVIDER", ProviderAnthropic),
		Model:           os.Getenv("AI_MODEL_VISION"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:    os.Getenv("AI_API_KEY"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		ListenAddr:      envOr("LISTEN_ADDR", ":8080"),
	}

	switch cfg.Provider {
	case ProviderAnthropic:
		if cfg.Model == "" {
			cfg.Model = defaultAnthropicModel
		}
	case ProviderOpenAI:
		if cfg.Model == "" {
			cfg.Model = defaultOpenAIModel
		}
	case ProviderGemini:
		if cfg.Model == "" {
			cfg.Model = defaultGeminiModel
		}
	default:
		return nil, fmt.Errorf("unknown AI_PROVIDER %q", cfg.Provider)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
