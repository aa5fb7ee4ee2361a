package llms

import (
	"context"
	"fmt"
)

// Config selects and configures a single LLM provider, as read from the
// orchestrator's YAML config file.
type Config struct {
	Type        string  `yaml:"type"` // "anthropic", "openai", "gemini", "stub"
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
	MaxTokens   int64   `yaml:"max_tokens,omitempty"`
}

// New constructs an LLMProvider from config.
func New(ctx context.Context, cfg Config) (LLMProvider, error) {
	switch cfg.Type {
	case "anthropic":
		return NewAnthropicProvider(AnthropicConfig{
			APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL,
			Temperature: cfg.Temperature, MaxTokens: cfg.MaxTokens,
		})
	case "openai":
		return NewOpenAIProvider(OpenAIConfig{
			APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL,
			Temperature: cfg.Temperature,
		})
	case "gemini":
		return NewGeminiProvider(ctx, GeminiConfig{
			APIKey: cfg.APIKey, Model: cfg.Model, Temperature: float32(cfg.Temperature),
		})
	case "stub", "":
		return NewStubProvider(cfg.Model), nil
	default:
		return nil, fmt.Errorf("llms: unsupported provider type %q (supported: anthropic, openai, gemini, stub)", cfg.Type)
	}
}
