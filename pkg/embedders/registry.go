// Package embedders provides the embedding backend used to turn text
// into vectors before they are stored in, or queried against, the
// Vector Store Gateway.
package embedders

import (
	"context"
	"fmt"
)

// EmbedderProvider generates embedding vectors for text.
type EmbedderProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
	ModelName() string
	Close() error
}

// Config selects and configures the embedder.
type Config struct {
	Type      string `yaml:"type"` // "openai" or "stub"
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension,omitempty"`
	BaseURL   string `yaml:"base_url,omitempty"`
}

// New constructs an EmbedderProvider from config.
func New(cfg Config) (EmbedderProvider, error) {
	switch cfg.Type {
	case "openai":
		return NewOpenAIEmbedder(OpenAIEmbedderConfig{
			APIKey: cfg.APIKey, Model: cfg.Model, Dimension: cfg.Dimension, BaseURL: cfg.BaseURL,
		})
	case "stub", "":
		dim := cfg.Dimension
		if dim == 0 {
			dim = 16
		}
		return NewStubEmbedder(dim), nil
	default:
		return nil, fmt.Errorf("embedders: unsupported type %q (supported: openai, stub)", cfg.Type)
	}
}
