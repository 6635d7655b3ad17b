// Package llm provides the optional text-generation backends used to
// refine drafted documents.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider names accepted by FromConfig.
const (
	ProviderNone   = "none"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Defaults for the OpenAI-compatible backend, which targets Groq unless a
// base URL is configured.
const (
	DefaultBaseURL     = "https://api.groq.com/openai/v1"
	DefaultOpenAIModel = "llama-3.3-70b-versatile"
	DefaultOllamaModel = "llama3.2"
)

// Generator produces text from a system instruction and a prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	Name() string
}

// Config selects and configures a backend.
type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

// FromConfig builds the configured generator. It returns nil, nil for the
// none provider.
func FromConfig(cfg Config) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderNone:
		return nil, nil
	case ProviderOpenAI, "groq":
		g, err := NewOpenAI(cfg)
		if err != nil {
			return nil, err
		}
		return g, nil
	case ProviderOllama:
		g, err := NewOllama(cfg)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (expected none, openai or ollama)", cfg.Provider)
	}
}
