package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ollama/ollama/api"
)

var _ Generator = (*Ollama)(nil)

// Ollama generates text with a local Ollama server. The server address
// comes from OLLAMA_HOST.
type Ollama struct {
	client *api.Client
	model  string
}

// NewOllama creates an Ollama backend.
func NewOllama(cfg Config) (*Ollama, error) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOllamaModel
	}
	return &Ollama{client: client, model: model}, nil
}

// Name identifies the backend and model.
func (g *Ollama) Name() string {
	return "ollama:" + g.model
}

// Generate runs one non-streaming generation.
func (g *Ollama) Generate(ctx context.Context, system, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  g.model,
		Prompt: prompt,
		System: system,
		Stream: &stream,
	}

	var out strings.Builder
	err := g.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate failed: %w", err)
	}
	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", fmt.Errorf("empty completion")
	}
	return text, nil
}
