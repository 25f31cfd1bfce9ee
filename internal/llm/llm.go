// Package llm abstracts the text-generation provider used for planning
// and code generation.
package llm

import (
	"context"
	"errors"
	"fmt"

	"genesis/internal/config"
)

// ErrNoAPIKey indicates a provider was selected but no credential is
// available in the environment.
var ErrNoAPIKey = errors.New("llm: no API key configured")

// Client generates text from a prompt. Implementations wrap one
// provider; swapping providers never affects callers.
type Client interface {
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)
}

// New builds the client selected by llm.provider.
func New(cfg *config.Config) (Client, error) {
	provider := cfg.GetString("llm.provider", "openai")
	switch provider {
	case "openai":
		return newOpenAI(cfg)
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q", provider)
	}
}
