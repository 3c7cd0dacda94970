package providers

import (
	"fmt"
	"os"

	"github.com/rkvadlamudi/campusql/internal/engine"
)

const defaultMistralBaseURL = "https://api.mistral.ai/v1"

// NewLLMClient creates an engine.LLMClient for the configured provider.
// API keys come from the environment; model and base URL default per
// provider when empty. Mistral speaks the OpenAI-compatible protocol.
func NewLLMClient(provider, model, baseURL string) (engine.LLMClient, string, error) {
	switch provider {
	case "", "mistral":
		apiKey := os.Getenv("MISTRAL_API_KEY")
		if apiKey == "" {
			return nil, "", fmt.Errorf("MISTRAL_API_KEY not set")
		}
		if model == "" {
			model = "mistral-small-2506"
		}
		if baseURL == "" {
			baseURL = defaultMistralBaseURL
		}
		client, err := NewOpenAIClient(apiKey, model, baseURL)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create Mistral client: %w", err)
		}
		return client, model, nil

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, "", fmt.Errorf("OPENAI_API_KEY not set")
		}
		if model == "" {
			model = "gpt-4o-mini"
		}
		client, err := NewOpenAIClient(apiKey, model, baseURL)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		return client, model, nil

	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, "", fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
		if model == "" {
			model = "claude-3-5-haiku-20241022"
		}
		client, err := NewAnthropicClient(apiKey, model)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create Anthropic client: %w", err)
		}
		return client, model, nil

	default:
		return nil, "", fmt.Errorf("unknown LLM provider: %s", provider)
	}
}
