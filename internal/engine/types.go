// Package engine implements the query-resolution pipeline: intent
// classification, table resolution, grounded context assembly, SQL
// synthesis, guarded execution with staged retry, and result narration.
package engine

import (
	"context"
	"fmt"
)

// MessageRole represents the role of a chat message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatMessage is the provider-agnostic message we pass around.
type ChatMessage struct {
	Role    MessageRole // Role of the message sender
	Content string      // Message content
}

// Validate checks if the ChatMessage is valid.
func (m ChatMessage) Validate() error {
	switch m.Role {
	case RoleSystem, RoleUser, RoleAssistant:
		// Valid roles
	default:
		return fmt.Errorf("invalid message role: %s", m.Role)
	}
	return nil
}

// ChatOptions keeps knobs forwarded to the SDK.
type ChatOptions struct {
	Temperature     float32
	MaxOutputTokens int
}

// LLMClient abstracts the generation-service SDK (Mistral, OpenAI,
// Anthropic). Every prompt shape in the pipeline goes through this one
// operation; only prompt content and option budgets differ.
type LLMClient interface {
	Complete(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)
}
