package engine

import (
	"context"
	"strings"

	"github.com/rkvadlamudi/campusql/internal/prompts"
)

// Intent labels an incoming message for routing.
type Intent string

const (
	IntentDomain  Intent = "domain"
	IntentGeneral Intent = "general"
)

// Classifier routes a message between the query pipeline and
// unconstrained chat.
type Classifier struct {
	llm LLMClient
}

// NewClassifier creates an intent classifier.
func NewClassifier(llm LLMClient) *Classifier {
	return &Classifier{llm: llm}
}

// Classify labels the question. Anything other than a clean "general"
// answer, including a failed call, defaults to domain: a wrong domain
// routing degrades to an empty-result message, while a wrong general
// routing could fabricate institutional facts.
func (c *Classifier) Classify(ctx context.Context, question string) Intent {
	raw, err := c.llm.Complete(ctx, []ChatMessage{
		{Role: RoleSystem, Content: prompts.MustBuild(prompts.IntentSystem, nil)},
		{Role: RoleUser, Content: prompts.MustBuild(prompts.IntentUser, map[string]string{
			"question": question,
		})},
	}, ChatOptions{Temperature: 0, MaxOutputTokens: 10})
	if err != nil {
		return IntentDomain
	}

	label := strings.Trim(strings.ToLower(strings.TrimSpace(raw)), `"'.`)
	if label == string(IntentGeneral) {
		return IntentGeneral
	}
	return IntentDomain
}
