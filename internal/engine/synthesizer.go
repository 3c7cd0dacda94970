package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/rkvadlamudi/campusql/internal/prompts"
)

// Synthesizer turns a question plus grounding into a candidate SQL
// string. It only strips formatting from the model output; whether the
// text is safe and executable is decided downstream.
type Synthesizer struct {
	llm LLMClient
}

// NewSynthesizer creates a query synthesizer.
func NewSynthesizer(llm LLMClient) *Synthesizer {
	return &Synthesizer{llm: llm}
}

// Synthesize builds the synthesis prompt from the session's history and
// current question, the selected tables and the grounding block.
// useWildcard selects the broadened matching mode used on retries.
func (s *Synthesizer) Synthesize(ctx context.Context, sess *SessionContext, grounding Grounding, useWildcard bool) (string, error) {
	hint := prompts.ExactMatchHint
	if useWildcard {
		hint = prompts.WildcardMatchHint
	}

	conversation := strings.Join(append(sess.History(), sess.UserQuery), "\n")

	raw, err := s.llm.Complete(ctx, []ChatMessage{
		{Role: RoleSystem, Content: prompts.MustBuild(prompts.QuerySynthesisSystem, nil)},
		{Role: RoleUser, Content: prompts.MustBuild(prompts.QuerySynthesisUser, map[string]string{
			"conversation": conversation,
			"tables":       strings.Join(sess.SelectedTables, ", "),
			"grounding":    grounding.Render(),
			"match_hint":   hint,
		})},
	}, ChatOptions{Temperature: 0, MaxOutputTokens: 256})
	if err != nil {
		return "", fmt.Errorf("query synthesis call: %w", err)
	}

	return stripFormatting(raw), nil
}

// stripFormatting removes code fences, a leading language tag and stray
// backticks from the model output.
func stripFormatting(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	// "sql" or "sqlite" tag left over from a fence, or emitted bare
	lower := strings.ToLower(s)
	for _, tag := range []string{"sqlite", "sql"} {
		if strings.HasPrefix(lower, tag) {
			rest := s[len(tag):]
			if rest == "" || rest[0] == '\n' || rest[0] == ' ' {
				s = strings.TrimSpace(rest)
				break
			}
		}
	}
	return strings.Trim(strings.TrimSpace(s), "`")
}
