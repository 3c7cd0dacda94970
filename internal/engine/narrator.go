package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/rkvadlamudi/campusql/internal/catalog"
	"github.com/rkvadlamudi/campusql/internal/mask"
	"github.com/rkvadlamudi/campusql/internal/prompts"
)

// Narrator renders query results (or the empty-result case) into a
// formal institutional answer. Contact identifiers are masked in the
// rows before they ever reach the model, so the narrated output cannot
// contain a full phone number or email regardless of model behavior.
type Narrator struct {
	llm       LLMClient
	institute string
}

// NewNarrator creates a result narrator for the named institution.
func NewNarrator(llm LLMClient, institute string) *Narrator {
	return &Narrator{llm: llm, institute: institute}
}

// Narrate produces the answer for a non-empty result set.
func (n *Narrator) Narrate(ctx context.Context, question string, result *catalog.QueryResult, generatedQuery string) (string, error) {
	masked := make([][]string, len(result.Rows))
	for i, row := range result.Rows {
		masked[i] = append([]string(nil), row...)
	}
	mask.Rows(masked)

	answer, err := n.llm.Complete(ctx, []ChatMessage{
		{Role: RoleSystem, Content: prompts.MustBuild(prompts.ResultSummarySystem, map[string]string{
			"institute": n.institute,
		})},
		{Role: RoleUser, Content: prompts.MustBuild(prompts.ResultSummaryUser, map[string]string{
			"question": question,
			"query":    generatedQuery,
			"columns":  strings.Join(result.Columns, ", "),
			"rows":     renderRows(masked),
		})},
	}, ChatOptions{Temperature: 0.3, MaxOutputTokens: 200})
	if err != nil {
		return "", fmt.Errorf("result narration call: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// NarrateEmpty phrases the polite no-matching-data answer.
func (n *Narrator) NarrateEmpty(ctx context.Context, question string) (string, error) {
	answer, err := n.llm.Complete(ctx, []ChatMessage{
		{Role: RoleSystem, Content: prompts.MustBuild(prompts.EmptyResultSystem, map[string]string{
			"institute": n.institute,
		})},
		{Role: RoleUser, Content: prompts.MustBuild(prompts.EmptyResultUser, map[string]string{
			"question": question,
		})},
	}, ChatOptions{Temperature: 0.3, MaxOutputTokens: 200})
	if err != nil {
		return "", fmt.Errorf("empty-result narration call: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

func renderRows(rows [][]string) string {
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strings.Join(row, " | "))
	}
	return b.String()
}
