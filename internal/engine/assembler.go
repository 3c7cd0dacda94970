package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/rkvadlamudi/campusql/internal/catalog"
)

// Grounding is the evidence block passed verbatim into the synthesis
// prompt. It is never summarized or truncated: a dropped column or
// relationship makes the model hallucinate identifiers.
type Grounding struct {
	Schema      string
	ForeignKeys string
	Samples     string
}

// Render concatenates the three blocks in prompt order.
func (g Grounding) Render() string {
	return g.Schema + "\n\nForeign Keys:\n" + g.ForeignKeys + "\n\nSample Data:\n" + g.Samples
}

// Assembler builds the grounded context for the selected tables. Data
// is fetched fresh on every call so external changes to the store are
// visible on the next turn.
type Assembler struct {
	store      catalog.Store
	sampleRows int
}

// NewAssembler creates a context assembler reading from store.
func NewAssembler(store catalog.Store, sampleRows int) *Assembler {
	if sampleRows <= 0 {
		sampleRows = 10
	}
	return &Assembler{store: store, sampleRows: sampleRows}
}

// Assemble fetches columns, foreign-key edges and a row sample for each
// table and renders them into fixed text blocks.
func (a *Assembler) Assemble(ctx context.Context, tables []string) (Grounding, error) {
	var schema, fkeys, samples strings.Builder

	for _, table := range tables {
		cols, err := a.store.Columns(ctx, table)
		if err != nil {
			return Grounding{}, fmt.Errorf("columns of %s: %w", table, err)
		}
		fmt.Fprintf(&schema, "Table %s columns:\n", table)
		for _, c := range cols {
			fmt.Fprintf(&schema, "- %s (%s)\n", c.Name, c.Type)
		}
		schema.WriteString("\n")

		edges, err := a.store.ForeignKeys(ctx, table)
		if err != nil {
			return Grounding{}, fmt.Errorf("foreign keys of %s: %w", table, err)
		}
		for _, e := range edges {
			fmt.Fprintf(&fkeys, "%s.%s references %s.%s\n", e.Table, e.Column, e.RefTable, e.RefColumn)
		}

		sample, err := a.store.Sample(ctx, table, a.sampleRows)
		if err != nil {
			return Grounding{}, fmt.Errorf("sample of %s: %w", table, err)
		}
		fmt.Fprintf(&samples, "Table %s:\n%s\n", table, renderSample(sample))
	}

	fk := strings.TrimRight(fkeys.String(), "\n")
	if fk == "" {
		fk = "None"
	}
	return Grounding{
		Schema:      strings.TrimRight(schema.String(), "\n"),
		ForeignKeys: fk,
		Samples:     strings.TrimRight(samples.String(), "\n"),
	}, nil
}

func renderSample(res *catalog.QueryResult) string {
	var b strings.Builder
	b.WriteString(strings.Join(res.Columns, " | "))
	for _, row := range res.Rows {
		b.WriteString("\n")
		b.WriteString(strings.Join(row, " | "))
	}
	return b.String()
}
