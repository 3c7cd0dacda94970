package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/rkvadlamudi/campusql/internal/prompts"
)

// TableLookup is the deterministic fallback consulted when the model
// response yields no acceptable table name. Implemented by the search
// index over table descriptions.
type TableLookup interface {
	Lookup(question string) (table string, ok bool)
}

// DefaultTableDescriptions describe the tables of the shipped dataset.
// Unknown tables still appear in the selection prompt, just without a
// description line.
var DefaultTableDescriptions = map[string]string{
	"Faculty":      "Staff details like name, department, qualification, and designation.",
	"Hostel":       "Room types, fees, facilities (boys/girls).",
	"Fee":          "Course-wise fees under convener/management quotas.",
	"Intake":       "Department-wise seat availability by year.",
	"Lab":          "Departmental labs, courses, and number of systems.",
	"Placement":    "Students placed, their departments, companies, and year.",
	"Transport":    "Bus numbers, drivers, route stops, and timings.",
	"College_info": "College profile including name, establishment year, location, programs, and contact info.",
}

// Resolver maps a natural-language question to catalog table names.
type Resolver struct {
	llm          LLMClient
	cutoff       float64
	descriptions map[string]string
	fallback     TableLookup // may be nil
}

// NewResolver creates a table resolver. cutoff is the minimum
// similarity for the fuzzy fallback on model output tokens.
func NewResolver(llm LLMClient, cutoff float64, descriptions map[string]string, fallback TableLookup) *Resolver {
	if descriptions == nil {
		descriptions = DefaultTableDescriptions
	}
	return &Resolver{llm: llm, cutoff: cutoff, descriptions: descriptions, fallback: fallback}
}

// Resolve asks the model for a comma-separated subset of names and
// screens every returned token against the catalog: case-insensitive
// exact match first, fuzzy match above the cutoff second, silently
// discarded otherwise. The result only ever contains members of names.
func (r *Resolver) Resolve(ctx context.Context, question string, names []string) (ResolutionResult, error) {
	if len(names) == 0 {
		return ResolutionResult{}, nil
	}

	raw, err := r.llm.Complete(ctx, []ChatMessage{
		{Role: RoleSystem, Content: prompts.MustBuild(prompts.TableSelectionSystem, nil)},
		{Role: RoleUser, Content: prompts.MustBuild(prompts.TableSelectionUser, map[string]string{
			"descriptions": r.renderDescriptions(names),
			"tables":       strings.Join(names, ", "),
			"question":     question,
		})},
	}, ChatOptions{Temperature: 0, MaxOutputTokens: 50})
	if err != nil {
		return ResolutionResult{}, fmt.Errorf("table selection call: %w", err)
	}

	accepted := r.screen(raw, names)
	if len(accepted) == 0 && r.fallback != nil {
		if table, ok := r.fallback.Lookup(question); ok {
			accepted = []string{table}
		}
	}
	if len(accepted) == 0 {
		return ResolutionResult{}, nil
	}
	return ResolutionResult{Found: true, Tables: accepted}, nil
}

// screen parses the model response and returns the deduplicated set of
// catalog names it maps to.
func (r *Resolver) screen(raw string, names []string) []string {
	byNormalized := make(map[string]string, len(names))
	for _, n := range names {
		byNormalized[normalizeName(n)] = n
	}

	var accepted []string
	seen := make(map[string]bool)
	for _, token := range strings.Split(raw, ",") {
		token = strings.Trim(strings.TrimSpace(token), "`*_\"'")
		if token == "" {
			continue
		}

		match, ok := byNormalized[normalizeName(token)]
		if !ok {
			best, score := closestName(token, names)
			if score < r.cutoff {
				continue
			}
			match = best
		}
		if !seen[match] {
			seen[match] = true
			accepted = append(accepted, match)
		}
	}
	return accepted
}

func (r *Resolver) renderDescriptions(names []string) string {
	var b strings.Builder
	for _, n := range names {
		if desc, ok := r.descriptions[n]; ok {
			fmt.Fprintf(&b, "- %s: %s\n", n, desc)
		} else {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
