// Package sqlguard validates synthesized SQL before it is allowed anywhere
// near the store. The system is read-only by policy: a statement must be a
// single SELECT (or WITH ... SELECT), carry no data-modifying keywords, and
// its string literals must pass an injection screen.
package sqlguard

import (
	"errors"
	"fmt"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"
)

var (
	// ErrEmpty indicates there was nothing left after normalization.
	ErrEmpty = errors.New("empty query")
	// ErrMultipleStatements indicates the query contains more than one SQL statement.
	ErrMultipleStatements = errors.New("multiple SQL statements not allowed")
	// ErrNotReadOnly indicates the query is not a plain SELECT.
	ErrNotReadOnly = errors.New("only SELECT statements are permitted")
)

// Keywords that must never appear outside string literals. PRAGMA and ATTACH
// are included because SQLite exposes schema and filesystem surface through
// them.
var forbiddenKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "CREATE",
	"REPLACE", "TRUNCATE", "ATTACH", "DETACH", "PRAGMA", "VACUUM", "REINDEX",
}

// Validate normalizes a candidate query and returns it if it passes the
// read-only policy, or an error describing the first violation.
func Validate(query string) (string, error) {
	normalized := stripTrailingSemicolon(strings.TrimSpace(query))
	if normalized == "" {
		return "", ErrEmpty
	}

	if hasSemicolonOutsideStrings(normalized) {
		return "", ErrMultipleStatements
	}

	upper := strings.ToUpper(normalized)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return "", ErrNotReadOnly
	}

	if kw := forbiddenKeyword(normalized); kw != "" {
		return "", fmt.Errorf("%w: found %s", ErrNotReadOnly, kw)
	}

	if finding := screenLiterals(normalized); finding != "" {
		return "", fmt.Errorf("suspicious literal rejected (fingerprint %s)", finding)
	}

	return normalized, nil
}

// forbiddenKeyword returns the first write/DDL keyword found outside string
// literals, or "" if the statement is clean.
func forbiddenKeyword(query string) string {
	for _, word := range splitWordsOutsideStrings(query) {
		upper := strings.ToUpper(word)
		for _, kw := range forbiddenKeywords {
			if upper == kw {
				return kw
			}
		}
	}
	return ""
}

// screenLiterals runs libinjection over each single-quoted literal. Literal
// values are the part of a synthesized query most directly shaped by user
// input, which makes them the analogue of bound parameters.
func screenLiterals(query string) string {
	for _, lit := range extractLiterals(query) {
		if isSQLi, fingerprint := libinjection.IsSQLi(lit); isSQLi {
			return string(fingerprint)
		}
	}
	return ""
}

// extractLiterals returns the contents of all single-quoted string literals,
// honouring SQL's doubled-quote escape.
func extractLiterals(query string) []string {
	var literals []string
	var current strings.Builder
	inString := false

	runes := []rune(query)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if !inString {
			if c == '\'' {
				inString = true
				current.Reset()
			}
			continue
		}
		if c == '\'' {
			// '' inside a literal is an escaped quote, not a terminator.
			if i+1 < len(runes) && runes[i+1] == '\'' {
				current.WriteRune('\'')
				i++
				continue
			}
			inString = false
			literals = append(literals, current.String())
			continue
		}
		current.WriteRune(c)
	}
	return literals
}

// splitWordsOutsideStrings tokenizes the query into bare words, skipping
// anything inside single- or double-quoted regions.
func splitWordsOutsideStrings(query string) []string {
	var words []string
	var current strings.Builder

	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)
	state := stateNormal

	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	for _, c := range query {
		switch state {
		case stateNormal:
			switch {
			case c == '\'':
				flush()
				state = stateSingleQuote
			case c == '"':
				flush()
				state = stateDoubleQuote
			case isWordRune(c):
				current.WriteRune(c)
			default:
				flush()
			}
		case stateSingleQuote:
			if c == '\'' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if c == '"' {
				state = stateNormal
			}
		}
	}
	flush()
	return words
}

func isWordRune(c rune) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// hasSemicolonOutsideStrings reports whether any statement separator remains
// after the trailing one was stripped.
func hasSemicolonOutsideStrings(query string) bool {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)
	state := stateNormal

	for _, c := range query {
		switch state {
		case stateNormal:
			switch c {
			case ';':
				return true
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			if c == '\'' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if c == '"' {
				state = stateNormal
			}
		}
	}
	return false
}

func stripTrailingSemicolon(query string) string {
	query = strings.TrimRight(query, " \t\n\r")
	query = strings.TrimSuffix(query, ";")
	return strings.TrimRight(query, " \t\n\r")
}
