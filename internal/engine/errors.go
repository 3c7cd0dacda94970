// This file contains the per-turn outcome taxonomy and the fixed
// user-facing fallback messages. Every failure kind is converted to a
// natural-language string at the turn boundary; raw fault detail goes
// only to the audit log.

package engine

import "github.com/rkvadlamudi/campusql/internal/catalog"

// Outcome classifies one execution attempt. Classification is
// structural, made at the point of execution; narrated text never
// feeds back into control flow.
type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomeEmpty           Outcome = "empty"
	OutcomeExecutionError  Outcome = "execution_error"
	OutcomeUnexpectedError Outcome = "unexpected_error"

	// Turn-level outcomes recorded in the audit log.
	OutcomeResolutionEmpty  Outcome = "resolution_empty"
	OutcomeRetriesExhausted Outcome = "retries_exhausted"
	OutcomeGeneralChat      Outcome = "general_chat"
)

// ExecutionResult is the tagged union produced by one EXECUTE step.
// Exactly one of Rows and Fault is meaningful, selected by Outcome.
type ExecutionResult struct {
	Outcome Outcome
	Rows    *catalog.QueryResult // set when Outcome is success or empty
	Fault   error                // set when Outcome is an error kind
}

// ResolutionResult is the table resolver's answer: Found carries the
// deduplicated accepted names, NotFound means no catalog table could be
// confidently matched and the turn must not reach synthesis.
type ResolutionResult struct {
	Found  bool
	Tables []string
}

// Fixed user-facing messages. These are terminal renderings, never
// inspected by the controller.
const (
	msgResolutionEmpty  = "Could not identify relevant tables for your query. Please try rephrasing."
	msgExecutionError   = "I'm sorry, I was unable to look that up just now. Please try rephrasing your question."
	msgRetriesExhausted = "I'm sorry, I could not find an answer to your question. Please try rephrasing it, or contact the college office for assistance."
	msgUnexpectedError  = "I'm sorry, something went wrong while processing your question. Please try again in a moment."
)
