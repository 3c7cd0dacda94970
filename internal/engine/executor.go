package engine

import (
	"context"
	"errors"

	"github.com/rkvadlamudi/campusql/internal/catalog"
	"github.com/rkvadlamudi/campusql/internal/sqlguard"
)

// Executor drives the per-turn state machine:
// SYNTHESIZE -> EXECUTE -> {SUCCESS, EMPTY, ERROR} -> (retry | terminal).
// Attempt 1 synthesizes with exact filters; later attempts broaden to
// wildcard matching. Errors are terminal immediately; only an empty
// result earns another attempt.
type Executor struct {
	store       catalog.Store
	synthesizer *Synthesizer
	narrator    *Narrator
	maxAttempts int
}

// NewExecutor creates the execution and retry controller.
func NewExecutor(store catalog.Store, synthesizer *Synthesizer, narrator *Narrator, maxAttempts int) *Executor {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Executor{store: store, synthesizer: synthesizer, narrator: narrator, maxAttempts: maxAttempts}
}

// ExecuteWithRetry runs the loop for one turn and returns the final
// user-facing answer, the turn outcome and fault detail for the audit
// log. The answer never carries raw fault detail.
func (e *Executor) ExecuteWithRetry(ctx context.Context, sess *SessionContext, grounding Grounding) (answer string, outcome Outcome, detail string) {
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		query, err := e.synthesizer.Synthesize(ctx, sess, grounding, attempt > 1)
		if err != nil {
			return msgUnexpectedError, OutcomeUnexpectedError, err.Error()
		}

		safe, err := sqlguard.Validate(query)
		if err != nil {
			// A query the guard rejects is treated like one the store
			// rejects: regenerating from the same grounding is unlikely
			// to self-correct within the turn.
			sess.GeneratedQuery = query
			return msgExecutionError, OutcomeExecutionError, err.Error()
		}
		sess.GeneratedQuery = safe

		result := e.execute(ctx, safe)
		switch result.Outcome {
		case OutcomeSuccess:
			text, err := e.narrator.Narrate(ctx, sess.UserQuery, result.Rows, safe)
			if err != nil {
				return msgUnexpectedError, OutcomeUnexpectedError, err.Error()
			}
			return text, OutcomeSuccess, ""

		case OutcomeEmpty:
			if attempt < e.maxAttempts {
				continue
			}
			if attempt == 1 {
				// Single-attempt policy: narrate the empty result
				// instead of apologizing about retries that never ran.
				text, err := e.narrator.NarrateEmpty(ctx, sess.UserQuery)
				if err != nil {
					return msgUnexpectedError, OutcomeUnexpectedError, err.Error()
				}
				return text, OutcomeEmpty, ""
			}
			return msgRetriesExhausted, OutcomeRetriesExhausted, ""

		case OutcomeExecutionError:
			return msgExecutionError, OutcomeExecutionError, result.Fault.Error()

		default:
			return msgUnexpectedError, OutcomeUnexpectedError, result.Fault.Error()
		}
	}
	return msgRetriesExhausted, OutcomeRetriesExhausted, ""
}

// execute runs one EXECUTE step and classifies the outcome
// structurally. Zero rows is empty, a store rejection is an execution
// error, a cancelled or timed-out call is unexpected.
func (e *Executor) execute(ctx context.Context, query string) ExecutionResult {
	rows, err := e.store.Query(ctx, query)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return ExecutionResult{Outcome: OutcomeUnexpectedError, Fault: err}
		}
		return ExecutionResult{Outcome: OutcomeExecutionError, Fault: err}
	}
	if rows.Empty() {
		return ExecutionResult{Outcome: OutcomeEmpty, Rows: rows}
	}
	return ExecutionResult{Outcome: OutcomeSuccess, Rows: rows}
}
