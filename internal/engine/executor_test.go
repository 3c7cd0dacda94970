package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rkvadlamudi/campusql/internal/catalog"
)

// synthesisResponder answers synthesis prompts with query and narration
// prompts with a canned sentence, so executor tests can focus on the
// control flow.
func synthesisResponder(query string) func([]ChatMessage, ChatOptions) (string, error) {
	return func(messages []ChatMessage, _ ChatOptions) (string, error) {
		if promptContains(messages, "SQL generator") {
			return query, nil
		}
		return "Here is your answer.", nil
	}
}

func newTestExecutor(llm LLMClient, store catalog.Store, maxAttempts int) *Executor {
	return NewExecutor(store, NewSynthesizer(llm), NewNarrator(llm, "CIET"), maxAttempts)
}

func domainSession(question string, tables ...string) *SessionContext {
	sess := NewSessionContext("sid", 10)
	sess.BeginTurn(question)
	sess.SelectedTables = tables
	return sess
}

func TestExecuteSuccessFirstAttempt(t *testing.T) {
	store := collegeStore()
	store.queryFn = func(string) (*catalog.QueryResult, error) {
		return &catalog.QueryResult{Columns: []string{"Name"}, Rows: [][]string{{"Dr. K. Rao"}}}, nil
	}
	llm := &fakeLLM{fn: synthesisResponder("SELECT Name FROM Faculty")}
	e := newTestExecutor(llm, store, 3)

	answer, outcome, _ := e.ExecuteWithRetry(context.Background(), domainSession("who is the HOD", "Faculty"), Grounding{})
	if outcome != OutcomeSuccess {
		t.Fatalf("outcome = %v, want success", outcome)
	}
	if answer != "Here is your answer." {
		t.Errorf("unexpected answer: %q", answer)
	}
	if len(store.queries) != 1 {
		t.Errorf("success must terminate the loop, got %d executions", len(store.queries))
	}
}

func TestExecuteEmptyRetriesWithWildcard(t *testing.T) {
	store := collegeStore()
	empty := 0
	store.queryFn = func(string) (*catalog.QueryResult, error) {
		empty++
		if empty == 1 {
			return &catalog.QueryResult{Columns: []string{"Name"}}, nil
		}
		return &catalog.QueryResult{Columns: []string{"Name"}, Rows: [][]string{{"P. Lakshmi"}}}, nil
	}

	var sawWildcard bool
	llm := &fakeLLM{}
	llm.fn = func(messages []ChatMessage, opts ChatOptions) (string, error) {
		if promptContains(messages, "SQL generator") {
			if promptContains(messages, "LIKE with wildcards") {
				sawWildcard = true
			} else if sawWildcard {
				t.Error("exact-mode synthesis after wildcard escalation")
			}
			return "SELECT Name FROM Faculty", nil
		}
		return "Found one faculty member.", nil
	}

	e := newTestExecutor(llm, store, 3)
	answer, outcome, _ := e.ExecuteWithRetry(context.Background(), domainSession("faculty in the CSE department", "Faculty"), Grounding{})

	if outcome != OutcomeSuccess {
		t.Fatalf("outcome = %v, want success on second attempt", outcome)
	}
	if !sawWildcard {
		t.Error("second attempt must synthesize in wildcard mode")
	}
	if len(store.queries) != 2 {
		t.Errorf("expected 2 executions, got %d", len(store.queries))
	}
	if answer != "Found one faculty member." {
		t.Errorf("unexpected answer: %q", answer)
	}
}

func TestExecuteAllEmptyExhaustsRetries(t *testing.T) {
	store := collegeStore()
	store.queryFn = func(string) (*catalog.QueryResult, error) {
		return &catalog.QueryResult{Columns: []string{"BusNo"}}, nil
	}
	llm := &fakeLLM{fn: synthesisResponder("SELECT BusNo FROM Transport")}
	e := newTestExecutor(llm, store, 3)

	answer, outcome, _ := e.ExecuteWithRetry(context.Background(), domainSession("list all bus routes", "Transport"), Grounding{})
	if outcome != OutcomeRetriesExhausted {
		t.Fatalf("outcome = %v, want retries_exhausted", outcome)
	}
	if len(store.queries) != 3 {
		t.Errorf("expected all 3 attempts consumed, got %d", len(store.queries))
	}
	if !strings.Contains(answer, "rephras") {
		t.Errorf("exhausted answer should suggest rephrasing: %q", answer)
	}
}

func TestExecuteSingleAttemptEmptyNarrates(t *testing.T) {
	store := collegeStore()
	store.queryFn = func(string) (*catalog.QueryResult, error) {
		return &catalog.QueryResult{Columns: []string{"BusNo"}}, nil
	}
	llm := &fakeLLM{}
	llm.fn = func(messages []ChatMessage, _ ChatOptions) (string, error) {
		if promptContains(messages, "SQL generator") {
			return "SELECT BusNo FROM Transport", nil
		}
		return "No matching data was found in the records.", nil
	}
	e := newTestExecutor(llm, store, 1)

	answer, outcome, _ := e.ExecuteWithRetry(context.Background(), domainSession("list all bus routes", "Transport"), Grounding{})
	if outcome != OutcomeEmpty {
		t.Fatalf("outcome = %v, want empty", outcome)
	}
	if answer != "No matching data was found in the records." {
		t.Errorf("unexpected answer: %q", answer)
	}
}

func TestExecuteErrorIsTerminalWithOneAttempt(t *testing.T) {
	store := collegeStore()
	store.queryFn = func(string) (*catalog.QueryResult, error) {
		return nil, errors.New("no such column: Salary")
	}
	llm := &fakeLLM{fn: synthesisResponder("SELECT Salary FROM Faculty")}
	e := newTestExecutor(llm, store, 3)

	answer, outcome, detail := e.ExecuteWithRetry(context.Background(), domainSession("faculty salaries", "Faculty"), Grounding{})
	if outcome != OutcomeExecutionError {
		t.Fatalf("outcome = %v, want execution_error", outcome)
	}
	if len(store.queries) != 1 {
		t.Errorf("execution error must consume exactly one attempt, got %d", len(store.queries))
	}
	if strings.Contains(answer, "Salary") || strings.Contains(answer, "column") {
		t.Errorf("raw fault detail leaked into the answer: %q", answer)
	}
	if !strings.Contains(detail, "no such column") {
		t.Errorf("fault detail missing from audit detail: %q", detail)
	}
}

func TestExecuteGuardRejectionIsTerminal(t *testing.T) {
	store := collegeStore()
	store.queryFn = func(string) (*catalog.QueryResult, error) {
		t.Error("a rejected query must never reach the store")
		return nil, nil
	}
	llm := &fakeLLM{fn: synthesisResponder("DROP TABLE Faculty")}
	e := newTestExecutor(llm, store, 3)

	_, outcome, _ := e.ExecuteWithRetry(context.Background(), domainSession("drop the faculty table", "Faculty"), Grounding{})
	if outcome != OutcomeExecutionError {
		t.Fatalf("outcome = %v, want execution_error", outcome)
	}
}

func TestExecuteStoresGeneratedQueryInSession(t *testing.T) {
	store := collegeStore()
	store.queryFn = func(string) (*catalog.QueryResult, error) {
		return &catalog.QueryResult{Columns: []string{"Name"}, Rows: [][]string{{"Dr. K. Rao"}}}, nil
	}
	llm := &fakeLLM{fn: synthesisResponder("```sql\nSELECT Name FROM Faculty\n```")}
	e := newTestExecutor(llm, store, 3)

	sess := domainSession("who is the HOD", "Faculty")
	if _, _, _ = e.ExecuteWithRetry(context.Background(), sess, Grounding{}); sess.GeneratedQuery != "SELECT Name FROM Faculty" {
		t.Errorf("GeneratedQuery = %q", sess.GeneratedQuery)
	}
}

func TestExecuteCancelledContextIsUnexpected(t *testing.T) {
	store := collegeStore()
	store.queryFn = func(string) (*catalog.QueryResult, error) {
		return nil, context.DeadlineExceeded
	}
	llm := &fakeLLM{fn: synthesisResponder("SELECT Name FROM Faculty")}
	e := newTestExecutor(llm, store, 3)

	_, outcome, _ := e.ExecuteWithRetry(context.Background(), domainSession("who is the HOD", "Faculty"), Grounding{})
	if outcome != OutcomeUnexpectedError {
		t.Fatalf("outcome = %v, want unexpected_error", outcome)
	}
	if len(store.queries) != 1 {
		t.Errorf("a timeout must be terminal, got %d executions", len(store.queries))
	}
}
