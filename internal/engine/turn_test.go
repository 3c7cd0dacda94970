package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/rkvadlamudi/campusql/internal/catalog"
)

// routedLLM answers each prompt shape of a full turn.
type routedLLM struct {
	fakeLLM
	intent    string
	selection string
	query     string
	answer    string
}

func newRoutedLLM(intent, selection, query, answer string) *routedLLM {
	l := &routedLLM{intent: intent, selection: selection, query: query, answer: answer}
	l.fn = func(messages []ChatMessage, _ ChatOptions) (string, error) {
		switch {
		case promptContains(messages, "classify visitor messages"):
			return l.intent, nil
		case promptContains(messages, "table selection assistant"):
			return l.selection, nil
		case promptContains(messages, "SQL generator"):
			return l.query, nil
		default:
			return l.answer, nil
		}
	}
	return l
}

func newTestEngine(llm LLMClient, store catalog.Store, names []string) *Engine {
	return New(Options{
		LLM:         llm,
		Store:       store,
		Names:       catalog.NewNameList(names),
		Institute:   "CIET",
		SampleRows:  10,
		FuzzyCutoff: 0.6,
		MaxAttempts: 3,
	})
}

func TestHandleMessageDomainTurn(t *testing.T) {
	store := collegeStore()
	store.queryFn = func(string) (*catalog.QueryResult, error) {
		return &catalog.QueryResult{Columns: []string{"BusNo"}, Rows: [][]string{{"B12"}}}, nil
	}
	llm := newRoutedLLM("domain", "Transport", "SELECT BusNo FROM Transport", "The college operates bus B12.")
	e := newTestEngine(llm, store, store.tables)

	sess := NewSessionContext("sid", 10)
	answer := e.HandleMessage(context.Background(), sess, "list all bus routes")

	if answer != "The college operates bus B12." {
		t.Errorf("unexpected answer: %q", answer)
	}
	if len(sess.SelectedTables) != 1 || sess.SelectedTables[0] != "Transport" {
		t.Errorf("SelectedTables = %v", sess.SelectedTables)
	}
	if sess.GeneratedQuery != "SELECT BusNo FROM Transport" {
		t.Errorf("GeneratedQuery = %q", sess.GeneratedQuery)
	}

	h := sess.History()
	if len(h) != 2 || h[0] != "User: list all bus routes" || !strings.HasPrefix(h[1], "Assistant: ") {
		t.Errorf("unexpected history: %v", h)
	}
}

func TestHandleMessageResolutionEmptyShortCircuits(t *testing.T) {
	store := collegeStore()
	store.queryFn = func(string) (*catalog.QueryResult, error) {
		t.Error("no query may run when resolution finds no table")
		return nil, nil
	}
	llm := newRoutedLLM("domain", "nothing matches here", "", "")
	e := newTestEngine(llm, store, store.tables)

	answer := e.HandleMessage(context.Background(), NewSessionContext("sid", 10), "what is the meaning of life")
	if !strings.Contains(answer, "rephras") {
		t.Errorf("expected rephrase guidance, got %q", answer)
	}
	// Only intent and selection calls may have happened.
	for _, call := range llm.calls {
		if promptContains(call, "SQL generator") {
			t.Error("synthesis must not run after empty resolution")
		}
	}
}

func TestHandleMessageGeneralChatSkipsDatabase(t *testing.T) {
	store := collegeStore()
	store.queryFn = func(string) (*catalog.QueryResult, error) {
		t.Error("general chat must not touch the store")
		return nil, nil
	}
	llm := newRoutedLLM("general", "", "", "Hello! How can I help you with the college today?")
	e := newTestEngine(llm, store, store.tables)

	sess := NewSessionContext("sid", 10)
	answer := e.HandleMessage(context.Background(), sess, "hi there")
	if answer != "Hello! How can I help you with the college today?" {
		t.Errorf("unexpected answer: %q", answer)
	}
	if len(sess.History()) != 2 {
		t.Errorf("general turns must still enter history, got %v", sess.History())
	}
}

func TestHandleMessageHistoryOrderAcrossTurns(t *testing.T) {
	store := collegeStore()
	llm := newRoutedLLM("general", "", "", "Hello.")
	e := newTestEngine(llm, store, store.tables)

	sess := NewSessionContext("sid", 10)
	e.HandleMessage(context.Background(), sess, "hi")
	e.HandleMessage(context.Background(), sess, "how are you")

	h := sess.History()
	want := []string{"User: hi", "Assistant: Hello.", "User: how are you", "Assistant: Hello."}
	if len(h) != len(want) {
		t.Fatalf("history = %v", h)
	}
	for i := range want {
		if h[i] != want[i] {
			t.Errorf("history[%d] = %q, want %q", i, h[i], want[i])
		}
	}
}
