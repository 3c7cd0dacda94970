package engine

import (
	"sync"
	"time"
)

// SessionContext is the per-conversation state. Fields 1-4 describe the
// turn in flight and are cleared by BeginTurn; History survives across
// turns, bounded FIFO.
type SessionContext struct {
	ID                string
	UserQuery         string
	SelectedTables    []string
	SchemaDescription string
	GeneratedQuery    string

	history      []string
	historyBound int

	lastMessage time.Time
}

// NewSessionContext creates a context for a new conversation.
func NewSessionContext(id string, historyBound int) *SessionContext {
	if historyBound <= 0 {
		historyBound = 10
	}
	return &SessionContext{ID: id, historyBound: historyBound}
}

// BeginTurn resets the turn-scoped fields and records the new question.
// History is preserved.
func (s *SessionContext) BeginTurn(question string) {
	s.UserQuery = question
	s.SelectedTables = nil
	s.SchemaDescription = ""
	s.GeneratedQuery = ""
}

// AppendHistory records one entry, evicting the oldest when the bound
// is exceeded. Remaining entries keep their order.
func (s *SessionContext) AppendHistory(entry string) {
	s.history = append(s.history, entry)
	if over := len(s.history) - s.historyBound; over > 0 {
		s.history = append(s.history[:0], s.history[over:]...)
	}
}

// History returns a copy of the conversation history, oldest first.
func (s *SessionContext) History() []string {
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// Allow reports whether a message arriving at now respects the minimum
// inter-message interval, and marks the arrival time if it does. A
// rejected message leaves the previous arrival time in place.
func (s *SessionContext) Allow(now time.Time, minInterval time.Duration) bool {
	if !s.lastMessage.IsZero() && now.Sub(s.lastMessage) < minInterval {
		return false
	}
	s.lastMessage = now
	return true
}

// Registry owns the live session contexts, keyed by connection
// identifier. It belongs to the transport boundary; the pipeline only
// ever receives a single SessionContext per call.
type Registry struct {
	mu           sync.Mutex
	sessions     map[string]*SessionContext
	historyBound int
}

// NewRegistry creates an empty session registry.
func NewRegistry(historyBound int) *Registry {
	return &Registry{
		sessions:     make(map[string]*SessionContext),
		historyBound: historyBound,
	}
}

// GetOrCreate returns the session for id, creating it on first contact.
func (r *Registry) GetOrCreate(id string) *SessionContext {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return s
	}
	s := NewSessionContext(id, r.historyBound)
	r.sessions[id] = s
	return s
}

// Remove destroys the session for id, if any.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
