package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rkvadlamudi/campusql/internal/audit"
	"github.com/rkvadlamudi/campusql/internal/catalog"
	"github.com/rkvadlamudi/campusql/internal/prompts"
)

// Engine is the turn-level facade: it routes a message through intent
// classification and either the query pipeline or general chat, keeps
// the session history, and records the turn in the audit log.
type Engine struct {
	llm        LLMClient
	names      *catalog.NameList
	classifier *Classifier
	resolver   *Resolver
	assembler  *Assembler
	executor   *Executor
	audit      *audit.Logger

	institute   string
	callTimeout time.Duration
}

// Options configures New.
type Options struct {
	LLM         LLMClient
	Store       catalog.Store
	Names       *catalog.NameList
	Audit       *audit.Logger
	Institute   string
	SampleRows  int
	FuzzyCutoff float64
	MaxAttempts int
	CallTimeout time.Duration
	Fallback    TableLookup // optional resolver fallback
}

// New wires the pipeline components.
func New(opts Options) *Engine {
	synthesizer := NewSynthesizer(opts.LLM)
	narrator := NewNarrator(opts.LLM, opts.Institute)
	return &Engine{
		llm:         opts.LLM,
		names:       opts.Names,
		classifier:  NewClassifier(opts.LLM),
		resolver:    NewResolver(opts.LLM, opts.FuzzyCutoff, nil, opts.Fallback),
		assembler:   NewAssembler(opts.Store, opts.SampleRows),
		executor:    NewExecutor(opts.Store, synthesizer, narrator, opts.MaxAttempts),
		audit:       opts.Audit,
		institute:   opts.Institute,
		callTimeout: opts.CallTimeout,
	}
}

// HandleMessage runs one full turn for the session and returns the
// user-facing answer. Every failure kind has already been converted to
// natural language by the time this returns.
func (e *Engine) HandleMessage(ctx context.Context, sess *SessionContext, text string) string {
	if e.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.callTimeout)
		defer cancel()
	}

	sess.BeginTurn(text)

	var answer string
	var outcome Outcome
	var detail string

	if e.classifier.Classify(ctx, text) == IntentGeneral {
		answer, outcome, detail = e.generalChat(ctx, sess)
	} else {
		answer, outcome, detail = e.answerFromData(ctx, sess)
	}

	sess.AppendHistory("User: " + text)
	sess.AppendHistory("Assistant: " + answer)

	if e.audit != nil {
		e.audit.Record(audit.TurnRecord{
			TurnID:    uuid.NewString(),
			SessionID: sess.ID,
			Question:  text,
			Tables:    sess.SelectedTables,
			Query:     sess.GeneratedQuery,
			Answer:    answer,
			Outcome:   string(outcome),
			Detail:    detail,
		})
	}
	return answer
}

// answerFromData is the domain branch: resolve tables, assemble
// grounding, then synthesize and execute with retry.
func (e *Engine) answerFromData(ctx context.Context, sess *SessionContext) (string, Outcome, string) {
	resolution, err := e.resolver.Resolve(ctx, sess.UserQuery, e.names.Snapshot())
	if err != nil {
		return msgUnexpectedError, OutcomeUnexpectedError, err.Error()
	}
	if !resolution.Found {
		return msgResolutionEmpty, OutcomeResolutionEmpty, ""
	}
	sess.SelectedTables = resolution.Tables

	grounding, err := e.assembler.Assemble(ctx, resolution.Tables)
	if err != nil {
		return msgUnexpectedError, OutcomeUnexpectedError, err.Error()
	}
	sess.SchemaDescription = grounding.Schema

	return e.executor.ExecuteWithRetry(ctx, sess, grounding)
}

// generalChat answers small talk without touching the database.
func (e *Engine) generalChat(ctx context.Context, sess *SessionContext) (string, Outcome, string) {
	messages := []ChatMessage{
		{Role: RoleSystem, Content: prompts.MustBuild(prompts.GeneralChatSystem, map[string]string{
			"institute": e.institute,
		})},
	}
	for _, entry := range sess.History() {
		role := RoleUser
		if strings.HasPrefix(entry, "Assistant: ") {
			role = RoleAssistant
		}
		messages = append(messages, ChatMessage{
			Role:    role,
			Content: strings.TrimPrefix(strings.TrimPrefix(entry, "Assistant: "), "User: "),
		})
	}
	messages = append(messages, ChatMessage{Role: RoleUser, Content: sess.UserQuery})

	answer, err := e.llm.Complete(ctx, messages, ChatOptions{Temperature: 0.7, MaxOutputTokens: 200})
	if err != nil {
		return msgUnexpectedError, OutcomeUnexpectedError, err.Error()
	}
	return strings.TrimSpace(answer), OutcomeGeneralChat, ""
}
