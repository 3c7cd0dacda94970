// Package audit appends one structured record per completed turn to an
// append-only log file for operational review.
package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TurnRecord is what gets persisted for one turn. Raw fault detail
// lives only here, never in user-facing answers.
type TurnRecord struct {
	TurnID    string
	SessionID string
	Question  string
	Tables    []string
	Query     string
	Answer    string
	Outcome   string
	Detail    string
}

// Logger writes turn records asynchronously. A full queue or a failed
// write drops the record; auditing must never abort or delay a turn.
type Logger struct {
	log *zap.Logger

	queue chan TurnRecord
	done  chan struct{}
	once  sync.Once
}

// New opens (or creates) the JSON audit log at path and starts the
// writer goroutine.
func New(path string) (*Logger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit log directory: %w", err)
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}

	l := &Logger{
		log:   log,
		queue: make(chan TurnRecord, 256),
		done:  make(chan struct{}),
	}
	go l.run()
	return l, nil
}

// Record enqueues a turn record. Non-blocking: if the queue is full the
// record is dropped.
func (l *Logger) Record(rec TurnRecord) {
	select {
	case l.queue <- rec:
	default:
	}
}

// Close drains the queue and flushes the underlying log.
func (l *Logger) Close() {
	l.once.Do(func() {
		close(l.queue)
		<-l.done
		_ = l.log.Sync()
	})
}

func (l *Logger) run() {
	defer close(l.done)
	for rec := range l.queue {
		l.log.Info("turn",
			zap.String("turn_id", rec.TurnID),
			zap.String("session_id", rec.SessionID),
			zap.String("question", rec.Question),
			zap.Strings("tables", rec.Tables),
			zap.String("query", rec.Query),
			zap.String("answer", rec.Answer),
			zap.String("outcome", rec.Outcome),
			zap.String("detail", rec.Detail),
		)
	}
}
