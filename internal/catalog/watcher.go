package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes the database file and refreshes the process-wide
// table-name list when the ETL side replaces or rewrites it. Events are
// debounced because a bulk import touches the file many times in a burst.
type Watcher struct {
	dbPath   string
	names    *NameList
	store    Store
	onChange func() // optional extra callback after a refresh

	watcher      *fsnotify.Watcher
	debounceTime time.Duration

	mu      sync.Mutex
	pending bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher for the database file backing the store.
func NewWatcher(dbPath string, names *NameList, store Store) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		dbPath:       dbPath,
		names:        names,
		store:        store,
		watcher:      watcher,
		debounceTime: 500 * time.Millisecond,
		ctx:          ctx,
		cancel:       cancel,
	}, nil
}

// OnChange sets a callback invoked after each successful refresh.
func (w *Watcher) OnChange(callback func()) {
	w.onChange = callback
}

// Start begins watching. The parent directory is watched rather than the
// file itself so that an atomic replace (write temp, rename over) is seen.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.dbPath)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.wg.Add(1)
	go w.loop()

	slog.Info("Watching database file for changes", "path", w.dbPath)
	return nil
}

// Stop ends watching and waits for the event loop to drain.
func (w *Watcher) Stop() {
	w.cancel()
	w.watcher.Close()
	w.wg.Wait()
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.debounceTime)
	defer ticker.Stop()

	base := filepath.Base(w.dbPath)
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			w.pending = true
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Watcher error", "error", err)

		case <-ticker.C:
			w.mu.Lock()
			pending := w.pending
			w.pending = false
			w.mu.Unlock()
			if !pending {
				continue
			}

			refreshCtx, cancel := context.WithTimeout(w.ctx, 10*time.Second)
			err := w.names.Refresh(refreshCtx, w.store)
			cancel()
			if err != nil {
				slog.Warn("Table list refresh failed", "error", err)
				continue
			}
			slog.Info("Data change detected, table list refreshed", "tables", len(w.names.Snapshot()))
			if w.onChange != nil {
				w.onChange()
			}
		}
	}
}
