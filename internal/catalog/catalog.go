// Package catalog exposes the relational store behind the assistant: table
// enumeration, column and foreign-key introspection, row sampling, and
// read-only query execution. Everything here is fetched fresh per turn; the
// only process-wide state is the table-name list, refreshed by the watcher.
package catalog

import (
	"context"
	"sort"
	"sync"
)

// Column is one column definition of a catalog table.
type Column struct {
	Name string
	Type string
}

// ForeignKey is one edge of the schema graph.
type ForeignKey struct {
	Table     string
	Column    string
	RefTable  string
	RefColumn string
}

// QueryResult holds the outcome of a successful read-only query. A result
// with zero rows is valid; the caller decides what emptiness means.
type QueryResult struct {
	Columns []string
	Rows    [][]string
}

// Empty reports whether the query matched no rows.
func (r *QueryResult) Empty() bool {
	return len(r.Rows) == 0
}

// Store is the storage collaborator contract. Implementations must be safe
// for concurrent use by independent sessions.
type Store interface {
	// Tables enumerates all user tables.
	Tables(ctx context.Context) ([]string, error)
	// Columns returns the ordered column definitions of a table.
	Columns(ctx context.Context, table string) ([]Column, error)
	// ForeignKeys returns the outgoing foreign-key edges of a table.
	ForeignKeys(ctx context.Context, table string) ([]ForeignKey, error)
	// RowCount counts the rows of a table.
	RowCount(ctx context.Context, table string) (int64, error)
	// Sample returns up to n representative rows: a plain scan when the
	// table has at most n rows, a uniform random sample otherwise.
	Sample(ctx context.Context, table string, n int) (*QueryResult, error)
	// Query executes an arbitrary read-only statement.
	Query(ctx context.Context, query string) (*QueryResult, error)

	Close() error
}

// NameList is the process-wide, read-mostly list of catalog table names. It
// is computed once at startup and swapped atomically when the watcher sees
// the database file change.
type NameList struct {
	mu    sync.RWMutex
	names []string
}

// NewNameList builds a NameList from an initial snapshot.
func NewNameList(names []string) *NameList {
	nl := &NameList{}
	nl.set(names)
	return nl
}

// Refresh re-reads the table list from the store and swaps it in.
func (nl *NameList) Refresh(ctx context.Context, store Store) error {
	names, err := store.Tables(ctx)
	if err != nil {
		return err
	}
	nl.set(names)
	return nil
}

// Snapshot returns a copy of the current table names.
func (nl *NameList) Snapshot() []string {
	nl.mu.RLock()
	defer nl.mu.RUnlock()
	out := make([]string, len(nl.names))
	copy(out, nl.names)
	return out
}

func (nl *NameList) set(names []string) {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)

	nl.mu.Lock()
	nl.names = sorted
	nl.mu.Unlock()
}
