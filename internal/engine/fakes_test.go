package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/rkvadlamudi/campusql/internal/catalog"
)

// fakeLLM scripts the generation service. Each call is answered by fn
// and recorded for assertions.
type fakeLLM struct {
	fn    func(messages []ChatMessage, opts ChatOptions) (string, error)
	calls [][]ChatMessage
}

func (f *fakeLLM) Complete(_ context.Context, messages []ChatMessage, opts ChatOptions) (string, error) {
	f.calls = append(f.calls, messages)
	return f.fn(messages, opts)
}

// lastUserPrompt returns the user-role content of call i.
func (f *fakeLLM) userPrompt(i int) string {
	for _, m := range f.calls[i] {
		if m.Role == RoleUser {
			return m.Content
		}
	}
	return ""
}

// promptContains reports whether any message of call i contains s.
func promptContains(messages []ChatMessage, s string) bool {
	for _, m := range messages {
		if strings.Contains(m.Content, s) {
			return true
		}
	}
	return false
}

// fakeStore is an in-memory catalog.Store with a scripted Query.
type fakeStore struct {
	tables  []string
	columns map[string][]catalog.Column
	fks     map[string][]catalog.ForeignKey
	samples map[string]*catalog.QueryResult

	queryFn func(query string) (*catalog.QueryResult, error)
	queries []string
}

func (s *fakeStore) Tables(context.Context) ([]string, error) { return s.tables, nil }

func (s *fakeStore) Columns(_ context.Context, table string) ([]catalog.Column, error) {
	cols, ok := s.columns[table]
	if !ok {
		return nil, fmt.Errorf("no such table: %s", table)
	}
	return cols, nil
}

func (s *fakeStore) ForeignKeys(_ context.Context, table string) ([]catalog.ForeignKey, error) {
	return s.fks[table], nil
}

func (s *fakeStore) RowCount(_ context.Context, table string) (int64, error) {
	if sample, ok := s.samples[table]; ok {
		return int64(len(sample.Rows)), nil
	}
	return 0, nil
}

func (s *fakeStore) Sample(_ context.Context, table string, _ int) (*catalog.QueryResult, error) {
	if sample, ok := s.samples[table]; ok {
		return sample, nil
	}
	return &catalog.QueryResult{}, nil
}

func (s *fakeStore) Query(_ context.Context, query string) (*catalog.QueryResult, error) {
	s.queries = append(s.queries, query)
	return s.queryFn(query)
}

func (s *fakeStore) Close() error { return nil }

// collegeStore builds a fakeStore with the shapes used across tests.
func collegeStore() *fakeStore {
	return &fakeStore{
		tables: []string{"Faculty", "Department_Intake", "Transport"},
		columns: map[string][]catalog.Column{
			"Faculty": {
				{Name: "Name", Type: "TEXT"},
				{Name: "DeptID", Type: "INTEGER"},
				{Name: "Contact", Type: "TEXT"},
			},
			"Department_Intake": {
				{Name: "DeptID", Type: "INTEGER"},
				{Name: "Department", Type: "TEXT"},
			},
			"Transport": {
				{Name: "BusNo", Type: "TEXT"},
				{Name: "RouteStop", Type: "TEXT"},
			},
		},
		fks: map[string][]catalog.ForeignKey{
			"Faculty": {{Table: "Faculty", Column: "DeptID", RefTable: "Department_Intake", RefColumn: "DeptID"}},
		},
		samples: map[string]*catalog.QueryResult{
			"Faculty": {
				Columns: []string{"Name", "DeptID", "Contact"},
				Rows:    [][]string{{"Dr. K. Rao", "1", "9876543210"}},
			},
			"Department_Intake": {
				Columns: []string{"DeptID", "Department"},
				Rows:    [][]string{{"1", "CSE"}},
			},
			"Transport": {
				Columns: []string{"BusNo", "RouteStop"},
			},
		},
	}
}
