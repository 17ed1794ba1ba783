// Package memory provides an in-memory spreadsheet stand-in for tests and
// local development without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"budgetbook/internal/core"
	ports "budgetbook/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows map[string]core.Transaction
	next int
}

var _ ports.Exporter = (*Store)(nil)

func New() *Store {
	return &Store{rows: make(map[string]core.Transaction)}
}

// Append stores the transaction and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	ref := fmt.Sprintf("mem:%d", s.next)
	s.rows[ref] = t
	return ref, nil
}

// Clear removes the referenced row. Clearing an unknown reference is a
// no-op, matching how clearing an already blank sheet row behaves.
func (s *Store) Clear(_ context.Context, rowRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, rowRef)
	return nil
}

// Row returns the transaction stored under ref, if any.
func (s *Store) Row(ref string) (core.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.rows[ref]
	return t, ok
}

// Len reports the number of stored rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
