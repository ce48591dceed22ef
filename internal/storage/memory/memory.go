// Package memory is a process-local expense store. Ids are assigned the way
// SQLite AUTOINCREMENT does: increasing and never reused.
package memory

import (
	"context"
	"fmt"
	"sync"

	"pinledger/internal/core"
	"pinledger/internal/storage"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Expense
}

func New() *Store {
	return &Store{nextID: 1}
}

// AddExpense stores the expense and returns it with its assigned id.
func (s *Store) AddExpense(_ context.Context, amount float64, description string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := core.Expense{ID: s.nextID, Amount: amount, Description: description}
	s.nextID++
	s.items = append(s.items, e)
	return e, nil
}

func (s *Store) GetExpense(_ context.Context, id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		return s.items[i], nil
	}
	return core.Expense{}, fmt.Errorf("get expense %d: %w", id, storage.ErrNotFound)
}

// ListExpenses returns a copy ordered by id.
func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.items...), nil
}

func (s *Store) DeleteExpense(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("delete expense %d: %w", id, storage.ErrNotFound)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) index(id int64) int {
	for i, e := range s.items {
		if e.ID == id {
			return i
		}
	}
	return -1
}
