package memory

import (
	"context"
	"errors"
	"testing"

	"pinledger/internal/storage"
)

func TestMemoryStoreAddListDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	first, err := s.AddExpense(ctx, 12.5, "Coffee")
	if err != nil || first.ID != 1 {
		t.Fatalf("unexpected add: %+v err=%v", first, err)
	}
	second, _ := s.AddExpense(ctx, 3, "Bus")

	if err := s.DeleteExpense(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, _ := s.ListExpenses(ctx)
	if len(list) != 1 || list[0].ID != second.ID {
		t.Fatalf("unexpected list after delete: %+v", list)
	}

	third, _ := s.AddExpense(ctx, 1, "Gum")
	if third.ID != 3 {
		t.Errorf("ids must not be reused, got %d", third.ID)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.DeleteExpense(ctx, 42); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("delete: want ErrNotFound, got %v", err)
	}
	if _, err := s.GetExpense(ctx, 42); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("get: want ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreListIsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.AddExpense(ctx, 1, "a")

	list, _ := s.ListExpenses(ctx)
	list[0].Description = "changed"

	got, _ := s.GetExpense(ctx, 1)
	if got.Description != "a" {
		t.Errorf("store mutated through list: %q", got.Description)
	}
}
