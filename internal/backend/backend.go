// Package backend selects the expense store named by DATA_BACKEND.
package backend

import (
	"context"
	"fmt"

	"pinledger/internal/services"
	"pinledger/internal/storage"
	"pinledger/internal/storage/memory"
)

// Backend is a ledger store the process owns for its whole lifetime.
type Backend interface {
	services.ExpenseStore
	Ping(ctx context.Context) error
	Close() error
}

// Type represents the type of backend
type Type string

const (
	SQLite Type = "sqlite"
	Memory Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLite, Memory:
		return true
	default:
		return false
	}
}

// Config holds configuration for backend creation
type Config struct {
	Type         Type
	SQLiteDBPath string
}

// New opens the backend. The caller must Close it.
func New(cfg Config) (Backend, error) {
	switch cfg.Type {
	case SQLite, "":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		return repo, nil
	case Memory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}
