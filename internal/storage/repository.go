package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"pinledger/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no expense matches the requested id.
var ErrNotFound = errors.New("expense not found")

type SQLiteRepository struct {
	db      *sql.DB
	path    string
	queries *Queries
}

// NewSQLiteRepository opens the database handle shared by every store
// operation and applies the schema. Callers own the handle and must Close it.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Statements are issued sequentially over one connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		path:    dbPath,
		queries: New(db),
	}

	if err := repo.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks that the database handle is usable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// EnsureSchema creates the expenses table if it does not exist yet.
func (r *SQLiteRepository) EnsureSchema(ctx context.Context) error {
	if err := RunMigrations(r.path); err != nil {
		slog.ErrorContext(ctx, "Error creating expenses table", "error", err, "path", r.path)
		return fmt.Errorf("ensure schema: %w", err)
	}
	slog.DebugContext(ctx, "Expenses table ready", "path", r.path)
	return nil
}

// AddExpense inserts one row and returns it with its generated id.
func (r *SQLiteRepository) AddExpense(ctx context.Context, amount float64, description string) (core.Expense, error) {
	row, err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		Amount:      amount,
		Description: description,
	})
	if err != nil {
		slog.ErrorContext(ctx, "Error adding expense", "error", err)
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", row.ID,
		"description", row.Description,
		"amount", row.Amount)

	return toCore(row), nil
}

// GetExpense returns a single expense by id.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row, err := r.queries.GetExpense(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return toCore(row), nil
}

// ListExpenses returns every stored expense ordered by id.
func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.queries.ListExpenses(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Error fetching expenses", "error", err)
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	expenses := make([]core.Expense, len(rows))
	for i, row := range rows {
		expenses[i] = toCore(row)
	}
	return expenses, nil
}

// DeleteExpense removes the row with the given id.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteExpense(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "Error deleting expense", "id", id, "error", err)
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete expense %d: %w", id, ErrNotFound)
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id, "changes", n)
	return nil
}

func toCore(row Expense) core.Expense {
	return core.Expense{
		ID:          row.ID,
		Amount:      row.Amount,
		Description: row.Description,
	}
}
