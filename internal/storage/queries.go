package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Expense is a row of the expenses table.
type Expense struct {
	ID          int64
	Amount      float64
	Description string
}

const createExpense = `-- name: CreateExpense :one
INSERT INTO expenses (amount, description)
VALUES (?, ?)
RETURNING id, COALESCE(amount, 0), COALESCE(description, '')
`

type CreateExpenseParams struct {
	Amount      float64
	Description string
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	row := q.db.QueryRowContext(ctx, createExpense, arg.Amount, arg.Description)
	var i Expense
	err := row.Scan(&i.ID, &i.Amount, &i.Description)
	return i, err
}

const getExpense = `-- name: GetExpense :one
SELECT id, COALESCE(amount, 0), COALESCE(description, '')
FROM expenses
WHERE id = ?
`

func (q *Queries) GetExpense(ctx context.Context, id int64) (Expense, error) {
	row := q.db.QueryRowContext(ctx, getExpense, id)
	var i Expense
	err := row.Scan(&i.ID, &i.Amount, &i.Description)
	return i, err
}

const listExpenses = `-- name: ListExpenses :many
SELECT id, COALESCE(amount, 0), COALESCE(description, '')
FROM expenses
ORDER BY id
`

func (q *Queries) ListExpenses(ctx context.Context) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		var i Expense
		if err := rows.Scan(&i.ID, &i.Amount, &i.Description); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteExpense = `-- name: DeleteExpense :execrows
DELETE FROM expenses
WHERE id = ?
`

func (q *Queries) DeleteExpense(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
