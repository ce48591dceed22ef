package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pinledger/internal/amqp"
	"pinledger/internal/cache"
	"pinledger/internal/core"
	"pinledger/internal/log"
)

const snapshotKey = "snapshot"

// ExpenseStore is the persistence the ledger needs.
type ExpenseStore interface {
	AddExpense(ctx context.Context, amount float64, description string) (core.Expense, error)
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	ListExpenses(ctx context.Context) ([]core.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
}

// EventPublisher receives ledger events; nil disables publishing.
type EventPublisher interface {
	Publish(ctx context.Context, queue string, v any) error
}

// LedgerService validates submissions, writes them to the store and serves a
// cached snapshot that is dropped after every mutation.
type LedgerService struct {
	store       ExpenseStore
	snapshots   *cache.LRUCache[core.Snapshot]
	events      EventPublisher
	eventsQueue string
	logger      *log.Logger

	// generation counts mutations; a snapshot read across one is not cached.
	mu         sync.Mutex
	generation uint64
}

func NewLedgerService(store ExpenseStore, snapshotTTL time.Duration) *LedgerService {
	if snapshotTTL <= 0 {
		snapshotTTL = 5 * time.Minute
	}
	return &LedgerService{
		store:     store,
		snapshots: cache.NewLRUCache[core.Snapshot](1, snapshotTTL),
		logger:    log.Default(log.ComponentLedger),
	}
}

// WithLogger replaces the default logger.
func (s *LedgerService) WithLogger(logger *log.Logger) *LedgerService {
	s.logger = logger.WithComponent(log.ComponentLedger)
	return s
}

// WithEvents publishes expense.created / expense.deleted messages to queue.
func (s *LedgerService) WithEvents(p EventPublisher, queue string) *LedgerService {
	s.events = p
	s.eventsQueue = queue
	return s
}

// Cache exposes the snapshot cache so a cache.Manager can sweep it.
func (s *LedgerService) Cache() *cache.LRUCache[core.Snapshot] {
	return s.snapshots
}

// Submit validates the raw form values and stores the expense. Nothing is
// written when validation fails.
func (s *LedgerService) Submit(ctx context.Context, amountText, description string) (core.Expense, error) {
	draft, err := core.NewExpense(amountText, description)
	if err != nil {
		return core.Expense{}, err
	}

	e, err := s.store.AddExpense(ctx, draft.Amount, draft.Description)
	if err != nil {
		s.logger.Op(ctx, "add_expense", err, log.FieldAmount, draft.Amount)
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.invalidate()

	s.publish(ctx, amqp.NewExpenseEventMessage(amqp.ExpenseCreated, e.ID, e.Amount, e.Description))
	return e, nil
}

// Delete removes one expense by id.
func (s *LedgerService) Delete(ctx context.Context, id int64) error {
	existing, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		s.logger.Op(ctx, "delete_expense", err, log.FieldExpenseID, id)
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	s.invalidate()

	s.publish(ctx, amqp.NewExpenseEventMessage(amqp.ExpenseDeleted, id, existing.Amount, existing.Description))
	return nil
}

// Get returns one expense by id.
func (s *LedgerService) Get(ctx context.Context, id int64) (core.Expense, error) {
	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return e, nil
}

// Snapshot returns every expense with the total, from cache when possible.
func (s *LedgerService) Snapshot(ctx context.Context) (core.Snapshot, error) {
	if snap, ok := s.snapshots.Get(snapshotKey); ok {
		return snap, nil
	}

	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		s.logger.Op(ctx, "list_expenses", err)
		return core.Snapshot{}, fmt.Errorf("list expenses: %w", err)
	}

	snap := core.NewSnapshot(expenses)
	s.mu.Lock()
	if s.generation == gen {
		s.snapshots.Set(snapshotKey, snap)
	}
	s.mu.Unlock()
	return snap, nil
}

// invalidate runs after every store mutation.
func (s *LedgerService) invalidate() {
	s.mu.Lock()
	s.generation++
	s.snapshots.Purge()
	s.mu.Unlock()
}

func (s *LedgerService) publish(ctx context.Context, msg *amqp.ExpenseEventMessage) {
	if s.events == nil {
		return
	}
	// The ledger write already succeeded; a lost event is only logged.
	if err := s.events.Publish(ctx, s.eventsQueue, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish expense event",
			"type", msg.Type, log.FieldExpenseID, msg.ExpenseID, log.FieldError, err)
	}
}
