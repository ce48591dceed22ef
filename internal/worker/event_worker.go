package worker

import (
	"context"
	"fmt"

	"pinledger/internal/amqp"
	"pinledger/internal/log"
)

// EventWorker writes ledger events to the log as an audit trail.
type EventWorker struct {
	logger *log.Logger
}

func NewEventWorker(logger *log.Logger) *EventWorker {
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentWorker})
	}
	return &EventWorker{logger: logger}
}

// HandleExpenseEvent is an amqp.Handler.
func (w *EventWorker) HandleExpenseEvent(ctx context.Context, body []byte) error {
	msg, err := amqp.ExpenseEventMessageFromJSON(body)
	if err != nil {
		return fmt.Errorf("%w: %v", amqp.ErrMalformed, err)
	}

	switch msg.Type {
	case amqp.ExpenseCreated, amqp.ExpenseDeleted:
	default:
		return fmt.Errorf("%w: unknown event type %q", amqp.ErrMalformed, msg.Type)
	}

	w.logger.InfoContext(ctx, "Expense event",
		append(log.NewFields().
			WithOperation(msg.Type).
			WithExpense(msg.ExpenseID, msg.Amount, msg.Description).
			ToSlice(), "event_id", msg.ID, "at", msg.Timestamp)...)
	return nil
}
