package worker

import (
	"context"
	"fmt"

	"pinledger/internal/amqp"
	"pinledger/internal/log"
	"pinledger/internal/notify"
)

// NotificationWorker delivers queued proximity alerts.
type NotificationWorker struct {
	notifier notify.Notifier
	logger   *log.Logger
}

func NewNotificationWorker(notifier notify.Notifier, logger *log.Logger) *NotificationWorker {
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentWorker})
	}
	return &NotificationWorker{notifier: notifier, logger: logger}
}

// HandleNotification is an amqp.Handler. Delivery is attempted once: a failed
// send is logged and the message acknowledged.
func (w *NotificationWorker) HandleNotification(ctx context.Context, body []byte) error {
	msg, err := amqp.NotificationMessageFromJSON(body)
	if err != nil {
		return fmt.Errorf("%w: %v", amqp.ErrMalformed, err)
	}
	if msg.Place == "" || msg.Body == "" {
		return fmt.Errorf("%w: notification %s has no place or body", amqp.ErrMalformed, msg.ID)
	}

	w.logger.InfoContext(ctx, "Processing notification message",
		"message_id", msg.ID,
		log.FieldPlace, msg.Place)

	if err := w.notifier.Notify(ctx, notify.FromMessage(msg)); err != nil {
		w.logger.Op(ctx, log.OpNotify, err, "message_id", msg.ID, log.FieldPlace, msg.Place)
		return nil
	}
	return nil
}
