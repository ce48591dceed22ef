package notify

import (
	"context"
	"fmt"

	"pinledger/internal/amqp"
)

// Publisher is the part of the AMQP client used for fire-and-forget sends.
type Publisher interface {
	Publish(ctx context.Context, queue string, v any) error
}

// QueueNotifier hands notifications to the broker for a separate worker to deliver.
type QueueNotifier struct {
	publisher Publisher
	queue     string
}

func NewQueueNotifier(publisher Publisher, queue string) *QueueNotifier {
	return &QueueNotifier{publisher: publisher, queue: queue}
}

func (q *QueueNotifier) Notify(ctx context.Context, n Notification) error {
	msg := amqp.NewNotificationMessage(n.PlaceID, n.Place, n.Title, n.Body, n.Language, n.Distance)
	if !n.At.IsZero() {
		msg.Timestamp = n.At
	}
	if err := q.publisher.Publish(ctx, q.queue, msg); err != nil {
		return fmt.Errorf("queue notification for %s: %w", n.Place, err)
	}
	return nil
}

// FromMessage converts a queued message back to a Notification.
func FromMessage(m *amqp.NotificationMessage) Notification {
	return Notification{
		PlaceID:  m.PlaceID,
		Place:    m.Place,
		Title:    m.Title,
		Body:     m.Body,
		Language: m.Language,
		Distance: m.Distance,
		At:       m.Timestamp,
	}
}
