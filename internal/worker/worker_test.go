package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"pinledger/internal/amqp"
	"pinledger/internal/core"
	"pinledger/internal/log"
	"pinledger/internal/notify"
)

func quietLogger(buf *bytes.Buffer) *log.Logger {
	return log.New(log.Config{Component: log.ComponentWorker, Output: buf})
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestHandleNotification(t *testing.T) {
	var got []notify.Notification
	n := notify.NotifierFunc(func(_ context.Context, n notify.Notification) error {
		got = append(got, n)
		return nil
	})
	w := NewNotificationWorker(n, quietLogger(&bytes.Buffer{}))

	msg := amqp.NewNotificationMessage(2, "Cafe B", "Nearby place", "You are near Cafe B", "en", 88.6)
	if err := w.HandleNotification(context.Background(), mustJSON(t, msg)); err != nil {
		t.Fatalf("HandleNotification() error = %v", err)
	}
	if len(got) != 1 || got[0].Body != "You are near Cafe B" || got[0].PlaceID != 2 {
		t.Fatalf("unexpected notifications: %+v", got)
	}
}

func TestHandleNotificationMalformed(t *testing.T) {
	w := NewNotificationWorker(notify.LogNotifier{}, quietLogger(&bytes.Buffer{}))

	for _, body := range []string{"not json", `{"id":"x"}`} {
		err := w.HandleNotification(context.Background(), []byte(body))
		if !errors.Is(err, amqp.ErrMalformed) {
			t.Errorf("body %q: error = %v, want ErrMalformed", body, err)
		}
	}
}

func TestHandleNotificationSendFailureIsAcked(t *testing.T) {
	var buf bytes.Buffer
	failing := notify.NotifierFunc(func(context.Context, notify.Notification) error {
		return errors.New("telegram down")
	})
	w := NewNotificationWorker(failing, quietLogger(&buf))

	msg := amqp.NewNotificationMessage(1, "Restaurant A", "Nearby place", "You are near Restaurant A", "en", 0)
	if err := w.HandleNotification(context.Background(), mustJSON(t, msg)); err != nil {
		t.Fatalf("send failures must not requeue, got %v", err)
	}
	if !strings.Contains(buf.String(), "telegram down") {
		t.Errorf("failure not logged: %s", buf.String())
	}
}

type sinkFunc func(core.LocationSample) int

func (f sinkFunc) Publish(s core.LocationSample) int { return f(s) }

func TestHandleLocation(t *testing.T) {
	var got []core.LocationSample
	w := NewLocationWorker(sinkFunc(func(s core.LocationSample) int {
		got = append(got, s)
		return 1
	}), quietLogger(&bytes.Buffer{}))

	body := `{"latitude":37.7749,"longitude":-122.4194,"accuracy":12}`
	if err := w.HandleLocation(context.Background(), []byte(body)); err != nil {
		t.Fatalf("HandleLocation() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d samples", len(got))
	}
	if got[0].Latitude != 37.7749 || got[0].Accuracy != 12 || got[0].Timestamp.IsZero() {
		t.Errorf("unexpected sample %+v", got[0])
	}

	if err := w.HandleLocation(context.Background(), []byte("{")); !errors.Is(err, amqp.ErrMalformed) {
		t.Errorf("error = %v, want ErrMalformed", err)
	}
}

func TestHandleExpenseEvent(t *testing.T) {
	var buf bytes.Buffer
	w := NewEventWorker(quietLogger(&buf))

	msg := amqp.NewExpenseEventMessage(amqp.ExpenseCreated, 7, 12.5, "Coffee")
	if err := w.HandleExpenseEvent(context.Background(), mustJSON(t, msg)); err != nil {
		t.Fatalf("HandleExpenseEvent() error = %v", err)
	}
	if !strings.Contains(buf.String(), "expense_id=7") || !strings.Contains(buf.String(), "operation=expense.created") {
		t.Errorf("unexpected log: %s", buf.String())
	}

	msg.Type = "expense.updated"
	if err := w.HandleExpenseEvent(context.Background(), mustJSON(t, msg)); !errors.Is(err, amqp.ErrMalformed) {
		t.Errorf("error = %v, want ErrMalformed", err)
	}
}
