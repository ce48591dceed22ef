package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{-1, 1 * time.Second},
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{10, 30 * time.Second},
		{64, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"closed sentinel", amqp091.ErrClosed, true},
		{"wrapped closed sentinel", fmt.Errorf("publish: %w", amqp091.ErrClosed), true},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"other error", errors.New("some other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestLocationMessageFromJSON(t *testing.T) {
	msg, err := LocationMessageFromJSON([]byte(`{"latitude":37.7749,"longitude":-122.4194,"accuracy":5}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Latitude != 37.7749 || msg.Longitude != -122.4194 || msg.Accuracy != 5 {
		t.Fatalf("unexpected message %+v", msg)
	}
	if msg.Timestamp.IsZero() {
		t.Fatalf("missing timestamp should default to now")
	}

	if _, err := LocationMessageFromJSON([]byte(`{`)); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestNewNotificationMessage(t *testing.T) {
	a := NewNotificationMessage(1, "Cafe B", "Nearby place", "You are near Cafe B", "en", 88.6)
	b := NewNotificationMessage(1, "Cafe B", "Nearby place", "You are near Cafe B", "en", 88.6)
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected unique ids, got %q and %q", a.ID, b.ID)
	}
	if a.Timestamp.IsZero() {
		t.Fatalf("expected timestamp")
	}

	decoded, err := NotificationMessageFromJSON(mustJSON(t, a))
	if err != nil || decoded.Body != a.Body || decoded.PlaceID != 1 {
		t.Fatalf("round trip mismatch: %+v err=%v", decoded, err)
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}
