package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Expense event types carried by ExpenseEventMessage.
const (
	ExpenseCreated = "expense.created"
	ExpenseDeleted = "expense.deleted"
)

// NotificationMessage is a proximity alert waiting to be delivered.
type NotificationMessage struct {
	ID        string    `json:"id"`
	PlaceID   int       `json:"place_id"`
	Place     string    `json:"place"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Language  string    `json:"language"`
	Distance  float64   `json:"distance_m"`
	Timestamp time.Time `json:"timestamp"`
}

// LocationMessage is a device position pushed by a client.
type LocationMessage struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

// ExpenseEventMessage announces a ledger mutation.
type ExpenseEventMessage struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	ExpenseID   int64     `json:"expense_id"`
	Amount      float64   `json:"amount,omitempty"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewNotificationMessage(placeID int, place, title, body, language string, distance float64) *NotificationMessage {
	return &NotificationMessage{
		ID:        uuid.NewString(),
		PlaceID:   placeID,
		Place:     place,
		Title:     title,
		Body:      body,
		Language:  language,
		Distance:  distance,
		Timestamp: time.Now(),
	}
}

func NewExpenseEventMessage(eventType string, expenseID int64, amount float64, description string) *ExpenseEventMessage {
	return &ExpenseEventMessage{
		ID:          uuid.NewString(),
		Type:        eventType,
		ExpenseID:   expenseID,
		Amount:      amount,
		Description: description,
		Timestamp:   time.Now(),
	}
}

// NotificationMessageFromJSON creates a message from JSON bytes
func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// LocationMessageFromJSON creates a message from JSON bytes
func LocationMessageFromJSON(data []byte) (*LocationMessage, error) {
	var msg LocationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	return &msg, nil
}

// ExpenseEventMessageFromJSON creates a message from JSON bytes
func ExpenseEventMessageFromJSON(data []byte) (*ExpenseEventMessage, error) {
	var msg ExpenseEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
