package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type (
	// Expense is a single ledger entry. ID is assigned by the store.
	Expense struct {
		ID          int64
		Amount      float64
		Description string
	}

	// Snapshot is the list of stored expenses together with their total.
	Snapshot struct {
		Expenses []Expense
		Total    float64
	}

	// Coordinates is a latitude/longitude pair in degrees.
	Coordinates struct {
		Latitude  float64
		Longitude float64
	}

	PointOfInterest struct {
		ID   int
		Name string
		Coordinates
	}

	// LocationSample is a position reported by a location source.
	LocationSample struct {
		Coordinates
		Accuracy  float64 // meters
		Timestamp time.Time
	}
)

var (
	ErrEmptyAmount      = errors.New("empty amount")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
)

// ValidationError reports which submitted field was rejected.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NewExpense builds an unsaved expense from raw form input. Both fields must
// be present and the amount must parse as a number.
func NewExpense(amountText, description string) (Expense, error) {
	description = strings.TrimSpace(description)
	if strings.TrimSpace(amountText) == "" {
		return Expense{}, &ValidationError{Field: "amount", Err: ErrEmptyAmount}
	}
	if description == "" {
		return Expense{}, &ValidationError{Field: "description", Err: ErrEmptyDescription}
	}
	amount, err := ParseAmount(amountText)
	if err != nil {
		return Expense{}, &ValidationError{Field: "amount", Err: err}
	}
	return Expense{Amount: amount, Description: description}, nil
}

func (e Expense) Validate() error {
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	return nil
}

// NewSnapshot copies the expenses and computes their total.
func NewSnapshot(expenses []Expense) Snapshot {
	items := make([]Expense, len(expenses))
	copy(items, expenses)
	return Snapshot{Expenses: items, Total: Total(items)}
}

// Find returns the expense with the given id.
func (s Snapshot) Find(id int64) (Expense, bool) {
	for _, e := range s.Expenses {
		if e.ID == id {
			return e, true
		}
	}
	return Expense{}, false
}

// Sample builds a location sample stamped with the current time.
func Sample(lat, lon, accuracy float64) LocationSample {
	return LocationSample{
		Coordinates: Coordinates{Latitude: lat, Longitude: lon},
		Accuracy:    accuracy,
		Timestamp:   time.Now(),
	}
}
