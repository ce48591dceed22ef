// Package notify delivers proximity alerts.
package notify

import (
	"context"
	"errors"
	"time"

	"pinledger/internal/geo"
	"pinledger/internal/log"
)

// Notification is a ready-to-send alert for one nearby place.
type Notification struct {
	PlaceID  int
	Place    string
	Title    string
	Body     string
	Language string
	Distance float64 // meters
	At       time.Time
}

// Notifier dispatches notifications. Implementations do not retry.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }

// Compose builds the localized notification for a nearby place.
func Compose(lang string, m geo.Match) Notification {
	tag := Resolve(lang)
	title, body := Text(tag, m.Place.Name)
	return Notification{
		PlaceID:  m.Place.ID,
		Place:    m.Place.Name,
		Title:    title,
		Body:     body,
		Language: tag,
		Distance: m.Distance,
		At:       time.Now(),
	}
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	Logger *log.Logger
}

func (l LogNotifier) Notify(ctx context.Context, n Notification) error {
	logger := l.Logger
	if logger == nil {
		logger = log.Default(log.ComponentNotify)
	}
	logger.InfoContext(ctx, "Proximity notification",
		log.FieldPlace, n.Place,
		"title", n.Title,
		"body", n.Body,
		log.FieldDistance, n.Distance)
	return nil
}

// Multi sends every notification to all notifiers and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
