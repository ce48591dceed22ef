// Package proximity matches location samples against points of interest and
// raises notifications for the ones that are close enough.
package proximity

import (
	"context"
	"strconv"
	"time"

	"pinledger/internal/cache"
	"pinledger/internal/core"
	"pinledger/internal/geo"
	"pinledger/internal/location"
	"pinledger/internal/log"
	"pinledger/internal/notify"
)

// DefaultRadius is the notification threshold in meters.
const DefaultRadius = 100.0

// Monitor evaluates samples one at a time. The only state it keeps between
// samples is the cooldown table, and only when a cooldown is configured.
type Monitor struct {
	places   []core.PointOfInterest
	radius   float64
	notifier notify.Notifier
	language func() string
	window   time.Duration
	cooldown *cache.LRUCache[time.Time]
	now      func() time.Time
	logger   *log.Logger
}

type Option func(*Monitor)

// WithRadius overrides DefaultRadius. Non-positive values are ignored.
func WithRadius(meters float64) Option {
	return func(m *Monitor) {
		if meters > 0 {
			m.radius = meters
		}
	}
}

// WithCooldown suppresses repeat notifications for the same place within d.
// A zero duration keeps the default of notifying on every sample.
func WithCooldown(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.window = d
		}
	}
}

// WithLanguage sets where the notification language is read from on each
// evaluation, typically the current preferences.
func WithLanguage(fn func() string) Option {
	return func(m *Monitor) { m.language = fn }
}

func WithLogger(l *log.Logger) Option {
	return func(m *Monitor) { m.logger = l }
}

// WithClock replaces the cooldown clock.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

func NewMonitor(places []core.PointOfInterest, notifier notify.Notifier, opts ...Option) *Monitor {
	m := &Monitor{
		places:   places,
		radius:   DefaultRadius,
		notifier: notifier,
		language: func() string { return core.LanguageEnglish },
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.window > 0 {
		m.cooldown = cache.NewLRUCache[time.Time](len(m.places)+1, m.window).WithClock(m.now)
	}
	if m.logger == nil {
		m.logger = log.Default(log.ComponentProximity)
	}
	return m
}

func (m *Monitor) Radius() float64 { return m.radius }

// HasCooldown reports whether repeat notifications are rate limited per place.
func (m *Monitor) HasCooldown() bool { return m.cooldown != nil }

// Evaluate notifies once for every place strictly within the radius of the
// sample and returns the places it notified for. A nil sample is ignored.
// Notifier failures are logged and do not stop the remaining places.
func (m *Monitor) Evaluate(ctx context.Context, sample *core.LocationSample) []geo.Match {
	if sample == nil {
		return nil
	}

	lang := m.language()
	var notified []geo.Match
	for _, match := range geo.Within(sample.Coordinates, m.places, m.radius) {
		key := strconv.Itoa(match.Place.ID)
		if m.suppressed(key) {
			m.logger.DebugContext(ctx, "Skipping place in cooldown",
				log.FieldPlace, match.Place.Name)
			continue
		}

		n := notify.Compose(lang, match)
		if err := m.notifier.Notify(ctx, n); err != nil {
			m.logger.Op(ctx, log.OpNotify, err,
				log.NewFields().WithPlace(match.Place.Name, match.Distance).ToSlice()...)
			continue
		}
		m.markNotified(key)
		m.logger.InfoContext(ctx, "Place nearby",
			log.NewFields().WithPlace(match.Place.Name, match.Distance).ToSlice()...)
		notified = append(notified, match)
	}
	return notified
}

func (m *Monitor) suppressed(key string) bool {
	if m.cooldown == nil {
		return false
	}
	_, ok := m.cooldown.Get(key)
	return ok
}

func (m *Monitor) markNotified(key string) {
	if m.cooldown != nil {
		m.cooldown.Set(key, m.now())
	}
}

// Run evaluates every sample from src until ctx ends or the source stops.
// The subscription is always closed on return. The source's terminal error,
// such as a permission denial, is returned; context cancellation is not.
func (m *Monitor) Run(ctx context.Context, src location.Source) error {
	sub, err := src.Subscribe(ctx)
	if err != nil {
		m.logger.Op(ctx, "subscribe", err)
		return err
	}
	defer sub.Close()

	m.logger.InfoContext(ctx, "Proximity monitor started",
		"places", len(m.places),
		"radius_m", m.radius,
		"cooldown", m.HasCooldown())

	for {
		select {
		case <-ctx.Done():
			m.logger.InfoContext(ctx, "Proximity monitor stopped")
			return nil
		case sample, ok := <-sub.Samples():
			if !ok {
				return sub.Err()
			}
			m.Evaluate(ctx, &sample)
		}
	}
}
