package location

import (
	"context"
	"sync"

	"pinledger/internal/core"
	"pinledger/internal/log"
)

const feedBuffer = 16

// Feed is a push-based Source: positions reported over HTTP or AMQP are
// published here and fanned out to every subscriber.
type Feed struct {
	mu     sync.Mutex
	subs   map[uint64]*subscription
	nextID uint64
	last   *core.LocationSample
	logger *log.Logger
}

func NewFeed() *Feed {
	return &Feed{
		subs:   make(map[uint64]*subscription),
		logger: log.Default(log.ComponentLocation),
	}
}

// WithLogger replaces the default logger.
func (f *Feed) WithLogger(logger *log.Logger) *Feed {
	f.logger = logger.WithComponent(log.ComponentLocation)
	return f
}

// Subscribe registers a subscriber. The subscription ends when ctx is done
// or Close is called.
func (f *Feed) Subscribe(ctx context.Context) (Subscription, error) {
	f.mu.Lock()
	f.nextID++
	id := f.nextID
	sub := newSubscription(feedBuffer, func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	})
	f.subs[id] = sub
	f.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			sub.finish(nil)
		case <-sub.done:
		}
	}()
	return sub, nil
}

// Publish delivers a sample to all subscribers and returns how many accepted it.
func (f *Feed) Publish(sample core.LocationSample) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := sample
	f.last = &s

	delivered := 0
	for id, sub := range f.subs {
		if sub.send(sample) {
			delivered++
		} else {
			f.logger.Warn("Dropped location sample for slow subscriber", "subscriber", id)
		}
	}
	return delivered
}

// Last returns the most recently published sample.
func (f *Feed) Last() (core.LocationSample, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.last == nil {
		return core.LocationSample{}, false
	}
	return *f.last, true
}

// Subscribers returns the number of live subscriptions.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Close ends every subscription.
func (f *Feed) Close() {
	f.mu.Lock()
	subs := make([]*subscription, 0, len(f.subs))
	for id, s := range f.subs {
		subs = append(subs, s)
		delete(f.subs, id)
	}
	f.mu.Unlock()

	for _, s := range subs {
		s.finish(nil)
	}
}
