// Package location delivers device positions to the proximity monitor.
//
// A Source hands out Subscriptions. Every subscription owns its sample
// channel and any timer feeding it; Close releases both and is safe to call
// more than once.
package location

import (
	"context"
	"errors"
	"sync"

	"pinledger/internal/core"
)

// ErrPermissionDenied is returned by providers when location access was refused.
var ErrPermissionDenied = errors.New("location permission denied")

// Source produces location samples for subscribers.
type Source interface {
	Subscribe(ctx context.Context) (Subscription, error)
}

// Subscription is a live stream of samples.
type Subscription interface {
	// Samples is closed when the subscription ends.
	Samples() <-chan core.LocationSample
	// Err reports why the subscription ended, nil after a plain Close.
	Err() error
	Close() error
}

type subscription struct {
	mu      sync.Mutex
	ch      chan core.LocationSample
	done    chan struct{}
	closed  bool
	err     error
	onClose func()
}

func newSubscription(buffer int, onClose func()) *subscription {
	return &subscription{
		ch:      make(chan core.LocationSample, buffer),
		done:    make(chan struct{}),
		onClose: onClose,
	}
}

func (s *subscription) Samples() <-chan core.LocationSample { return s.ch }

func (s *subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *subscription) Close() error {
	s.finish(nil)
	return nil
}

// send delivers without blocking; a full buffer drops the sample.
func (s *subscription) send(sample core.LocationSample) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- sample:
		return true
	default:
		return false
	}
}

func (s *subscription) finish(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.err = err
	close(s.ch)
	close(s.done)
	onClose := s.onClose
	s.mu.Unlock()

	if onClose != nil {
		onClose()
	}
}
