package location

import (
	"context"
	"errors"
	"sync"
	"time"

	"pinledger/internal/core"
)

// ErrNoFix is returned when a provider has no position to report yet.
var ErrNoFix = errors.New("no position fix available")

// RouteProvider replays a fixed list of positions, one per call, repeating
// the last one once the route is exhausted.
type RouteProvider struct {
	mu     sync.Mutex
	route  []core.Coordinates
	next   int
	denied bool
}

func NewRouteProvider(route ...core.Coordinates) *RouteProvider {
	return &RouteProvider{route: route}
}

// Deny makes every further call fail with ErrPermissionDenied.
func (p *RouteProvider) Deny() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.denied = true
}

func (p *RouteProvider) CurrentPosition(ctx context.Context) (core.LocationSample, error) {
	if err := ctx.Err(); err != nil {
		return core.LocationSample{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.denied {
		return core.LocationSample{}, ErrPermissionDenied
	}
	if len(p.route) == 0 {
		return core.LocationSample{}, ErrNoFix
	}

	c := p.route[p.next]
	if p.next < len(p.route)-1 {
		p.next++
	}
	return core.LocationSample{Coordinates: c, Accuracy: 5, Timestamp: time.Now()}, nil
}

// FeedProvider answers with the latest sample published on a Feed.
type FeedProvider struct {
	Feed *Feed
}

func (p FeedProvider) CurrentPosition(ctx context.Context) (core.LocationSample, error) {
	if s, ok := p.Feed.Last(); ok {
		return s, nil
	}
	return core.LocationSample{}, ErrNoFix
}
