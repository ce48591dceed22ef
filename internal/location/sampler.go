package location

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"pinledger/internal/core"
	"pinledger/internal/geo"
	"pinledger/internal/log"
)

// PositionProvider answers one-shot "current position" requests.
type PositionProvider interface {
	CurrentPosition(ctx context.Context) (core.LocationSample, error)
}

// SamplerConfig mirrors a high-accuracy watch: poll every Interval and only
// report moves of at least MinDistance meters.
type SamplerConfig struct {
	Interval    time.Duration
	MinDistance float64
}

func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{Interval: 10 * time.Second, MinDistance: 50}
}

// Sampler polls a PositionProvider on a cron schedule.
type Sampler struct {
	provider PositionProvider
	cfg      SamplerConfig
	logger   *log.Logger
}

func NewSampler(provider PositionProvider, cfg SamplerConfig) *Sampler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultSamplerConfig().Interval
	}
	return &Sampler{provider: provider, cfg: cfg, logger: log.Default(log.ComponentLocation)}
}

// WithLogger replaces the default logger.
func (s *Sampler) WithLogger(logger *log.Logger) *Sampler {
	s.logger = logger.WithComponent(log.ComponentLocation)
	return s
}

type samplerState struct {
	mu   sync.Mutex
	last *core.Coordinates
}

// Subscribe takes an immediate position fix and then keeps sampling until
// ctx ends or the subscription is closed. A permission denial on the first
// fix is returned directly; a later one ends the subscription with that error.
func (s *Sampler) Subscribe(ctx context.Context) (Subscription, error) {
	first, err := s.provider.CurrentPosition(ctx)
	if errors.Is(err, ErrPermissionDenied) {
		s.logger.WarnContext(ctx, "Permission to access location was denied")
		return nil, err
	}

	sub := newSubscription(1, nil)
	state := &samplerState{}
	if err == nil {
		s.forward(sub, state, first)
	} else {
		s.logger.WarnContext(ctx, "Initial position unavailable", log.FieldError, err)
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	spec := fmt.Sprintf("@every %s", s.cfg.Interval)
	if _, err := c.AddFunc(spec, func() { s.tick(ctx, sub, state) }); err != nil {
		sub.finish(err)
		return nil, fmt.Errorf("schedule sampling: %w", err)
	}
	c.Start()

	go func() {
		select {
		case <-ctx.Done():
			sub.finish(nil)
		case <-sub.done:
		}
		<-c.Stop().Done()
	}()

	return sub, nil
}

func (s *Sampler) tick(ctx context.Context, sub *subscription, state *samplerState) {
	pos, err := s.provider.CurrentPosition(ctx)
	if errors.Is(err, ErrPermissionDenied) {
		s.logger.WarnContext(ctx, "Location permission revoked, stopping sampling")
		sub.finish(err)
		return
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Location sample skipped", log.FieldError, err)
		return
	}
	s.forward(sub, state, pos)
}

// forward sends pos unless it is closer than MinDistance to the last
// forwarded position.
func (s *Sampler) forward(sub *subscription, state *samplerState, pos core.LocationSample) bool {
	state.mu.Lock()
	defer state.mu.Unlock()

	if state.last != nil && geo.Distance(*state.last, pos.Coordinates) < s.cfg.MinDistance {
		return false
	}
	if !sub.send(pos) {
		return false
	}
	c := pos.Coordinates
	state.last = &c
	return true
}
