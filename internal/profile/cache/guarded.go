package cache

import (
	"context"
	"errors"
	"log/slog"

	"censusdesk/internal/profile/models"
	id "censusdesk/pkg/domain"
	"censusdesk/pkg/platform/circuit"
	"censusdesk/pkg/platform/sentinel"
)

// Backend is the cache the guard protects.
type Backend interface {
	Get(ctx context.Context, actorID id.ActorID) (*models.Profile, error)
	Set(ctx context.Context, p *models.Profile) error
	Invalidate(ctx context.Context, actorID id.ActorID) error
}

// Guarded stops calling an unhealthy cache. While the breaker is open, Get
// reports a miss and Set is skipped, so requests go straight to the store.
// Invalidate is always attempted.
type Guarded struct {
	backend Backend
	breaker *circuit.Breaker
}

func NewGuarded(backend Backend, breaker *circuit.Breaker) *Guarded {
	return &Guarded{backend: backend, breaker: breaker}
}

// NewBreaker returns a breaker that logs its transitions.
func NewBreaker(logger *slog.Logger, opts ...circuit.Option) *circuit.Breaker {
	opts = append(opts, circuit.WithStateChange(func(name string, from, to circuit.State) {
		logger.Warn("profile cache circuit changed state",
			"breaker", name,
			"from", from.String(),
			"to", to.String(),
		)
	}))
	return circuit.New("profile_cache", opts...)
}

func (g *Guarded) Get(ctx context.Context, actorID id.ActorID) (*models.Profile, error) {
	if !g.breaker.Allow() {
		return nil, sentinel.ErrCacheMiss
	}
	p, err := g.backend.Get(ctx, actorID)
	g.record(err)
	return p, err
}

func (g *Guarded) Set(ctx context.Context, p *models.Profile) error {
	if !g.breaker.Allow() {
		return nil
	}
	err := g.backend.Set(ctx, p)
	g.record(err)
	return err
}

func (g *Guarded) Invalidate(ctx context.Context, actorID id.ActorID) error {
	return g.backend.Invalidate(ctx, actorID)
}

func (g *Guarded) record(err error) {
	if err == nil || errors.Is(err, sentinel.ErrCacheMiss) {
		g.breaker.Success()
		return
	}
	g.breaker.Failure()
}
