package vfs

import (
	"context"

	"github.com/GriffinCanCode/WebOS/internal/infrastructure/resilience"
)

// GuardedBackend routes every call through a circuit breaker, so a failing
// disk answers with resilience.ErrCircuitOpen instead of piling up requests
type GuardedBackend struct {
	backend Backend
	breaker *resilience.Breaker
}

// NewGuardedBackend wraps backend with breaker
func NewGuardedBackend(backend Backend, breaker *resilience.Breaker) *GuardedBackend {
	return &GuardedBackend{backend: backend, breaker: breaker}
}

func (g *GuardedBackend) Get(ctx context.Context, key string) (value []byte, ok bool, err error) {
	err = g.breaker.Do(func() error {
		var err error
		value, ok, err = g.backend.Get(ctx, key)
		return err
	})
	return value, ok, err
}

func (g *GuardedBackend) Set(ctx context.Context, key string, value []byte) error {
	return g.breaker.Do(func() error {
		return g.backend.Set(ctx, key, value)
	})
}

func (g *GuardedBackend) Remove(ctx context.Context, key string) error {
	return g.breaker.Do(func() error {
		return g.backend.Remove(ctx, key)
	})
}

func (g *GuardedBackend) Clear(ctx context.Context) error {
	return g.breaker.Do(func() error {
		return g.backend.Clear(ctx)
	})
}

func (g *GuardedBackend) Keys(ctx context.Context) (keys []string, err error) {
	err = g.breaker.Do(func() error {
		var err error
		keys, err = g.backend.Keys(ctx)
		return err
	})
	return keys, err
}
