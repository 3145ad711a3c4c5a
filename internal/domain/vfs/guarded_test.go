package vfs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GriffinCanCode/WebOS/internal/infrastructure/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDisk = errors.New("disk I/O error")

// flakyBackend fails every call while broken is set
type flakyBackend struct {
	*MemoryBackend
	broken atomic.Bool
	calls  atomic.Int32
}

func (f *flakyBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.calls.Add(1)
	if f.broken.Load() {
		return nil, false, errDisk
	}
	return f.MemoryBackend.Get(ctx, key)
}

func (f *flakyBackend) Set(ctx context.Context, key string, value []byte) error {
	f.calls.Add(1)
	if f.broken.Load() {
		return errDisk
	}
	return f.MemoryBackend.Set(ctx, key, value)
}

func TestGuardedBackendTripsAndRecovers(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }

	inner := &flakyBackend{MemoryBackend: NewMemoryBackend()}
	breaker := resilience.New("storage", resilience.Settings{
		FailureThreshold: 2,
		Cooldown:         time.Minute,
		Now:              clock,
	})
	backend := NewGuardedBackend(inner, breaker)
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "k", []byte("v")))

	inner.broken.Store(true)
	for range 2 {
		_, _, err := backend.Get(ctx, "k")
		assert.ErrorIs(t, err, errDisk)
	}

	calls := inner.calls.Load()
	_, _, err := backend.Get(ctx, "k")
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, calls, inner.calls.Load(), "open breaker must not reach the backend")

	inner.broken.Store(false)
	now = now.Add(time.Minute)

	value, ok, err := backend.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), value)
	assert.Equal(t, resilience.StateClosed, breaker.State())
}

func TestStoreOverGuardedBackend(t *testing.T) {
	inner := &flakyBackend{MemoryBackend: NewMemoryBackend()}
	backend := NewGuardedBackend(inner, resilience.New("storage", resilience.Settings{FailureThreshold: 1}))
	store, _ := newGrantedStore(t, backend)
	ctx := context.Background()

	_, err := store.WriteFile(ctx, "a.txt", "hello")
	require.NoError(t, err)

	inner.broken.Store(true)
	_, err = store.WriteFile(ctx, "b.txt", "x")
	require.ErrorIs(t, err, errDisk)

	_, _, err = store.ReadFile(ctx, "a.txt")
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
}
