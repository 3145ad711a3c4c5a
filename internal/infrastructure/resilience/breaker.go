package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned without calling the dependency while the breaker is open
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures the circuit breaker behavior
type Settings struct {
	// FailureThreshold is how many consecutive failures open the breaker
	FailureThreshold uint32
	// Cooldown is how long the breaker stays open before probing again
	Cooldown time.Duration
	// IsFailure decides which errors count. Context cancellation never does by default.
	IsFailure func(err error) bool
	// OnStateChange is called whenever the state changes, with the breaker lock held
	OnStateChange func(name string, from, to State)
	// Now is the clock; tests replace it
	Now func() time.Time
}

// Breaker stops calling a failing dependency for a cooldown period and lets
// a single probe through afterwards.
type Breaker struct {
	name     string
	settings Settings

	mu        sync.Mutex
	state     State
	failures  uint32
	openUntil time.Time
	probing   bool
}

// New creates a new circuit breaker with the given settings
func New(name string, settings Settings) *Breaker {
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = 5
	}
	if settings.Cooldown == 0 {
		settings.Cooldown = 30 * time.Second
	}
	if settings.IsFailure == nil {
		settings.IsFailure = defaultIsFailure
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}
	return &Breaker{name: name, settings: settings}
}

func defaultIsFailure(err error) bool {
	return err != nil &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// Name returns the name of the circuit breaker
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state of the circuit breaker
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentLocked()
}

// Do runs fn unless the breaker is open. While half-open only one call at a
// time is let through; its outcome closes or reopens the breaker.
func (b *Breaker) Do(fn func() error) error {
	if err := b.before(); err != nil {
		return err
	}

	ok := false
	defer func() {
		if !ok {
			b.after(false)
		}
	}()

	err := fn()
	ok = true
	b.after(!b.settings.IsFailure(err))
	return err
}

func (b *Breaker) before() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.currentLocked() {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if b.probing {
			return ErrCircuitOpen
		}
		b.probing = true
	}
	return nil
}

func (b *Breaker) after(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.probing = false
		if success {
			b.setLocked(StateClosed)
		} else {
			b.setLocked(StateOpen)
		}
	case StateClosed:
		if success {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.settings.FailureThreshold {
			b.setLocked(StateOpen)
		}
	}
}

// currentLocked moves an expired open breaker to half-open
func (b *Breaker) currentLocked() State {
	if b.state == StateOpen && !b.settings.Now().Before(b.openUntil) {
		b.setLocked(StateHalfOpen)
	}
	return b.state
}

func (b *Breaker) setLocked(state State) {
	if b.state == state {
		return
	}
	prev := b.state
	b.state = state
	b.failures = 0

	if state == StateOpen {
		b.openUntil = b.settings.Now().Add(b.settings.Cooldown)
	}
	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, prev, state)
	}
}
