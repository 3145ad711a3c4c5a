/*
Package resilience provides a circuit breaker for the backend's external
dependencies, currently the on-disk file store.

# States

  - Closed: calls pass through; consecutive failures are counted
  - Open: calls fail fast with ErrCircuitOpen until the cooldown ends
  - Half-Open: one probe call decides between Closed and Open

Transitions:

	Closed --[threshold failures]--> Open --[cooldown]--> Half-Open --[success]--> Closed
	                                   ^                      |
	                                   +-------[failure]------+

Context cancellation and deadline errors are not counted as failures.

# Usage

	breaker := resilience.New("sqlite", resilience.Settings{
		FailureThreshold: 5,
		Cooldown:         30 * time.Second,
	})
	err := breaker.Do(func() error {
		return db.Ping()
	})
*/
package resilience
