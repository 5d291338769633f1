package infra

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker is rejecting calls.
var ErrCircuitOpen = errors.New("circuit breaker open")

// CircuitBreaker isolates the venue client from a failing endpoint: after
// enough consecutive failures calls are rejected immediately until a probe
// succeeds. Thread-safe.
type CircuitBreaker struct {
	name string
	mu   sync.Mutex

	failures    int
	open        bool
	lastFailure time.Time

	failureThreshold int
	cooldown         time.Duration
}

// NewCircuitBreaker opens after failureThreshold consecutive failures and
// allows a probe after cooldown.
func NewCircuitBreaker(name string, failureThreshold int, cooldown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		name:             name,
		failureThreshold: failureThreshold,
		cooldown:         cooldown,
	}
}

// Do runs fn under the breaker.
func (cb *CircuitBreaker) Do(fn func() error) error {
	cb.mu.Lock()
	if cb.open {
		if time.Since(cb.lastFailure) < cb.cooldown {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
		// Half-open: let one probe through.
		cb.open = false
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.failures++
		cb.lastFailure = time.Now()
		if cb.failures >= cb.failureThreshold && !cb.open {
			cb.open = true
			slog.Warn("circuit breaker opened", "name", cb.name, "failures", cb.failures)
		}
		return err
	}
	if cb.open || cb.failures > 0 {
		slog.Info("circuit breaker recovered", "name", cb.name)
	}
	cb.failures = 0
	cb.open = false
	return nil
}
