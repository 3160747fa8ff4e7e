package prismic

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// circuitState represents the state of a circuit breaker
type circuitState int

const (
	stateClosed   circuitState = iota // Normal operation
	stateOpen                         // Host is failing, requests short-circuit
	stateHalfOpen                     // One trial request allowed
)

func (s circuitState) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// circuitBreaker stops calling a content API host after repeated failures
type circuitBreaker struct {
	failures         map[string]int
	lastFailure      map[string]time.Time
	state            map[string]circuitState
	logger           *slog.Logger
	now              func() time.Time
	failureThreshold int
	openDuration     time.Duration
	mu               sync.Mutex
}

func newCircuitBreaker(logger *slog.Logger, threshold int, openDuration time.Duration) *circuitBreaker {
	if threshold <= 0 {
		threshold = 5
	}
	if openDuration <= 0 {
		openDuration = 30 * time.Second
	}
	return &circuitBreaker{
		failureThreshold: threshold,
		openDuration:     openDuration,
		failures:         make(map[string]int),
		lastFailure:      make(map[string]time.Time),
		state:            make(map[string]circuitState),
		logger:           logger,
		now:              time.Now,
	}
}

// canAttempt reports whether a request to host may be sent.
func (cb *circuitBreaker) canAttempt(host string) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.getState(host) {
	case stateOpen:
		lastFail := cb.lastFailure[host]
		if cb.now().Sub(lastFail) > cb.openDuration {
			cb.setState(host, stateHalfOpen)
			return nil
		}
		return fmt.Errorf("circuit open for %s (failures: %d, next retry: %s)",
			host, cb.failures[host], lastFail.Add(cb.openDuration).Format("15:04:05"))
	default:
		return nil
	}
}

// recordSuccess resets the failure count for host
func (cb *circuitBreaker) recordSuccess(host string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	delete(cb.failures, host)
	delete(cb.lastFailure, host)
	if cb.getState(host) != stateClosed {
		cb.setState(host, stateClosed)
	}
}

// recordFailure counts a failed request and opens the circuit at the threshold
func (cb *circuitBreaker) recordFailure(host string, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures[host]++
	cb.lastFailure[host] = cb.now()
	failCount := cb.failures[host]

	// A failed trial request reopens immediately.
	if cb.getState(host) == stateHalfOpen || failCount >= cb.failureThreshold {
		if cb.getState(host) != stateOpen {
			cb.logger.Warn("content api circuit opened",
				"host", host, "failures", failCount, "error", err)
		}
		cb.state[host] = stateOpen
		return
	}

	cb.logger.Debug("content api request failed",
		"host", host, "failures", failCount, "threshold", cb.failureThreshold, "error", err)
}

// getState returns the current state (must be called with lock held)
func (cb *circuitBreaker) getState(host string) circuitState {
	if state, exists := cb.state[host]; exists {
		return state
	}
	return stateClosed
}

// setState changes and logs the state (must be called with lock held)
func (cb *circuitBreaker) setState(host string, state circuitState) {
	cb.state[host] = state
	cb.logger.Info("content api circuit state changed", "host", host, "state", state.String())
}
