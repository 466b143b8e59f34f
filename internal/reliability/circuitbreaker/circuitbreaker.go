// Package circuitbreaker provides fast-fail behavior for optional
// dependencies. The feed cache uses it so a flapping Redis degrades feed
// requests to uncached reads instead of adding a timeout to every call.
package circuitbreaker

import (
	"sync"
	"sync/atomic"
	"time"
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

// CircuitBreaker trips open after consecutive failures and probes again
// after a timeout.
type CircuitBreaker struct {
	mu               sync.Mutex
	state            State
	failureCount     int32
	successCount     int32
	lastFailure      atomic.Value // time.Time
	failureThreshold int32
	successThreshold int32
	timeout          time.Duration
}

// New creates a circuit breaker that opens after failureThreshold
// consecutive failures and closes again after successThreshold successful
// probes. While open, Allow returns false until timeout has elapsed.
func New(failureThreshold, successThreshold int32, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		state:            StateClosed,
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		timeout:          timeout,
	}
}

// Allow reports whether a call may proceed, moving open → half-open once
// the timeout has elapsed since the last failure.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		last, _ := cb.lastFailure.Load().(time.Time)
		if time.Since(last) >= cb.timeout {
			cb.state = StateHalfOpen
			cb.successCount = 0
			return true
		}
		return false
	}
	return true
}

// RecordSuccess notes a successful call, closing the breaker after enough
// half-open probes succeed.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			cb.state = StateClosed
			cb.failureCount = 0
			cb.successCount = 0
		}
	case StateClosed:
		cb.failureCount = 0
	}
}

// RecordFailure notes a failed call, tripping the breaker open when the
// threshold is reached. A failure during half-open trips immediately.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailure.Store(time.Now())

	switch cb.state {
	case StateClosed:
		cb.failureCount++
		if cb.failureCount >= cb.failureThreshold {
			cb.state = StateOpen
			cb.failureCount = 0
		}
	case StateHalfOpen:
		cb.state = StateOpen
		cb.successCount = 0
	}
}

// GetState returns the current state
func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
