// Package resilience guards upstream calls with per-service circuit breakers
// and a sliding-window rate limiter. Breakers live in an injected Registry
// keyed by service name, one breaker per upstream.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"grocery-pricing-engine/internal/pkg/common"
)

// ErrOpen is returned without invoking the wrapped call while a breaker is
// open. Callers match it with errors.Is and short-circuit to cache/fallback.
var ErrOpen = errors.New("circuit breaker open")

// State is the breaker state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// Settings configures a circuit breaker.
type Settings struct {
	FailureThreshold int           // failures within MonitoringPeriod before opening
	SuccessThreshold int           // consecutive half-open successes before closing
	Timeout          time.Duration // open duration before a half-open probe
	MonitoringPeriod time.Duration // sliding window for counting failures
}

// CircuitBreaker is the per-service state machine:
// closed -> open after FailureThreshold failures inside MonitoringPeriod;
// open -> half-open once the timeout elapses; half-open -> closed after
// SuccessThreshold consecutive successes, or straight back to open on any
// failure.
type CircuitBreaker struct {
	name     string
	settings Settings

	mu          sync.Mutex
	state       State
	failures    []time.Time
	successes   int
	lastFailure time.Time
	nextAttempt time.Time

	// test seam; defaults to time.Now
	now func() time.Time
}

// NewCircuitBreaker creates a closed breaker for the named service.
func NewCircuitBreaker(name string, settings Settings) *CircuitBreaker {
	return &CircuitBreaker{
		name:     name,
		settings: settings,
		state:    StateClosed,
		now:      time.Now,
	}
}

// Execute runs fn under the breaker. While open and before the next attempt
// time it fails fast with ErrOpen and never invokes fn.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := cb.allow(); err != nil {
		return err
	}

	err := fn(ctx)
	if err != nil {
		cb.RecordFailure()
		return err
	}
	cb.RecordSuccess()
	return nil
}

func (cb *CircuitBreaker) allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if cb.now().Before(cb.nextAttempt) {
			return fmt.Errorf("%s: %w", cb.name, ErrOpen)
		}
		cb.state = StateHalfOpen
		cb.successes = 0
		common.LogInfo("circuit breaker probing",
			zap.String("service", cb.name),
			zap.String("state", cb.state.String()),
		)
	}
	return nil
}

// RecordFailure counts one failure. A timeout counts the same as any other
// upstream failure.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.now()
	cb.lastFailure = now

	if cb.state == StateHalfOpen {
		cb.trip(now)
		return
	}

	// Drop failures that slid out of the monitoring window.
	cutoff := now.Add(-cb.settings.MonitoringPeriod)
	kept := cb.failures[:0]
	for _, t := range cb.failures {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	cb.failures = append(kept, now)

	if cb.state == StateClosed && len(cb.failures) >= cb.settings.FailureThreshold {
		cb.trip(now)
	}
}

// RecordSuccess counts one success and closes the breaker once enough
// half-open probes succeed.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != StateHalfOpen {
		return
	}
	cb.successes++
	if cb.successes >= cb.settings.SuccessThreshold {
		cb.state = StateClosed
		cb.failures = nil
		cb.successes = 0
		common.LogInfo("circuit breaker closed",
			zap.String("service", cb.name),
		)
	}
}

// trip opens the breaker; caller holds the lock.
func (cb *CircuitBreaker) trip(now time.Time) {
	cb.state = StateOpen
	cb.nextAttempt = now.Add(cb.settings.Timeout)
	cb.failures = nil
	cb.successes = 0
	common.LogWarn("circuit breaker opened",
		zap.String("service", cb.name),
		zap.Time("next_attempt", cb.nextAttempt),
	)
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Stats reports the breaker state for health endpoints.
func (cb *CircuitBreaker) Stats() map[string]interface{} {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return map[string]interface{}{
		"state":        cb.state.String(),
		"failures":     len(cb.failures),
		"successes":    cb.successes,
		"last_failure": cb.lastFailure,
		"next_attempt": cb.nextAttempt,
	}
}

// Registry holds one breaker per upstream service name. It is passed by
// injection so tests and callers never share hidden module state.
type Registry struct {
	mu       sync.Mutex
	settings Settings
	breakers map[string]*CircuitBreaker
}

// NewRegistry creates a breaker registry with shared settings.
func NewRegistry(settings Settings) *Registry {
	return &Registry{
		settings: settings,
		breakers: make(map[string]*CircuitBreaker),
	}
}

// Get returns the breaker for a service, creating it on first use.
func (r *Registry) Get(name string) *CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	cb, ok := r.breakers[name]
	if !ok {
		cb = NewCircuitBreaker(name, r.settings)
		r.breakers[name] = cb
	}
	return cb
}

// Stats reports every registered breaker, keyed by service name.
func (r *Registry) Stats() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]interface{}, len(r.breakers))
	for name, cb := range r.breakers {
		out[name] = cb.Stats()
	}
	return out
}
