package core

import (
	"context"
	"sync"
	"time"
)

// CircuitBreaker protects a downstream dependency (model gateway,
// retrieval service, data store) from cascading failure.
type CircuitBreaker interface {
	Execute(ctx context.Context, fn func() error) error
	CanExecute() bool
	RecordSuccess()
	RecordFailure()
	State() string
}

// CircuitBreakerConfig configures the in-memory circuit breaker.
type CircuitBreakerConfig struct {
	Threshold        int
	Timeout          time.Duration
	HalfOpenRequests int
}

// DefaultCircuitBreakerConfig mirrors the framework-wide defaults.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Threshold:        5,
		Timeout:          30 * time.Second,
		HalfOpenRequests: 3,
	}
}

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

// memoryCircuitBreaker is an in-process circuit breaker: closed, open,
// half-open, following the standard three-state pattern.
type memoryCircuitBreaker struct {
	mu           sync.Mutex
	cfg          CircuitBreakerConfig
	state        breakerState
	failures     int
	openedAt     time.Time
	halfOpenUsed int
}

// NewCircuitBreaker creates an in-memory circuit breaker with cfg.
func NewCircuitBreaker(cfg CircuitBreakerConfig) CircuitBreaker {
	if cfg.Threshold <= 0 {
		cfg = DefaultCircuitBreakerConfig()
	}
	return &memoryCircuitBreaker{cfg: cfg}
}

func (b *memoryCircuitBreaker) CanExecute() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.canExecuteLocked()
}

func (b *memoryCircuitBreaker) canExecuteLocked() bool {
	switch b.state {
	case stateOpen:
		if time.Since(b.openedAt) >= b.cfg.Timeout {
			b.state = stateHalfOpen
			b.halfOpenUsed = 0
			return true
		}
		return false
	case stateHalfOpen:
		return b.halfOpenUsed < b.cfg.HalfOpenRequests
	default:
		return true
	}
}

func (b *memoryCircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.state = stateClosed
	b.halfOpenUsed = 0
}

func (b *memoryCircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == stateHalfOpen {
		b.state = stateOpen
		b.openedAt = time.Now()
		return
	}
	b.failures++
	if b.failures >= b.cfg.Threshold {
		b.state = stateOpen
		b.openedAt = time.Now()
	}
}

func (b *memoryCircuitBreaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

func (b *memoryCircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	b.mu.Lock()
	if !b.canExecuteLocked() {
		b.mu.Unlock()
		return ErrCircuitBreakerOpen
	}
	if b.state == stateHalfOpen {
		b.halfOpenUsed++
	}
	b.mu.Unlock()

	err := fn()
	if err != nil {
		b.RecordFailure()
		return err
	}
	b.RecordSuccess()
	return nil
}
