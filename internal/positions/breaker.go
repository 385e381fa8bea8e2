package positions

import (
	"sync"
	"time"

	"github.com/gregcastro23/WhatToEatNext-sub005/internal/metrics"
)

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

// breaker trips a provider out of the chain after repeated failures.
// Closed passes every call; open rejects until the timeout elapses; the
// first call after that probes in half-open state, and its outcome
// decides whether the breaker closes again.
type breaker struct {
	name      string
	threshold int
	openFor   time.Duration

	mu       sync.Mutex
	state    breakerState
	failures int
	openedAt time.Time
}

func newBreaker(name string, threshold int, openFor time.Duration) *breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if openFor <= 0 {
		openFor = 60 * time.Second
	}
	return &breaker{name: name, threshold: threshold, openFor: openFor}
}

// Allow reports whether a call may proceed.
func (b *breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed:
		return true
	case breakerOpen:
		if time.Since(b.openedAt) >= b.openFor {
			b.setState(breakerHalfOpen)
			return true
		}
		return false
	default: // half-open: one probe at a time
		return true
	}
}

// Success records a successful call and closes the breaker.
func (b *breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.setState(breakerClosed)
}

// Failure records a failed call, tripping the breaker at the threshold.
func (b *breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == breakerHalfOpen {
		b.openedAt = time.Now()
		b.setState(breakerOpen)
		return
	}

	b.failures++
	if b.failures >= b.threshold {
		b.openedAt = time.Now()
		b.setState(breakerOpen)
	}
}

func (b *breaker) setState(s breakerState) {
	b.state = s
	metrics.SetBreakerState(b.name, float64(s))
}
