package notify

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker is rejecting calls.
var ErrCircuitOpen = errors.New("notifier circuit open")

const (
	defaultBreakerThreshold = 5
	defaultBreakerCooldown  = 30 * time.Second
)

// Breaker is a consecutive-failure circuit breaker for the outbound
// notifier. After threshold consecutive failures it rejects calls until
// the cooldown elapses, then admits a single probe; the probe's outcome
// decides whether the circuit closes or reopens.
type Breaker struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration
	failures  int
	open      bool
	openedAt  time.Time

	now func() time.Time
}

// NewBreaker creates a breaker. Non-positive arguments fall back to
// defaults.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = defaultBreakerThreshold
	}
	if cooldown <= 0 {
		cooldown = defaultBreakerCooldown
	}
	return &Breaker{threshold: threshold, cooldown: cooldown, now: time.Now}
}

// Allow reports whether a call may proceed, returning ErrCircuitOpen
// while the circuit is open.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return nil
	}
	if b.now().Sub(b.openedAt) < b.cooldown {
		return ErrCircuitOpen
	}
	// Half-open: admit one probe. A failure reopens immediately.
	b.open = false
	b.failures = b.threshold - 1
	return nil
}

// Record feeds a call outcome into the breaker.
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		b.failures = 0
		b.open = false
		return
	}
	b.failures++
	if b.failures >= b.threshold {
		b.open = true
		b.openedAt = b.now()
	}
}
