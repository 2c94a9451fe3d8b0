// Package ratelimit provides an in-process sliding-window limiter used to
// throttle login attempts per client address.
package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindowLimiter tracks attempt timestamps per key and rejects a key
// once it has made more than maxAttempts attempts within the window.
type SlidingWindowLimiter struct {
	mu          sync.Mutex
	maxAttempts int
	window      time.Duration
	attempts    map[string][]time.Time
	now         func() time.Time
}

// NewSlidingWindowLimiter creates a limiter allowing maxAttempts per window for each key.
func NewSlidingWindowLimiter(maxAttempts int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		maxAttempts: maxAttempts,
		window:      window,
		attempts:    make(map[string][]time.Time),
		now:         time.Now,
	}
}

// Allow records an attempt for key and reports whether it is within the limit.
// The attempt is counted regardless of the outcome of the guarded operation,
// so repeated failures and repeated successes consume the same budget.
func (l *SlidingWindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := l.attempts[key][:0]
	for _, t := range l.attempts[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= l.maxAttempts {
		l.attempts[key] = recent
		return false
	}

	l.attempts[key] = append(recent, now)
	return true
}

// Reset clears the recorded attempts for key.
func (l *SlidingWindowLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
}

// Prune drops keys whose every attempt has left the window. Called
// opportunistically; the limiter stays correct without it, it only bounds
// memory on long-running processes.
func (l *SlidingWindowLimiter) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	for key, times := range l.attempts {
		live := false
		for _, t := range times {
			if t.After(cutoff) {
				live = true
				break
			}
		}
		if !live {
			delete(l.attempts, key)
		}
	}
}
