package resilience

import (
	"sync"
	"time"
)

// SlidingLimiter rejects calls once more than maxRequests have occurred
// within the trailing window, and reports how long the caller should wait.
type SlidingLimiter struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	calls       []time.Time

	now func() time.Time
}

// NewSlidingLimiter creates a limiter allowing maxRequests per window.
func NewSlidingLimiter(maxRequests int, window time.Duration) *SlidingLimiter {
	return &SlidingLimiter{
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// Allow records one call attempt. When the window is full it returns false
// and the estimated wait until a slot frees up.
func (l *SlidingLimiter) Allow() (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.calls[:0]
	for _, t := range l.calls {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.calls = kept

	if len(l.calls) >= l.maxRequests {
		wait := l.calls[0].Add(l.window).Sub(now)
		if wait < 0 {
			wait = 0
		}
		return false, wait
	}

	l.calls = append(l.calls, now)
	return true, 0
}

// Remaining reports how many calls are left in the current window.
func (l *SlidingLimiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	active := 0
	for _, t := range l.calls {
		if t.After(cutoff) {
			active++
		}
	}
	return l.maxRequests - active
}
