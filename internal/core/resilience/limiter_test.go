package resilience

import (
	"testing"
	"time"
)

func TestSlidingLimiterAllowsUpToLimit(t *testing.T) {
	clk := &clock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := NewSlidingLimiter(3, time.Minute)
	l.now = clk.now

	for i := 0; i < 3; i++ {
		if ok, _ := l.Allow(); !ok {
			t.Fatalf("call %d rejected inside limit", i)
		}
	}
	ok, wait := l.Allow()
	if ok {
		t.Fatal("4th call allowed over limit")
	}
	if wait != time.Minute {
		t.Errorf("wait = %v, want 1m", wait)
	}
}

func TestSlidingLimiterWindowSlides(t *testing.T) {
	clk := &clock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := NewSlidingLimiter(2, time.Minute)
	l.now = clk.now

	l.Allow()
	clk.advance(30 * time.Second)
	l.Allow()

	if ok, wait := l.Allow(); ok || wait != 30*time.Second {
		t.Fatalf("got ok=%v wait=%v, want blocked for 30s", ok, wait)
	}

	// First call ages out.
	clk.advance(31 * time.Second)
	if ok, _ := l.Allow(); !ok {
		t.Fatal("call rejected after window slid")
	}
}

func TestSlidingLimiterRemaining(t *testing.T) {
	clk := &clock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := NewSlidingLimiter(5, time.Minute)
	l.now = clk.now

	if got := l.Remaining(); got != 5 {
		t.Fatalf("Remaining = %d, want 5", got)
	}
	l.Allow()
	l.Allow()
	if got := l.Remaining(); got != 3 {
		t.Fatalf("Remaining = %d, want 3", got)
	}
}
