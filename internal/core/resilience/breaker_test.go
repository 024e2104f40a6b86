package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testSettings() Settings {
	return Settings{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
		MonitoringPeriod: 60 * time.Second,
	}
}

// clock is a controllable time source for breaker tests.
type clock struct {
	t time.Time
}

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker() (*CircuitBreaker, *clock) {
	c := &clock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker("test", testSettings())
	cb.now = c.now
	return cb, c
}

var errUpstream = errors.New("upstream boom")

func failing(context.Context) error    { return errUpstream }
func succeeding(context.Context) error { return nil }

func TestBreakerOpensAfterThreshold(t *testing.T) {
	cb, _ := newTestBreaker()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if cb.State() != StateClosed {
			t.Fatalf("call %d: state = %v, want closed", i, cb.State())
		}
		if err := cb.Execute(ctx, failing); !errors.Is(err, errUpstream) {
			t.Fatalf("call %d: err = %v", i, err)
		}
	}

	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}
}

func TestBreakerFailsFastWithoutInvoking(t *testing.T) {
	cb, _ := newTestBreaker()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(ctx, failing)
	}

	invoked := false
	err := cb.Execute(ctx, func(context.Context) error {
		invoked = true
		return nil
	})
	if !errors.Is(err, ErrOpen) {
		t.Fatalf("err = %v, want ErrOpen", err)
	}
	if invoked {
		t.Error("wrapped call ran while breaker was open")
	}
}

func TestBreakerHalfOpenProbeAndClose(t *testing.T) {
	cb, clk := newTestBreaker()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(ctx, failing)
	}
	clk.advance(31 * time.Second)

	// First probe moves to half-open and succeeds.
	if err := cb.Execute(ctx, succeeding); err != nil {
		t.Fatalf("probe 1: %v", err)
	}
	if cb.State() != StateHalfOpen {
		t.Fatalf("state = %v, want half-open", cb.State())
	}

	// Second consecutive success closes.
	if err := cb.Execute(ctx, succeeding); err != nil {
		t.Fatalf("probe 2: %v", err)
	}
	if cb.State() != StateClosed {
		t.Fatalf("state = %v, want closed", cb.State())
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	cb, clk := newTestBreaker()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(ctx, failing)
	}
	clk.advance(31 * time.Second)

	if err := cb.Execute(ctx, failing); !errors.Is(err, errUpstream) {
		t.Fatalf("probe err = %v", err)
	}
	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open after failed probe", cb.State())
	}
}

func TestBreakerSlidingWindowForgetsOldFailures(t *testing.T) {
	cb, clk := newTestBreaker()
	ctx := context.Background()

	_ = cb.Execute(ctx, failing)
	_ = cb.Execute(ctx, failing)

	// The first two failures age out of the 60s monitoring window.
	clk.advance(61 * time.Second)

	_ = cb.Execute(ctx, failing)
	if cb.State() != StateClosed {
		t.Fatalf("state = %v, want closed; stale failures must not count", cb.State())
	}
}

func TestRegistryReturnsSameBreakerPerName(t *testing.T) {
	r := NewRegistry(testSettings())
	a := r.Get("price-source")
	b := r.Get("price-source")
	if a != b {
		t.Error("same name returned different breakers")
	}
	if r.Get("other") == a {
		t.Error("different names shared a breaker")
	}
}

func TestRegistryStats(t *testing.T) {
	r := NewRegistry(testSettings())
	r.Get("price-source")
	stats := r.Stats()
	if _, ok := stats["price-source"]; !ok {
		t.Errorf("stats missing price-source: %v", stats)
	}
}
