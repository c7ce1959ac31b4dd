package places

import (
	"context"
	"log"
	"sync"
	"time"
)

// RateGate paces outbound provider calls with a fixed per-minute window.
// The window resets a full minute after the last reset, not on a sliding
// basis; bursts straddling a reset can briefly exceed the ceiling. That is
// an accepted approximation, kept because the cache absorbs most traffic.
//
// All state is process-local. The gate is an explicit instance so tests and
// future per-tenant setups can construct their own.
type RateGate struct {
	mu          sync.Mutex
	ceiling     int
	window      time.Duration
	cooldown    time.Duration
	count       int
	windowStart time.Time

	now func() time.Time
}

// NewRateGate creates a gate allowing ceiling calls per minute. After a
// provider-side throttle the gate sleeps cooldown before handing the error
// back to the caller.
func NewRateGate(ceiling int, cooldown time.Duration) *RateGate {
	return &RateGate{
		ceiling:  ceiling,
		window:   time.Minute,
		cooldown: cooldown,
		now:      time.Now,
	}
}

// Wait blocks until the caller may issue a provider call. When the window
// ceiling has been reached it sleeps until the window resets, then admits
// the caller; it never errors because of local throttling. Context
// cancellation aborts the wait.
func (g *RateGate) Wait(ctx context.Context) error {
	for {
		g.mu.Lock()
		now := g.now()
		if g.windowStart.IsZero() || now.Sub(g.windowStart) >= g.window {
			g.windowStart = now
			g.count = 0
		}
		if g.count < g.ceiling {
			g.count++
			g.mu.Unlock()
			return nil
		}
		wait := g.windowStart.Add(g.window).Sub(now)
		g.mu.Unlock()

		log.Printf("[GATE] Provider ceiling reached, waiting %v for window reset", wait)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// ReportThrottled is called when the provider itself signals "too many
// requests". It sleeps the fixed cooldown; retrying is the caller's
// decision, not the gate's.
func (g *RateGate) ReportThrottled() {
	log.Printf("[GATE] Provider throttled us, cooling down for %v", g.cooldown)
	time.Sleep(g.cooldown)
}
