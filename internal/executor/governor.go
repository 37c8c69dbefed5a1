package executor

import (
	"context"
	"sync"
	"time"
)

// RateGovernor enforces a minimum interval between chain calls process-wide
// to stay under RPC provider limits. One instance is shared by everything
// that talks to the node; holding the lock across the wait is what
// serializes concurrent callers.
type RateGovernor struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

func NewRateGovernor(interval time.Duration) *RateGovernor {
	return &RateGovernor{interval: interval}
}

// Wait blocks until at least the configured interval has elapsed since the
// previous call, then records the current time as the new last-call mark.
func (g *RateGovernor) Wait(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if wait := g.interval - time.Since(g.last); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	g.last = time.Now()
	return nil
}
