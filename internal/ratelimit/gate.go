package ratelimit

import (
	"context"
	"sync/atomic"
)

// ConcurrencyGate is a bounded counting semaphore capping simultaneous
// in-flight fetches independent of domain.
type ConcurrencyGate struct {
	sem     chan struct{}
	waiting int64
}

// NewConcurrencyGate builds a gate with the given capacity.
func NewConcurrencyGate(capacity int) *ConcurrencyGate {
	if capacity < 1 {
		capacity = 1
	}
	return &ConcurrencyGate{sem: make(chan struct{}, capacity)}
}

// Acquire blocks until a slot is free or ctx is done.
func (g *ConcurrencyGate) Acquire(ctx context.Context) error {
	atomic.AddInt64(&g.waiting, 1)
	defer atomic.AddInt64(&g.waiting, -1)

	select {
	case g.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot.
func (g *ConcurrencyGate) Release() {
	select {
	case <-g.sem:
	default:
	}
}

// QueueLength reports how many callers are currently blocked on Acquire.
func (g *ConcurrencyGate) QueueLength() int {
	return int(atomic.LoadInt64(&g.waiting))
}
