package services

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCheckSuperseded is returned to a check replaced by a newer one for the same key
var ErrCheckSuperseded = errors.New("availability check superseded")

// AvailabilityLookup answers whether value is free for field
type AvailabilityLookup func(ctx context.Context, field, value string) (bool, error)

type pendingCheck struct {
	id     uint64
	cancel context.CancelCauseFunc
}

// AvailabilityChecker debounces username/email availability lookups per client.
// The answer is advisory; sign-up still enforces uniqueness.
type AvailabilityChecker struct {
	lookup AvailabilityLookup
	delay  time.Duration

	mu      sync.Mutex
	seq     uint64
	pending map[string]*pendingCheck
}

// NewAvailabilityChecker waits delay before each lookup
func NewAvailabilityChecker(lookup AvailabilityLookup, delay time.Duration) *AvailabilityChecker {
	return &AvailabilityChecker{
		lookup:  lookup,
		delay:   delay,
		pending: make(map[string]*pendingCheck),
	}
}

// Check waits out the debounce delay and then runs the lookup. A newer Check
// with the same key cancels this one with ErrCheckSuperseded; cancelling ctx
// abandons it without a lookup.
func (c *AvailabilityChecker) Check(ctx context.Context, key, field, value string) (bool, error) {
	ctx, cancel := context.WithCancelCause(ctx)

	c.mu.Lock()
	if prev := c.pending[key]; prev != nil {
		prev.cancel(ErrCheckSuperseded)
	}
	c.seq++
	id := c.seq
	c.pending[key] = &pendingCheck{id: id, cancel: cancel}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if p := c.pending[key]; p != nil && p.id == id {
			delete(c.pending, key)
		}
		c.mu.Unlock()
		cancel(nil)
	}()

	timer := time.NewTimer(c.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false, context.Cause(ctx)
	case <-timer.C:
	}

	available, err := c.lookup(ctx, field, value)
	if err != nil && ctx.Err() != nil {
		return false, context.Cause(ctx)
	}
	return available, err
}

// Pending returns the number of checks waiting or running
func (c *AvailabilityChecker) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
