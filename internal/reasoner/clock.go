package reasoner

import (
	"sync"
	"time"
)

// Clock supplies both the logical cycle counter (used everywhere inside
// the core — occurrence times, event timestamps, concept bookkeeping)
// and wall-clock time (used only at collaborator-suspension boundaries
// for deadline comparisons). Pure arithmetic and rule code never call
// time.Now() directly; they receive a logical step from this interface
// instead (SPEC_FULL.md §3 Clock note).
type Clock interface {
	// Now returns wall-clock time, used solely for PendingOutcome deadline
	// comparisons at the collaborator-suspension boundary.
	Now() time.Time
	// Step advances the logical cycle counter by one and returns the new
	// value.
	Step() uint64
	// Current returns the logical cycle counter's value without
	// advancing it.
	Current() uint64
}

// LogicalClock is the default Clock: a monotonically increasing cycle
// counter paired with the real wall clock.
type LogicalClock struct {
	mu   sync.Mutex
	step uint64
	now  func() time.Time
}

// NewLogicalClock creates a LogicalClock starting at cycle 0.
func NewLogicalClock() *LogicalClock {
	return &LogicalClock{now: time.Now}
}

func (c *LogicalClock) Now() time.Time {
	return c.now()
}

func (c *LogicalClock) Step() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step++
	return c.step
}

func (c *LogicalClock) Current() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}
