package ratelimit

import (
	"sync"
	"time"
)

// Clock supplies monotonic readings for bucket refills.
//
// Only differences between two readings are meaningful. Implementations
// must never go backwards.
type Clock interface {
	// Now returns the elapsed time since an arbitrary, fixed epoch.
	Now() time.Duration
}

// systemClock reads the runtime's monotonic clock. time.Since on a
// time.Time taken from time.Now uses the monotonic reading, so wall-clock
// adjustments (NTP, manual changes) do not affect it.
type systemClock struct {
	epoch time.Time
}

// NewSystemClock returns a Clock backed by the process monotonic clock.
func NewSystemClock() Clock {
	return &systemClock{epoch: time.Now()}
}

func (c *systemClock) Now() time.Duration {
	return time.Since(c.epoch)
}

// defaultClock is shared by buckets created without an explicit clock.
var defaultClock = NewSystemClock()

// ManualClock is a Clock that only moves when told to.
// It is intended for deterministic tests of refill behavior.
type ManualClock struct {
	mu  sync.Mutex
	now time.Duration
}

// NewManualClock creates a ManualClock starting at zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// Now returns the current manual reading.
func (c *ManualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d. Negative durations are ignored
// so the clock stays monotonic.
func (c *ManualClock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.now += d
	c.mu.Unlock()
}
