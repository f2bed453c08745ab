package testutil

import "sync"

// DefaultEpochMillis is where a ManualClock starts unless told otherwise:
// 2024-01-01T00:00:00Z.
const DefaultEpochMillis int64 = 1704067200000

// ManualClock is a wall clock in Unix milliseconds that only moves when the
// test says so.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ManualClock struct {
	mu  sync.Mutex
	now int64
}

// NewManualClock creates a clock reading start. Zero means DefaultEpochMillis.
func NewManualClock(start int64) *ManualClock {
	if start == 0 {
		start = DefaultEpochMillis
	}
	return &ManualClock{now: start}
}

// NowMillis returns the current reading. Pass the method value to
// engine.WithTimeSource.
func (c *ManualClock) NowMillis() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by ms and returns the new reading.
func (c *ManualClock) Advance(ms int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += ms
	return c.now
}

// Set jumps the clock to ms.
func (c *ManualClock) Set(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = ms
}
