package testutil

import "sync/atomic"

// StepClock numbers the steps of a harness trace.
//
// Traces carry step numbers instead of wall time, so the same scenario always
// produces the same golden output. The zero value is ready; the first Tick
// returns 1. Safe for concurrent use.
type StepClock struct {
	seq atomic.Int64
}

// Tick returns the number of the next step.
func (c *StepClock) Tick() int64 {
	return c.seq.Add(1)
}

// Rewind starts a new trace: the next Tick returns 1 again.
func (c *StepClock) Rewind() {
	c.seq.Store(0)
}
