package hostadapters

import (
	"sync/atomic"
	"time"
)

// SystemClock implements hostio.Clock using the real wall clock. The host
// driving the frame loop calls Advance once per tick; FrameNumber is
// whatever Advance last set, read atomically since telemetry goroutines
// read it too.
type SystemClock struct {
	start time.Time
	frame atomic.Uint64
}

func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) NowSeconds() float64 {
	return time.Since(c.start).Seconds()
}

func (c *SystemClock) FrameNumber() uint64 {
	return c.frame.Load()
}

// Advance records that a new frame has begun. The host's frame loop
// calls this exactly once per simulated frame, before invoking Tick.
func (c *SystemClock) Advance() uint64 {
	return c.frame.Add(1)
}
