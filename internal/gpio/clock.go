package gpio

import (
	"runtime"
	"time"
)

// spinThreshold is the longest delay SystemClock busy-waits for. The
// scheduler cannot be relied on for shorter sleeps.
const spinThreshold = time.Millisecond

// SystemClock is the wall clock. Short sleeps busy-wait.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Sleep blocks for d. Delays under a millisecond spin on the monotonic clock.
func (SystemClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if d >= spinThreshold {
		time.Sleep(d)
		return
	}
	start := time.Now()
	for time.Since(start) < d {
		runtime.Gosched()
	}
}
