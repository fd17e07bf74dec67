package logic

import (
	"math"
	"sync/atomic"
)

// Counter is a saturating 64-bit event counter.
// Increment has a single writer; Load may be called from any goroutine and
// never observes a torn value.
type Counter struct {
	v atomic.Uint64
}

// Increment adds one unless the counter is already at its maximum.
// It reports whether the value changed.
func (c *Counter) Increment() bool {
	for {
		old := c.v.Load()
		if old == math.MaxUint64 {
			return false
		}
		if c.v.CompareAndSwap(old, old+1) {
			return true
		}
	}
}

// Load returns the current count.
func (c *Counter) Load() uint64 {
	return c.v.Load()
}

// Reset zeroes the counter. Only called during startup.
func (c *Counter) Reset() {
	c.v.Store(0)
}

// Flag is a one-bit notification from a callback to the main loop.
type Flag struct {
	v atomic.Bool
}

// Set raises the flag.
func (f *Flag) Set() {
	f.v.Store(true)
}

// Take clears the flag and reports whether it was set.
// The clear happens before the caller acts on the notification.
func (f *Flag) Take() bool {
	return f.v.Swap(false)
}

// IsSet reports the flag without clearing it.
func (f *Flag) IsSet() bool {
	return f.v.Load()
}

// Mode is the feedback mode selected with the button.
type Mode uint8

const (
	ModeOff Mode = iota
	ModeVisual
	ModeAudible
	ModeBoth
)

const modeCount = 4

// Next returns the mode one button press later.
func (m Mode) Next() Mode {
	return (m + 1) % modeCount
}

// Visual reports whether the LED flashes on each event.
func (m Mode) Visual() bool {
	return m == ModeVisual || m == ModeBoth
}

// Audible reports whether the buzzer clicks on each event.
func (m Mode) Audible() bool {
	return m == ModeAudible || m == ModeBoth
}

func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "OFF"
	case ModeVisual:
		return "VISUAL"
	case ModeAudible:
		return "AUDIBLE"
	case ModeBoth:
		return "BOTH"
	}
	return "UNKNOWN"
}

// ParseMode converts a mode name (as produced by String) back to a Mode.
func ParseMode(s string) (Mode, bool) {
	for m := ModeOff; m < modeCount; m++ {
		if m.String() == s {
			return m, true
		}
	}
	return ModeOff, false
}

// ModeCell holds the current Mode. Advance has a single writer.
type ModeCell struct {
	v atomic.Uint32
}

// Load returns the current mode.
func (c *ModeCell) Load() Mode {
	return Mode(c.v.Load())
}

// Store sets the mode. Only called during startup.
func (c *ModeCell) Store(m Mode) {
	c.v.Store(uint32(m % modeCount))
}

// Advance moves to the next mode and returns it.
func (c *ModeCell) Advance() Mode {
	next := c.Load().Next()
	c.v.Store(uint32(next))
	return next
}
