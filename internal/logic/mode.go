package logic

import (
	"sync/atomic"
	"time"
)

// ModeController advances the feedback mode on debounced button presses.
type ModeController struct {
	mode   *ModeCell
	button Button
	clock  Clock
	settle time.Duration
	wake   wakeup

	// clearedThrough is the completion time of the last handled press.
	// Edges stamped at or before it were generated by bounce while the
	// handler was settling and are discarded. Only the handler goroutine
	// touches it.
	clearedThrough time.Time

	presses atomic.Uint64
	bounces atomic.Uint64
}

// HandlePress is called on a falling edge of the button input. edge is the
// time the edge was detected. It reports whether the mode advanced.
func (m *ModeController) HandlePress(edge time.Time) bool {
	defer m.wake.post()

	if !m.clearedThrough.IsZero() && !edge.After(m.clearedThrough) {
		m.bounces.Add(1)
		return false
	}

	m.clock.Sleep(m.settle)
	advanced := false
	if m.button.Pressed() {
		m.mode.Advance()
		m.presses.Add(1)
		advanced = true
	}

	m.clearedThrough = m.clock.Now()
	return advanced
}
