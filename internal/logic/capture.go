package logic

import (
	"sync/atomic"
	"time"
)

// wakeup is the interrupt line into the main loop. Posting while a wake is
// already pending coalesces, like a pending interrupt flag.
type wakeup chan struct{}

func newWakeup() wakeup {
	return make(wakeup, 1)
}

func (w wakeup) post() {
	select {
	case w <- struct{}{}:
	default:
	}
}

// PulseOutput drives the fixed-width pulse used by external data loggers.
type PulseOutput struct {
	pin   Pin
	clock Clock
	width time.Duration
}

// NewPulseOutput creates a pulse driver with the given width.
func NewPulseOutput(pin Pin, clock Clock, width time.Duration) *PulseOutput {
	return &PulseOutput{pin: pin, clock: clock, width: width}
}

// Emit asserts the pin for the configured width.
// The maximum registrable pulse rate is roughly 1/(2*width).
func (p *PulseOutput) Emit() {
	p.pin.Set(true)
	p.clock.Sleep(p.width)
	p.pin.Set(false)
}

// EventCapture handles detector pulses.
type EventCapture struct {
	count  *Counter
	event  *Flag
	pulse  *PulseOutput
	wake   wakeup
	pulses atomic.Uint64
}

// HandlePulse is called once per falling edge on the detector input.
func (e *EventCapture) HandlePulse() {
	e.count.Increment()
	e.pulses.Add(1)
	e.pulse.Emit()
	e.event.Set()
	e.wake.post()
}
