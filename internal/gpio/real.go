//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

const consumer = "geiger-counter"

// Line is an output line on the GPIO character device.
type Line struct {
	name string
	line *gpiocdev.Line
}

// Set drives the line. Failures are logged; callers cannot recover from them.
func (l *Line) Set(high bool) {
	v := 0
	if high {
		v = 1
	}
	if err := l.line.SetValue(v); err != nil {
		log.Printf("gpio: set %s: %v", l.name, err)
	}
}

// Board is the instrument hardware on actual Raspberry Pi GPIO.
type Board struct {
	chip     *gpiocdev.Chip
	detector *gpiocdev.Line
	button   *gpiocdev.Line

	Pulse  *Line
	LED    *Line
	Buzzer *Line
	Tone   *SoftTone

	handlers atomic.Pointer[Handlers]
}

// NewBoard requests every line used by the instrument. Edge events are
// discarded until Enable is called.
func NewBoard(pins Pins) (*Board, error) {
	chip, err := gpiocdev.NewChip("gpiochip0", gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	b := &Board{chip: chip}

	// Outputs first, all low.
	for _, o := range []struct {
		name string
		pin  int
		dst  **Line
	}{
		{"pulse", pins.Pulse, &b.Pulse},
		{"led", pins.LED, &b.LED},
		{"buzzer", pins.Buzzer, &b.Buzzer},
	} {
		l, err := chip.RequestLine(o.pin, gpiocdev.AsOutput(0))
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", o.name, o.pin, err)
		}
		*o.dst = &Line{name: o.name, line: l}
	}
	b.Tone = NewSoftTone(b.Buzzer, SystemClock{})

	// The button pulls the line to ground; the internal pull-up holds it
	// high when released.
	b.button, err = chip.RequestLine(pins.Button,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithRealtimeEventClock,
		gpiocdev.WithEventHandler(b.handleButton))
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("request button pin %d: %w", pins.Button, err)
	}

	b.detector, err = chip.RequestLine(pins.Detector,
		gpiocdev.AsInput,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(b.handleDetector))
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("request detector pin %d: %w", pins.Detector, err)
	}

	return b, nil
}

// Enable installs the edge callbacks. Until it is called, edges are dropped.
func (b *Board) Enable(h Handlers) {
	b.handlers.Store(&h)
}

// Disable removes the edge callbacks.
func (b *Board) Disable() {
	b.handlers.Store(nil)
}

// ButtonPressed reports whether the button currently holds the line low.
func (b *Board) ButtonPressed() bool {
	v, err := b.button.Value()
	if err != nil {
		log.Printf("gpio: read button: %v", err)
		return false
	}
	return v == 0
}

// Pressed implements the button sampler used by the mode controller.
func (b *Board) Pressed() bool {
	return b.ButtonPressed()
}

func (b *Board) handleDetector(evt gpiocdev.LineEvent) {
	if evt.Type != gpiocdev.LineEventFallingEdge {
		return
	}
	if h := b.handlers.Load(); h != nil && h.Pulse != nil {
		h.Pulse()
	}
}

func (b *Board) handleButton(evt gpiocdev.LineEvent) {
	if evt.Type != gpiocdev.LineEventFallingEdge {
		return
	}
	if h := b.handlers.Load(); h != nil && h.Press != nil {
		h.Press(time.Unix(0, int64(evt.Timestamp)))
	}
}

// Close releases GPIO resources.
// Outputs are driven low and every line is reconfigured to input with
// pull-down (matching Pi boot defaults) before closing.
func (b *Board) Close() error {
	b.Disable()
	if b.Tone != nil {
		b.Tone.Stop()
	}

	var errs []error
	release := func(name string, l *gpiocdev.Line) {
		if l == nil {
			return
		}
		if err := l.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", name, err))
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", name, err))
		}
	}

	release("detector", b.detector)
	release("button", b.button)
	for _, o := range []*Line{b.Pulse, b.LED, b.Buzzer} {
		if o != nil {
			o.Set(false)
			release(o.name, o.line)
		}
	}

	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %w", errors.Join(errs...))
	}
	return nil
}
