// Package gpio provides the instrument's hardware with abstraction for testing.
// The real implementation uses the Linux GPIO character device.
// The fake implementations allow testing without hardware.
package gpio

import "time"

// Output is a single digital output line.
type Output interface {
	Set(high bool)
}

// Pin definitions (BCM numbering)
const (
	DefaultPinDetector = 17 // GM tube pulse, falling edge
	DefaultPinButton   = 27 // mode button to ground, pulled up
	DefaultPinPulse    = 22 // active-high pulse for data loggers
	DefaultPinLED      = 23
	DefaultPinBuzzer   = 24 // piezo
)

// Pins selects the BCM lines used by the board.
type Pins struct {
	Detector int
	Button   int
	Pulse    int
	LED      int
	Buzzer   int
}

// DefaultPins returns the standard wiring.
func DefaultPins() Pins {
	return Pins{
		Detector: DefaultPinDetector,
		Button:   DefaultPinButton,
		Pulse:    DefaultPinPulse,
		LED:      DefaultPinLED,
		Buzzer:   DefaultPinBuzzer,
	}
}

// Handlers are the edge callbacks installed by Board.Enable.
// They run on the event goroutine of their line and must not be re-entered.
type Handlers struct {
	// Pulse is called for every falling edge on the detector input.
	Pulse func()
	// Press is called for every falling edge on the button input with
	// the kernel timestamp of the edge.
	Press func(edge time.Time)
}
