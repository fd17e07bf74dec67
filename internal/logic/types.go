// Package logic contains the pure control core of the geiger counter:
// event capture, debounced mode control, feedback and periodic reporting.
// This package has NO OS or hardware dependencies. Pins, the tone generator,
// the serial transmitter and time are all injected.
package logic

import "time"

// Default timing for the reference hardware.
const (
	DefaultPulseWidth    = 100 * time.Microsecond
	DefaultSettleDelay   = 25 * time.Millisecond
	DefaultHoldDuration  = 10 * time.Millisecond
	DefaultToneFrequency = 3125 // Hz: 1 MHz timer toggling every 160 counts
	DefaultTickPeriod    = time.Second
)

// Config holds the timing constants of the instrument.
type Config struct {
	PulseWidth    time.Duration
	SettleDelay   time.Duration
	HoldDuration  time.Duration
	ToneFrequency int
	InitialMode   Mode
}

// DefaultConfig returns the default timing with feedback off.
func DefaultConfig() Config {
	return Config{
		PulseWidth:    DefaultPulseWidth,
		SettleDelay:   DefaultSettleDelay,
		HoldDuration:  DefaultHoldDuration,
		ToneFrequency: DefaultToneFrequency,
		InitialMode:   ModeOff,
	}
}

// Pin is a single digital output.
// Implementations handle their own I/O errors; the core has no way to
// recover from a pin that cannot be driven.
type Pin interface {
	Set(high bool)
}

// Tone is an audible tone generator.
type Tone interface {
	// Start begins a square wave at freq Hz.
	Start(freq int)
	// Stop silences the generator and returns it to its idle state.
	Stop()
}

// Button samples the mode button.
type Button interface {
	// Pressed reports whether the button is currently held down.
	Pressed() bool
}

// Clock is the timing primitive. Sleep must be accurate at microsecond
// granularity; real implementations busy-wait for short durations.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// Transmitter sends text over the serial link.
type Transmitter interface {
	PutChar(c byte) error
	PutString(b []byte) error
}

// Report is one emitted serial report.
type Report struct {
	Timestamp time.Time
	Count     uint64
	Hex       string
	Mode      Mode
}

// ReportSink receives reports after they have been transmitted.
// Implementations must not block.
type ReportSink interface {
	HandleReport(r Report)
}

// PowerState is the state of the main loop.
type PowerState string

const (
	StateIdle   PowerState = "IDLE"
	StateActive PowerState = "ACTIVE"
)

// Hardware bundles the collaborators the core drives.
type Hardware struct {
	Pulse  Pin
	LED    Pin
	Tone   Tone
	Button Button
	Serial Transmitter
	Clock  Clock
}

// Snapshot is a point-in-time view of the instrument counters.
type Snapshot struct {
	Count      uint64
	Mode       Mode
	Pulses     uint64 // pulse handler invocations, including those at saturation
	Presses    uint64 // presses that advanced the mode
	Bounces    uint64 // edges dropped as bounce
	Reports    uint64
	LastReport time.Time
	PowerState PowerState
}
