package logic

import "time"

// FeedbackActuator flashes the LED and clicks the buzzer for each event.
type FeedbackActuator struct {
	event *Flag
	mode  *ModeCell
	led   Pin
	tone  Tone
	clock Clock
	freq  int
	hold  time.Duration
}

// Check services a pending event notification. It reports whether there
// was one to service.
func (f *FeedbackActuator) Check() bool {
	if !f.event.Take() {
		return false
	}

	mode := f.mode.Load()
	if mode.Visual() {
		f.led.Set(true)
	}
	if mode.Audible() {
		f.tone.Start(f.freq)
	}

	f.clock.Sleep(f.hold)

	// Reset both channels regardless of mode: the mode may have changed
	// while holding, and the tone generator must not outlive the click.
	f.led.Set(false)
	f.tone.Stop()
	return true
}
