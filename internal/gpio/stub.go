//go:build !linux

package gpio

import "errors"

// Line is not available on non-Linux platforms.
type Line struct{}

// Set does nothing on non-Linux platforms.
func (l *Line) Set(high bool) {}

// Board is not available on non-Linux platforms.
type Board struct {
	Pulse  *Line
	LED    *Line
	Buzzer *Line
	Tone   *SoftTone
}

// NewBoard returns an error on non-Linux platforms.
func NewBoard(pins Pins) (*Board, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Enable is not implemented on non-Linux platforms.
func (b *Board) Enable(h Handlers) {}

// Disable is not implemented on non-Linux platforms.
func (b *Board) Disable() {}

// ButtonPressed is not implemented on non-Linux platforms.
func (b *Board) ButtonPressed() bool { return false }

// Pressed is not implemented on non-Linux platforms.
func (b *Board) Pressed() bool { return false }

// Close is not implemented on non-Linux platforms.
func (b *Board) Close() error {
	return nil
}
