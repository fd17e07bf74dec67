// Package serial provides the instrument's serial transmitter.
package serial

import (
	"fmt"
	"io"
)

// DefaultBaud is the reporting rate. Frames are always 8-N-1.
const DefaultBaud = 9600

// Port is the write side of a serial port.
type Port interface {
	io.WriteCloser
}

// Config holds serial port configuration.
type Config struct {
	// Device path (e.g., "/dev/serial0", "/dev/ttyUSB0")
	Device string

	// Baud rate
	Baud int
}

// DefaultConfig returns the reporting configuration for device.
func DefaultConfig(device string) *Config {
	return &Config{
		Device: device,
		Baud:   DefaultBaud,
	}
}

// Transmitter sends text one character at a time, translating '\n' to
// "\r\n". Each write blocks until the port has accepted the byte.
type Transmitter struct {
	port Port
	one  [1]byte
}

// NewTransmitter creates a transmitter writing to port.
func NewTransmitter(port Port) *Transmitter {
	return &Transmitter{port: port}
}

// PutChar sends c, preceded by a carriage return if c is a newline.
func (t *Transmitter) PutChar(c byte) error {
	if c == '\n' {
		if err := t.putRaw('\r'); err != nil {
			return err
		}
	}
	return t.putRaw(c)
}

// PutString sends b up to its first NUL byte, or all of it if there is none.
func (t *Transmitter) PutString(b []byte) error {
	for _, c := range b {
		if c == 0 {
			return nil
		}
		if err := t.PutChar(c); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying port.
func (t *Transmitter) Close() error {
	return t.port.Close()
}

func (t *Transmitter) putRaw(c byte) error {
	t.one[0] = c
	for {
		n, err := t.port.Write(t.one[:])
		if err != nil {
			return fmt.Errorf("write serial: %w", err)
		}
		if n == 1 {
			return nil
		}
	}
}
