package serial

import (
	"bytes"
	"sync"
)

// FakePort records everything written to it.
type FakePort struct {
	mu  sync.Mutex
	buf bytes.Buffer

	// Writes counts Write calls.
	Writes int

	// WriteError, if set, will be returned by Write.
	WriteError error

	// Short, if set, makes every other Write accept zero bytes.
	Short bool

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePort creates an empty FakePort.
func NewFakePort() *FakePort {
	return &FakePort{}
}

// Write records b.
func (f *FakePort) Write(b []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteError != nil {
		return 0, f.WriteError
	}
	f.Writes++
	if f.Short && f.Writes%2 == 1 {
		return 0, nil
	}
	return f.buf.Write(b)
}

// SetWriteError changes WriteError while the port may be in use.
func (f *FakePort) SetWriteError(err error) {
	f.mu.Lock()
	f.WriteError = err
	f.mu.Unlock()
}

// Close marks the port as closed.
func (f *FakePort) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// String returns everything written so far.
func (f *FakePort) String() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf.String()
}

// Reset discards recorded output.
func (f *FakePort) Reset() {
	f.mu.Lock()
	f.buf.Reset()
	f.Writes = 0
	f.mu.Unlock()
}
