package gpio

import (
	"sync"
	"time"
)

// Sleeper is the timing primitive used to pace the tone.
type Sleeper interface {
	Sleep(d time.Duration)
}

// SoftTone generates a square wave by toggling an output line from a
// goroutine.
type SoftTone struct {
	out   Output
	clock Sleeper

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewSoftTone creates a stopped tone generator on out.
func NewSoftTone(out Output, clock Sleeper) *SoftTone {
	return &SoftTone{out: out, clock: clock}
}

// Start begins toggling at freq Hz. A running tone is restarted.
func (t *SoftTone) Start(freq int) {
	if freq <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()

	half := time.Second / time.Duration(2*freq)
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	go t.run(half, t.stop, t.done)
}

// Stop silences the tone and drives the line low.
func (t *SoftTone) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// Running reports whether the toggling goroutine is active.
func (t *SoftTone) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}

func (t *SoftTone) stopLocked() {
	if t.stop != nil {
		close(t.stop)
		<-t.done
		t.stop = nil
		t.done = nil
	}
	t.out.Set(false)
}

func (t *SoftTone) run(half time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	level := false
	for {
		select {
		case <-stop:
			return
		default:
		}
		level = !level
		t.out.Set(level)
		t.clock.Sleep(half)
	}
}
