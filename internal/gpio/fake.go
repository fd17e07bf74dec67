package gpio

import (
	"sort"
	"sync"
	"time"
)

// FakePin is a test double that records every level written to it.
type FakePin struct {
	mu     sync.Mutex
	levels []bool
	high   bool
}

// NewFakePin creates a FakePin in the low state.
func NewFakePin() *FakePin {
	return &FakePin{}
}

// Set records the level.
func (p *FakePin) Set(high bool) {
	p.mu.Lock()
	p.levels = append(p.levels, high)
	p.high = high
	p.mu.Unlock()
}

// High reports the last level written.
func (p *FakePin) High() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.high
}

// Levels returns a copy of every level written, in order.
func (p *FakePin) Levels() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]bool, len(p.levels))
	copy(out, p.levels)
	return out
}

// Rises counts low-to-high transitions.
func (p *FakePin) Rises() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	prev := false
	for _, l := range p.levels {
		if l && !prev {
			n++
		}
		prev = l
	}
	return n
}

// Reset clears the recorded levels.
func (p *FakePin) Reset() {
	p.mu.Lock()
	p.levels = nil
	p.high = false
	p.mu.Unlock()
}

// FakeTone records tone generator activity.
type FakeTone struct {
	mu      sync.Mutex
	starts  []int
	stops   int
	running bool
}

// NewFakeTone creates a stopped FakeTone.
func NewFakeTone() *FakeTone {
	return &FakeTone{}
}

// Start records the requested frequency.
func (t *FakeTone) Start(freq int) {
	t.mu.Lock()
	t.starts = append(t.starts, freq)
	t.running = true
	t.mu.Unlock()
}

// Stop marks the tone as silent.
func (t *FakeTone) Stop() {
	t.mu.Lock()
	t.stops++
	t.running = false
	t.mu.Unlock()
}

// Running reports whether the tone is sounding.
func (t *FakeTone) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Starts returns the frequencies passed to Start.
func (t *FakeTone) Starts() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]int, len(t.starts))
	copy(out, t.starts)
	return out
}

// Stops returns the number of Stop calls.
func (t *FakeTone) Stops() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stops
}

// Reset clears recorded activity.
func (t *FakeTone) Reset() {
	t.mu.Lock()
	t.starts = nil
	t.stops = 0
	t.running = false
	t.mu.Unlock()
}

// FakeButton is a button whose level is set by the test.
type FakeButton struct {
	mu      sync.Mutex
	pressed bool
	samples int
}

// NewFakeButton creates a released button.
func NewFakeButton() *FakeButton {
	return &FakeButton{}
}

// SetPressed changes the button level.
func (b *FakeButton) SetPressed(pressed bool) {
	b.mu.Lock()
	b.pressed = pressed
	b.mu.Unlock()
}

// Pressed returns the current level and counts the sample.
func (b *FakeButton) Pressed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples++
	return b.pressed
}

// Samples returns the number of times the level was read.
func (b *FakeButton) Samples() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.samples
}

// FakeClock is a virtual clock. Sleep advances time instantly and runs any
// callbacks scheduled within the slept interval.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
	timers []fakeTimer
}

type fakeTimer struct {
	at time.Time
	fn func()
}

// NewFakeClock creates a clock starting at start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the virtual time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep advances the virtual time by d, running due callbacks in time order.
func (c *FakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.mu.Unlock()
	c.Advance(d)
}

// Advance moves the clock forward without recording a sleep.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	end := c.now.Add(d)
	for {
		i := c.nextDueLocked(end)
		if i < 0 {
			break
		}
		t := c.timers[i]
		c.timers = append(c.timers[:i], c.timers[i+1:]...)
		if t.at.After(c.now) {
			c.now = t.at
		}
		c.mu.Unlock()
		t.fn()
		c.mu.Lock()
	}
	if end.After(c.now) {
		c.now = end
	}
	c.mu.Unlock()
}

// At schedules fn to run when virtual time reaches at.
func (c *FakeClock) At(at time.Time, fn func()) {
	c.mu.Lock()
	c.timers = append(c.timers, fakeTimer{at: at, fn: fn})
	sort.SliceStable(c.timers, func(i, j int) bool { return c.timers[i].at.Before(c.timers[j].at) })
	c.mu.Unlock()
}

// After schedules fn to run d after the current virtual time.
func (c *FakeClock) After(d time.Duration, fn func()) {
	c.At(c.Now().Add(d), fn)
}

// Sleeps returns every duration passed to Sleep.
func (c *FakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.sleeps))
	copy(out, c.sleeps)
	return out
}

func (c *FakeClock) nextDueLocked(end time.Time) int {
	if len(c.timers) == 0 || c.timers[0].at.After(end) {
		return -1
	}
	return 0
}
