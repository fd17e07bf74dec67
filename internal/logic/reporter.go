package logic

import (
	"fmt"
	"sync"
	"time"
)

// Reporter transmits the count over the serial link once per tick.
type Reporter struct {
	tick  *Flag
	count *Counter
	mode  *ModeCell
	tx    Transmitter
	clock Clock
	buf   [HexLen + 1]byte

	mu      sync.Mutex // guards sinks and the fields below
	sinks   []ReportSink
	reports uint64
	last    time.Time
}

// AddSink registers a sink that is handed every transmitted report.
func (r *Reporter) AddSink(s ReportSink) {
	r.mu.Lock()
	r.sinks = append(r.sinks, s)
	r.mu.Unlock()
}

// Send transmits a report if a tick is pending. It reports whether a tick
// was pending; the error is from the transmitter.
func (r *Reporter) Send() (bool, error) {
	if !r.tick.Take() {
		return false, nil
	}

	count := r.count.Load()
	digits := EncodeHex(count, &r.buf)
	if err := r.tx.PutString(r.buf[:]); err != nil {
		return true, fmt.Errorf("transmit report: %w", err)
	}
	if err := r.tx.PutChar('\n'); err != nil {
		return true, fmt.Errorf("transmit newline: %w", err)
	}

	rep := Report{
		Timestamp: r.clock.Now(),
		Count:     count,
		Hex:       string(digits),
		Mode:      r.mode.Load(),
	}

	r.mu.Lock()
	r.reports++
	r.last = rep.Timestamp
	sinks := r.sinks
	r.mu.Unlock()

	for _, s := range sinks {
		s.HandleReport(rep)
	}
	return true, nil
}

func (r *Reporter) stats() (uint64, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reports, r.last
}
