package mqtt

import (
	"context"
	"log"
	"sync/atomic"

	"github.com/sweeney/geiger-counter/internal/logic"
)

// Forwarder hands reports from the main loop to a Publisher on its own
// goroutine. HandleReport never blocks; reports are dropped when the queue
// is full.
type Forwarder struct {
	pub     Publisher
	queue   chan logic.Report
	dropped atomic.Uint64
}

// NewForwarder creates a forwarder with room for size queued reports.
func NewForwarder(pub Publisher, size int) *Forwarder {
	if size < 1 {
		size = 1
	}
	return &Forwarder{pub: pub, queue: make(chan logic.Report, size)}
}

// HandleReport queues r for publishing.
func (f *Forwarder) HandleReport(r logic.Report) {
	select {
	case f.queue <- r:
	default:
		if f.dropped.Add(1) == 1 {
			log.Printf("mqtt: report queue full, dropping reports")
		}
	}
}

// Dropped returns the number of reports dropped because the queue was full.
func (f *Forwarder) Dropped() uint64 {
	return f.dropped.Load()
}

// Run publishes queued reports until ctx is cancelled.
func (f *Forwarder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-f.queue:
			if err := f.pub.PublishReport(r); err != nil {
				log.Printf("publish error: %v", err)
				// Don't crash on publish failure
			}
		}
	}
}
