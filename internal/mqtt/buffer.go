package mqtt

import "log"

// pendingMsg is a serialized message waiting for the broker to come back.
type pendingMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox is a fixed-capacity FIFO of messages published while disconnected.
// When full, the oldest message is overwritten.
// Not safe for concurrent use; the publisher holds its mutex around it.
type outbox struct {
	msgs    []pendingMsg
	next    int // slot for the next push
	n       int
	dropped int // messages overwritten since the last drain
}

func newOutbox(capacity int) *outbox {
	return &outbox{msgs: make([]pendingMsg, capacity)}
}

func (o *outbox) push(m pendingMsg) {
	o.msgs[o.next] = m
	o.next = (o.next + 1) % len(o.msgs)
	if o.n < len(o.msgs) {
		o.n++
		return
	}
	if o.dropped == 0 {
		log.Printf("mqtt: outbox full (%d messages), dropping oldest", len(o.msgs))
	}
	o.dropped++
}

// drain returns the queued messages oldest first and empties the outbox.
func (o *outbox) drain() []pendingMsg {
	if o.n == 0 {
		return nil
	}

	out := make([]pendingMsg, 0, o.n)
	first := (o.next - o.n + len(o.msgs)) % len(o.msgs)
	for i := 0; i < o.n; i++ {
		out = append(out, o.msgs[(first+i)%len(o.msgs)])
	}

	if o.dropped > 0 {
		log.Printf("mqtt: replaying %d buffered messages (%d dropped)", o.n, o.dropped)
	}
	o.next, o.n, o.dropped = 0, 0, 0
	return out
}

func (o *outbox) len() int {
	return o.n
}
