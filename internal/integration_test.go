package internal

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/geiger-counter/internal/gpio"
	"github.com/sweeney/geiger-counter/internal/logic"
	"github.com/sweeney/geiger-counter/internal/mqtt"
	"github.com/sweeney/geiger-counter/internal/serial"
	"github.com/sweeney/geiger-counter/internal/status"
	"github.com/sweeney/geiger-counter/internal/web"
)

type station struct {
	in      *logic.Instrument
	led     *gpio.FakePin
	pulse   *gpio.FakePin
	tone    *gpio.FakeTone
	button  *gpio.FakeButton
	clock   *gpio.FakeClock
	port    *serial.FakePort
	pub     *mqtt.FakePublisher
	fw      *mqtt.Forwarder
	tracker *status.Tracker
}

// statusSink mirrors the daemon's tracker wiring.
type statusSink struct {
	tracker *status.Tracker
	in      *logic.Instrument
}

func (s *statusSink) HandleReport(logic.Report) { s.tracker.Update(s.in.Snapshot()) }

func newStation(t *testing.T) *station {
	t.Helper()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := &station{
		led:     gpio.NewFakePin(),
		pulse:   gpio.NewFakePin(),
		tone:    gpio.NewFakeTone(),
		button:  gpio.NewFakeButton(),
		clock:   gpio.NewFakeClock(start),
		port:    serial.NewFakePort(),
		pub:     mqtt.NewFakePublisher(),
		tracker: status.NewTracker(start, status.Config{PeriodMs: 1000, Serial: "/dev/serial0", Baud: 9600}),
	}
	s.in = logic.New(logic.DefaultConfig(), logic.Hardware{
		Pulse:  s.pulse,
		LED:    s.led,
		Tone:   s.tone,
		Button: s.button,
		Serial: serial.NewTransmitter(s.port),
		Clock:  s.clock,
	})
	s.fw = mqtt.NewForwarder(s.pub, 16)
	s.in.AddSink(s.fw)
	s.in.AddSink(&statusSink{tracker: s.tracker, in: s.in})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.fw.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	return s
}

// press simulates a clean button press at the current fake time.
func (s *station) press() bool {
	s.clock.Advance(100 * time.Millisecond)
	s.button.SetPressed(true)
	advanced := s.in.HandlePress(s.clock.Now())
	s.button.SetPressed(false)
	return advanced
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

// TestIntegrationFullFlow drives pulses, button presses and ticks through the
// instrument and checks the serial line, MQTT payload and HTTP status agree.
func TestIntegrationFullFlow(t *testing.T) {
	s := newStation(t)

	// OFF -> VISUAL -> AUDIBLE -> BOTH
	for i := 0; i < 3; i++ {
		if !s.press() {
			t.Fatalf("press %d: expected mode to advance", i)
		}
	}
	if s.in.Mode() != logic.ModeBoth {
		t.Fatalf("expected BOTH, got %s", s.in.Mode())
	}

	for i := 0; i < 26; i++ {
		s.in.HandlePulse()
	}
	s.in.HandleTick()
	if err := s.in.Service(); err != nil {
		t.Fatalf("service: %v", err)
	}

	if got := s.port.String(); got != "000000000000001A\r\n" {
		t.Errorf("serial output: got %q", got)
	}
	if s.led.Rises() != 1 {
		t.Errorf("expected one LED flash for the batch of pulses, got %d", s.led.Rises())
	}
	if starts := s.tone.Starts(); len(starts) != 1 || starts[0] != logic.DefaultToneFrequency {
		t.Errorf("expected one click at %d Hz, got %v", logic.DefaultToneFrequency, starts)
	}
	if s.led.High() || s.tone.Running() {
		t.Error("feedback outputs should be off after service")
	}
	if s.pulse.Rises() != 26 {
		t.Errorf("expected 26 output pulses, got %d", s.pulse.Rises())
	}

	waitFor(t, "mqtt report", func() bool { return s.pub.ReportCount() == 1 })
	var payload mqtt.Payload
	if err := json.Unmarshal(s.pub.Payloads[0], &payload); err != nil {
		t.Fatalf("invalid mqtt payload: %v", err)
	}
	if payload.Geiger.Count != 26 || payload.Geiger.Hex != "000000000000001A" {
		t.Errorf("unexpected mqtt payload: %+v", payload.Geiger)
	}
	if payload.Geiger.Mode != "BOTH" {
		t.Errorf("expected mode BOTH in payload, got %q", payload.Geiger.Mode)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := web.New(ln.Addr().String(), s.tracker)
	go srv.Serve(ln)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	resp, err := http.Get("http://" + ln.Addr().String() + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()
	var st status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if st.Status.Count != 26 || st.Status.CountHex != "000000000000001A" {
		t.Errorf("unexpected status count: %d / %s", st.Status.Count, st.Status.CountHex)
	}
	if st.Status.Counters.Presses != 3 || st.Status.Counters.Reports != 1 {
		t.Errorf("unexpected counters: %+v", st.Status.Counters)
	}
}

func TestIntegrationBounceBurst(t *testing.T) {
	s := newStation(t)

	s.button.SetPressed(true)
	first := s.clock.Now()
	if !s.in.HandlePress(first) {
		t.Fatal("expected first edge to advance the mode")
	}
	// Edges captured while the handler was settling arrive late.
	for _, offset := range []time.Duration{2, 5, 11, 19} {
		if s.in.HandlePress(first.Add(offset * time.Millisecond)) {
			t.Errorf("bounce edge at +%dms should be discarded", offset)
		}
	}

	snap := s.in.Snapshot()
	if snap.Mode != logic.ModeVisual {
		t.Errorf("expected a single advance to VISUAL, got %s", snap.Mode)
	}
	if snap.Presses != 1 || snap.Bounces != 4 {
		t.Errorf("expected 1 press and 4 bounces, got %d/%d", snap.Presses, snap.Bounces)
	}
}

func TestIntegrationReportsEveryTick(t *testing.T) {
	s := newStation(t)

	var want strings.Builder
	for i, n := range []int{0, 3, 0, 252} {
		for j := 0; j < n; j++ {
			s.in.HandlePulse()
		}
		s.in.HandleTick()
		if err := s.in.Service(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	want.WriteString("0000000000000000\r\n")
	want.WriteString("0000000000000003\r\n")
	want.WriteString("0000000000000003\r\n")
	want.WriteString("00000000000000FF\r\n")

	if got := s.port.String(); got != want.String() {
		t.Errorf("serial output:\n got %q\nwant %q", got, want.String())
	}
	waitFor(t, "mqtt reports", func() bool { return s.pub.ReportCount() == 4 })
}

func TestIntegrationPublishFailureDoesNotBlockSerial(t *testing.T) {
	s := newStation(t)
	s.pub.SetPublishError(errors.New("broker unavailable"))

	s.in.HandlePulse()
	s.in.HandleTick()
	if err := s.in.Service(); err != nil {
		t.Fatalf("service: %v", err)
	}

	if got := s.port.String(); got != "0000000000000001\r\n" {
		t.Errorf("serial output: got %q", got)
	}
	if !s.tracker.Snapshot().Updated {
		t.Error("tracker should be updated even when MQTT fails")
	}
}

func TestIntegrationSerialFailureKeepsCounting(t *testing.T) {
	s := newStation(t)
	s.port.SetWriteError(errors.New("device gone"))

	s.in.HandlePulse()
	s.in.HandleTick()
	if err := s.in.Service(); err == nil {
		t.Fatal("expected transmit error")
	}

	s.port.SetWriteError(nil)
	s.in.HandlePulse()
	s.in.HandleTick()
	if err := s.in.Service(); err != nil {
		t.Fatalf("service after recovery: %v", err)
	}
	if got := s.port.String(); got != "0000000000000002\r\n" {
		t.Errorf("serial output: got %q", got)
	}
	if s.pub.ReportCount() > 1 {
		t.Errorf("failed report must not reach MQTT, got %d reports", s.pub.ReportCount())
	}
}
