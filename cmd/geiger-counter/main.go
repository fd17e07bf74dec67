// Command geiger-counter counts GM tube pulses from GPIO, flashes and clicks
// on each event, and reports the running count over a serial port.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/geiger-counter/internal/gpio"
	"github.com/sweeney/geiger-counter/internal/logic"
	"github.com/sweeney/geiger-counter/internal/mqtt"
	"github.com/sweeney/geiger-counter/internal/serial"
	"github.com/sweeney/geiger-counter/internal/status"
	"github.com/sweeney/geiger-counter/internal/web"
)

type options struct {
	serialDev  string
	baud       int
	period     time.Duration
	pulseWidth time.Duration
	settle     time.Duration
	hold       time.Duration
	tone       int
	mode       string
	pins       gpio.Pins
	broker     string
	heartbeat  time.Duration
	httpAddr   string
	printState bool
}

func main() {
	var o options
	flag.StringVar(&o.serialDev, "serial", "/dev/serial0", "Serial device for count reports")
	flag.IntVar(&o.baud, "baud", serial.DefaultBaud, "Serial baud rate (8-N-1)")
	flag.DurationVar(&o.period, "period", logic.DefaultTickPeriod, "Report interval")
	flag.DurationVar(&o.pulseWidth, "pulse-width", logic.DefaultPulseWidth, "Width of the PULSE output")
	flag.DurationVar(&o.settle, "settle", logic.DefaultSettleDelay, "Button debounce settle delay")
	flag.DurationVar(&o.hold, "hold", logic.DefaultHoldDuration, "LED flash and click duration")
	flag.IntVar(&o.tone, "tone", logic.DefaultToneFrequency, "Click tone frequency in Hz")
	flag.StringVar(&o.mode, "mode", logic.ModeOff.String(), "Initial feedback mode (OFF, VISUAL, AUDIBLE, BOTH)")
	flag.IntVar(&o.pins.Detector, "pin-detector", gpio.DefaultPinDetector, "BCM pin number for the GM tube pulse")
	flag.IntVar(&o.pins.Button, "pin-button", gpio.DefaultPinButton, "BCM pin number for the mode button")
	flag.IntVar(&o.pins.Pulse, "pin-pulse", gpio.DefaultPinPulse, "BCM pin number for the PULSE output")
	flag.IntVar(&o.pins.LED, "pin-led", gpio.DefaultPinLED, "BCM pin number for the LED")
	flag.IntVar(&o.pins.Buzzer, "pin-buzzer", gpio.DefaultPinBuzzer, "BCM pin number for the piezo")
	flag.StringVar(&o.broker, "broker", "", "MQTT broker address (empty to disable)")
	flag.DurationVar(&o.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&o.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.BoolVar(&o.printState, "print-state", false, "Print the button state and exit")

	flag.Parse()

	if err := run(o); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func (o options) config() (logic.Config, error) {
	mode, ok := logic.ParseMode(o.mode)
	if !ok {
		return logic.Config{}, fmt.Errorf("unknown feedback mode %q", o.mode)
	}
	if o.period <= 0 {
		return logic.Config{}, fmt.Errorf("report period must be positive, got %v", o.period)
	}
	return logic.Config{
		PulseWidth:    o.pulseWidth,
		SettleDelay:   o.settle,
		HoldDuration:  o.hold,
		ToneFrequency: o.tone,
		InitialMode:   mode,
	}, nil
}

func (o options) statusConfig() status.Config {
	return status.Config{
		PeriodMs:     o.period.Milliseconds(),
		PulseWidthUs: o.pulseWidth.Microseconds(),
		SettleMs:     o.settle.Milliseconds(),
		HoldMs:       o.hold.Milliseconds(),
		ToneHz:       o.tone,
		Serial:       o.serialDev,
		Baud:         o.baud,
		HeartbeatMs:  o.heartbeat.Milliseconds(),
		Broker:       o.broker,
		HTTPPort:     o.httpAddr,
	}
}

func run(o options) error {
	cfg, err := o.config()
	if err != nil {
		return err
	}

	// Initialize GPIO
	board, err := gpio.NewBoard(o.pins)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer board.Close()

	// Print state mode
	if o.printState {
		fmt.Printf("BUTTON: %s\n", pressedString(board.ButtonPressed()))
		return nil
	}

	// Initialize serial
	port, err := serial.Open(&serial.Config{Device: o.serialDev, Baud: o.baud})
	if err != nil {
		return fmt.Errorf("init serial: %w", err)
	}
	tx := serial.NewTransmitter(port)
	defer tx.Close()

	in := logic.New(cfg, logic.Hardware{
		Pulse:  board.Pulse,
		LED:    board.LED,
		Tone:   board.Tone,
		Button: board,
		Serial: tx,
		Clock:  gpio.SystemClock{},
	})

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), o.statusConfig())
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	in.AddSink(&trackerSink{tracker: tracker, in: in})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MQTT
	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if o.broker != "" {
		pub, err := mqtt.NewRealPublisher(o.broker)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer pub.Close()
		publisher, mqttStatus = pub, pub

		fw := mqtt.NewForwarder(pub, 64)
		go fw.Run(ctx)
		in.AddSink(fw)

		publishSystem(publisher, mqttStatus, tracker, "STARTUP", "", time.Now())
	}

	// Start HTTP status server
	if o.httpAddr != "" {
		srv := web.New(o.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", o.httpAddr)
	}

	// Interrupts on: edges and ticks start reaching the instrument.
	board.Enable(gpio.Handlers{
		Pulse: in.HandlePulse,
		Press: func(edge time.Time) {
			if in.HandlePress(edge) {
				log.Printf("feedback mode: %s", in.Mode())
			}
		},
	})
	defer board.Disable()

	ticker := time.NewTicker(o.period)
	defer ticker.Stop()
	go in.RunTicks(ctx, ticker.C)

	var heartbeat <-chan time.Time
	if o.heartbeat > 0 {
		hb := time.NewTicker(o.heartbeat)
		defer hb.Stop()
		heartbeat = hb.C
	}

	log.Printf("started: serial=%s baud=%d period=%v mode=%s broker=%q heartbeat=%v",
		o.serialDev, o.baud, o.period, cfg.InitialMode, o.broker, o.heartbeat)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(ctx, in, publisher, mqttStatus, tracker, time.Now, heartbeat, sigCh)
}

// runLoop runs the instrument's main loop until a signal arrives, publishing
// heartbeats along the way.
func runLoop(ctx context.Context, in *logic.Instrument, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, now func() time.Time, heartbeat <-chan time.Time, sig <-chan os.Signal) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopDone := make(chan error, 1)
	go func() { loopDone <- in.Run(ctx) }()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			cancel()
			<-loopDone

			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			tracker.Update(in.Snapshot())
			publishSystem(publisher, mqttStatus, tracker, "SHUTDOWN", signalName, now())
			return nil

		case <-heartbeat:
			snap := in.Snapshot()
			log.Printf("heartbeat: count=%d mode=%s pulses=%d presses=%d reports=%d",
				snap.Count, snap.Mode, snap.Pulses, snap.Presses, snap.Reports)
			// Refresh network info for heartbeat
			if net := readNetworkInfo(); net != nil {
				tracker.SetNetwork(net)
			}
			tracker.Update(snap)
			publishSystem(publisher, mqttStatus, tracker, "HEARTBEAT", "", now())

		case err := <-loopDone:
			return fmt.Errorf("main loop: %w", err)
		}
	}
}

// publishSystem sends a lifecycle event carrying a full status snapshot.
// It is a no-op when MQTT is disabled.
func publishSystem(publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, event, reason string, ts time.Time) {
	if publisher == nil {
		return
	}
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}
	snap := tracker.Snapshot()
	err := publisher.PublishSystem(mqtt.SystemEvent{
		Timestamp:  ts,
		Event:      event,
		Reason:     reason,
		Retained:   event != "HEARTBEAT",
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	})
	if err != nil {
		log.Printf("failed to publish %s event: %v", event, err)
		return
	}
	log.Printf("published %s event", event)
}

// trackerSink copies instrument counters into the status tracker after
// every report.
type trackerSink struct {
	tracker *status.Tracker
	in      *logic.Instrument
}

func (s *trackerSink) HandleReport(logic.Report) {
	s.tracker.Update(s.in.Snapshot())
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func pressedString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}
