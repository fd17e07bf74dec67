package logic

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

// Instrument wires the capture, mode, tick, feedback and report components
// around their shared state, and runs the main loop.
type Instrument struct {
	count Counter
	event Flag
	tick  Flag
	mode  ModeCell
	wake  wakeup
	power atomic.Value // PowerState

	capture  *EventCapture
	control  *ModeController
	ticker   *TickGenerator
	feedback *FeedbackActuator
	reporter *Reporter
}

// New builds an instrument in its startup state: outputs deasserted, tone
// generator stopped, counter zero and mode at cfg.InitialMode. No callbacks
// fire until the caller routes edge events and ticks to the handlers.
func New(cfg Config, hw Hardware) *Instrument {
	in := &Instrument{wake: newWakeup()}

	hw.Pulse.Set(false)
	hw.LED.Set(false)
	hw.Tone.Stop()

	in.count.Reset()
	in.mode.Store(cfg.InitialMode)
	in.power.Store(StateIdle)

	in.capture = &EventCapture{
		count: &in.count,
		event: &in.event,
		pulse: NewPulseOutput(hw.Pulse, hw.Clock, cfg.PulseWidth),
		wake:  in.wake,
	}
	in.control = &ModeController{
		mode:   &in.mode,
		button: hw.Button,
		clock:  hw.Clock,
		settle: cfg.SettleDelay,
		wake:   in.wake,
	}
	in.ticker = &TickGenerator{tick: &in.tick, wake: in.wake}
	in.feedback = &FeedbackActuator{
		event: &in.event,
		mode:  &in.mode,
		led:   hw.LED,
		tone:  hw.Tone,
		clock: hw.Clock,
		freq:  cfg.ToneFrequency,
		hold:  cfg.HoldDuration,
	}
	in.reporter = &Reporter{
		tick:  &in.tick,
		count: &in.count,
		mode:  &in.mode,
		tx:    hw.Serial,
		clock: hw.Clock,
	}
	return in
}

// HandlePulse is the detector edge callback.
func (in *Instrument) HandlePulse() { in.capture.HandlePulse() }

// HandlePress is the button edge callback.
func (in *Instrument) HandlePress(edge time.Time) bool { return in.control.HandlePress(edge) }

// HandleTick is the timer callback.
func (in *Instrument) HandleTick() { in.ticker.HandleTick() }

// RunTicks feeds HandleTick from tick until ctx is cancelled.
func (in *Instrument) RunTicks(ctx context.Context, tick <-chan time.Time) {
	in.ticker.Run(ctx, tick)
}

// AddSink registers a report sink.
func (in *Instrument) AddSink(s ReportSink) { in.reporter.AddSink(s) }

// Count returns the current event count.
func (in *Instrument) Count() uint64 { return in.count.Load() }

// Mode returns the current feedback mode.
func (in *Instrument) Mode() Mode { return in.mode.Load() }

// PowerState returns whether the main loop is idle or servicing a wake.
func (in *Instrument) PowerState() PowerState { return in.power.Load().(PowerState) }

// Service runs one active cycle: feedback, report, feedback.
func (in *Instrument) Service() error {
	in.feedback.Check()
	_, err := in.reporter.Send()
	in.feedback.Check()
	return err
}

// Run is the main loop. It idles until a callback wakes it, services the
// pending notifications and idles again. It returns when ctx is cancelled.
func (in *Instrument) Run(ctx context.Context) error {
	for {
		in.power.Store(StateIdle)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-in.wake:
		}

		in.power.Store(StateActive)
		if err := in.Service(); err != nil {
			log.Printf("report error: %v", err)
		}
	}
}

// Snapshot returns the current counters.
func (in *Instrument) Snapshot() Snapshot {
	reports, last := in.reporter.stats()
	return Snapshot{
		Count:      in.count.Load(),
		Mode:       in.mode.Load(),
		Pulses:     in.capture.pulses.Load(),
		Presses:    in.control.presses.Load(),
		Bounces:    in.control.bounces.Load(),
		Reports:    reports,
		LastReport: last,
		PowerState: in.PowerState(),
	}
}
