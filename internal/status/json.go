package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/geiger-counter/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Count         uint64       `json:"count"`
	CountHex      string       `json:"count_hex"`
	Mode          string       `json:"mode"`
	Ready         bool         `json:"ready"`
	Power         string       `json:"power,omitempty"`
	LastReport    string       `json:"last_report,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counters      CountersJSON `json:"counters"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountersJSON is the JSON representation of the instrument's activity counters.
type CountersJSON struct {
	Pulses  uint64 `json:"pulses"`
	Presses uint64 `json:"presses"`
	Bounces uint64 `json:"bounces"`
	Reports uint64 `json:"reports"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PeriodMs     int64  `json:"period_ms"`
	PulseWidthUs int64  `json:"pulse_width_us"`
	SettleMs     int64  `json:"settle_ms"`
	HoldMs       int64  `json:"hold_ms"`
	ToneHz       int    `json:"tone_hz"`
	Serial       string `json:"serial"`
	Baud         int    `json:"baud"`
	HeartbeatMs  int64  `json:"heartbeat_ms"`
	Broker       string `json:"broker"`
	HTTPPort     string `json:"http_port"`
}

// HexCount formats a count the way it appears on the serial line.
func HexCount(n uint64) string {
	var buf [logic.HexLen + 1]byte
	return string(logic.EncodeHex(n, &buf))
}

func buildInner(snap Snapshot) StatusInner {
	in := snap.Instrument
	inner := StatusInner{
		Count:         in.Count,
		CountHex:      HexCount(in.Count),
		Mode:          in.Mode.String(),
		Ready:         snap.Updated,
		Power:         string(in.PowerState),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counters: CountersJSON{
			Pulses:  in.Pulses,
			Presses: in.Presses,
			Bounces: in.Bounces,
			Reports: in.Reports,
		},
		Config: ConfigJSON{
			PeriodMs:     snap.Config.PeriodMs,
			PulseWidthUs: snap.Config.PulseWidthUs,
			SettleMs:     snap.Config.SettleMs,
			HoldMs:       snap.Config.HoldMs,
			ToneHz:       snap.Config.ToneHz,
			Serial:       snap.Config.Serial,
			Baud:         snap.Config.Baud,
			HeartbeatMs:  snap.Config.HeartbeatMs,
			Broker:       snap.Config.Broker,
			HTTPPort:     snap.Config.HTTPPort,
		},
	}
	if !in.LastReport.IsZero() {
		inner.LastReport = in.LastReport.UTC().Format(time.RFC3339)
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
