// Package mqtt mirrors serial reports and lifecycle events to an MQTT broker,
// with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/geiger-counter/internal/logic"
)

// TopicReports is the MQTT topic for count reports.
const TopicReports = "radiation/geiger/reports"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "radiation/geiger/system"

// Publisher publishes to MQTT.
type Publisher interface {
	// PublishReport sends a count report to the broker.
	// Returns error if publishing fails (should not crash the process).
	PublishReport(r logic.Report) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT report payload structure.
type Payload struct {
	Geiger ReportPayload `json:"geiger"`
}

// ReportPayload contains one report. Hex is exactly the serial line.
type ReportPayload struct {
	Timestamp string `json:"timestamp"`
	Count     uint64 `json:"count"`
	Hex       string `json:"hex"`
	Mode      string `json:"mode"`
}

// FormatPayload creates the JSON payload for a report.
func FormatPayload(r logic.Report) ([]byte, error) {
	payload := Payload{
		Geiger: ReportPayload{
			Timestamp: r.Timestamp.UTC().Format(time.RFC3339),
			Count:     r.Count,
			Hex:       r.Hex,
			Mode:      r.Mode.String(),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
