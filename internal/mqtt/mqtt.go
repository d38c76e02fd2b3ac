// Package mqtt publishes dose telemetry with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/pill-ring/internal/dose"
)

// Topic is the MQTT topic for dose events.
const Topic = "health/pill-ring/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "health/pill-ring/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a dose event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event dose.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (startup, shutdown,
// heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload is the MQTT message payload for a dose event.
type Payload struct {
	Pill PillPayload `json:"pill"`
}

// PillPayload contains the dose event details.
type PillPayload struct {
	Timestamp       string `json:"timestamp"`
	Event           string `json:"event"`
	LastDose        string `json:"last_dose"`
	IntervalSeconds int64  `json:"interval_seconds"`
}

// FormatPayload creates the JSON payload for a dose event.
func FormatPayload(event dose.Event) ([]byte, error) {
	payload := Payload{
		Pill: PillPayload{
			Timestamp:       event.Timestamp.UTC().Format(time.RFC3339),
			Event:           string(event.Type),
			LastDose:        event.LastDose.UTC().Format(time.RFC3339),
			IntervalSeconds: int64(event.Interval.Seconds()),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the MQTT message payload for system events.
// Used for simple events that don't carry a full status snapshot.
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
// If event.RawPayload is set, it is returned directly (used for full
// status snapshots).
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
