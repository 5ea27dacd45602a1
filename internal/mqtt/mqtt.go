// Package mqtt uplinks telemetry and lifecycle events to a broker,
// buffering while the link is down. The uplink is optional: the device
// runs fully standalone when no broker is configured.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/air-monitor/internal/sensor"
)

// TopicTelemetry is the MQTT topic for sensor readings.
const TopicTelemetry = "airmonitor/telemetry"

// TopicSystem is the MQTT topic for lifecycle events.
const TopicSystem = "airmonitor/system"

// Publisher publishes device data to MQTT.
type Publisher interface {
	// PublishTelemetry sends one reading with its alert level.
	// Returns error if publishing fails (must not crash the loop).
	PublishTelemetry(r sensor.Reading, level sensor.AlertLevel) error

	// PublishSystem sends a lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the broker connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent is a lifecycle event (startup, sleep, wake).
type SystemEvent struct {
	Timestamp time.Time
	Event     string // e.g. "STARTUP", "SLEEP"
	Reason    string // e.g. "BUTTON_HELD", "FORCE_SLEEP_CMD"
	Retained  bool
}

// TelemetryPayload is the MQTT message envelope for a reading.
type TelemetryPayload struct {
	Air AirPayload `json:"air"`
}

// AirPayload carries the measurement and alert fields.
type AirPayload struct {
	Timestamp   string  `json:"timestamp"`
	CO2PPM      float64 `json:"co2_ppm"`
	HumidityPct float64 `json:"humidity_pct"`
	TempC       float64 `json:"temperature_c"`
	Alert       string  `json:"alert"`
	AlertLevel  int     `json:"alert_level"`
}

// FormatTelemetry creates the JSON payload for a reading.
func FormatTelemetry(r sensor.Reading, level sensor.AlertLevel) ([]byte, error) {
	payload := TelemetryPayload{
		Air: AirPayload{
			Timestamp:   r.SampledAt.UTC().Format(time.RFC3339),
			CO2PPM:      r.CO2PPM,
			HumidityPct: r.HumidityPct,
			TempC:       r.TempC,
			Alert:       level.String(),
			AlertLevel:  int(level),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the MQTT message envelope for a lifecycle event.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystem creates the JSON payload for a lifecycle event.
func FormatSystem(event SystemEvent) ([]byte, error) {
	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
