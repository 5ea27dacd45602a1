package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	State         string      `json:"state"`
	Alert         string      `json:"alert"`
	AlertLevel    int         `json:"alert_level"`
	Reading       ReadingJSON `json:"reading"`
	AlarmActive   bool        `json:"alarm_active"`
	AlarmMuted    bool        `json:"alarm_muted"`
	PeerConnected bool        `json:"peer_connected"`
	MQTT          MQTTStatus  `json:"mqtt"`
	Counts        CountsJSON  `json:"event_counts"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	StartTime     string      `json:"start_time"`
	Timestamp     string      `json:"timestamp"`
	Config        ConfigJSON  `json:"config"`
}

// ReadingJSON is the JSON representation of the latest reading.
type ReadingJSON struct {
	CO2PPM      float64 `json:"co2_ppm"`
	HumidityPct float64 `json:"humidity_pct"`
	TempC       float64 `json:"temperature_c"`
	Valid       bool    `json:"valid"`
	SampledAt   string  `json:"sampled_at,omitempty"`
}

// MQTTStatus reports uplink connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker,omitempty"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	AlertsRaised   int `json:"alerts_raised"`
	AlertsCleared  int `json:"alerts_cleared"`
	SensorFailures int `json:"sensor_failures"`
	Commands       int `json:"commands"`
	TelemetrySent  int `json:"telemetry_sent"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs           int64  `json:"poll_ms"`
	SampleIntervalMs int64  `json:"sample_interval_ms"`
	DebounceMs       int64  `json:"debounce_ms"`
	HoldMs           int64  `json:"hold_ms"`
	DiscoveryMs      int64  `json:"discovery_timeout_ms"`
	Broker           string `json:"broker,omitempty"`
	HTTPPort         string `json:"http_port"`
}

func buildInner(snap Snapshot) StatusInner {
	state := snap.State
	if state == "" {
		state = "UNKNOWN"
	}

	reading := ReadingJSON{
		CO2PPM:      snap.Reading.CO2PPM,
		HumidityPct: snap.Reading.HumidityPct,
		TempC:       snap.Reading.TempC,
		Valid:       snap.Reading.Valid,
	}
	if !snap.Reading.SampledAt.IsZero() {
		reading.SampledAt = snap.Reading.SampledAt.UTC().Format(time.RFC3339)
	}

	return StatusInner{
		State:         state,
		Alert:         snap.Alert.String(),
		AlertLevel:    int(snap.Alert),
		Reading:       reading,
		AlarmActive:   snap.AlarmActive,
		AlarmMuted:    snap.AlarmMuted,
		PeerConnected: snap.PeerConnected,
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			AlertsRaised:   snap.Counts.AlertsRaised,
			AlertsCleared:  snap.Counts.AlertsCleared,
			SensorFailures: snap.Counts.SensorFailures,
			Commands:       snap.Counts.Commands,
			TelemetrySent:  snap.Counts.TelemetrySent,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Config: ConfigJSON{
			PollMs:           snap.Config.PollMs,
			SampleIntervalMs: snap.Config.SampleIntervalMs,
			DebounceMs:       snap.Config.DebounceMs,
			HoldMs:           snap.Config.HoldMs,
			DiscoveryMs:      snap.Config.DiscoveryMs,
			Broker:           snap.Config.Broker,
			HTTPPort:         snap.Config.HTTPPort,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}
