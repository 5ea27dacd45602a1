package web

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sweeney/air-monitor/internal/status"
)

// registerMetrics exposes tracker state as Prometheus gauges. Values
// are read from a fresh snapshot on every scrape.
func registerMetrics(reg *prometheus.Registry, tracker *status.Tracker) {
	gauge := func(name, help string, value func(status.Snapshot) float64) prometheus.GaugeFunc {
		return prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Name: name, Help: help},
			func() float64 { return value(tracker.Snapshot()) },
		)
	}
	boolToFloat := func(b bool) float64 {
		if b {
			return 1
		}
		return 0
	}

	reg.MustRegister(
		gauge("air_co2_ppm", "Air carbon dioxide level (units: ppm)", func(s status.Snapshot) float64 {
			return s.Reading.CO2PPM
		}),
		gauge("air_humidity_pct", "Relative humidity (units: %)", func(s status.Snapshot) float64 {
			return s.Reading.HumidityPct
		}),
		gauge("air_temperature_celsius", "Air temperature (units: degrees Celsius)", func(s status.Snapshot) float64 {
			return s.Reading.TempC
		}),
		gauge("air_reading_valid", "1 when the latest sample attempt succeeded", func(s status.Snapshot) float64 {
			return boolToFloat(s.Reading.Valid)
		}),
		gauge("air_alert_level", "Current alert level (0=none .. 4=critical)", func(s status.Snapshot) float64 {
			return float64(s.Alert)
		}),
		gauge("air_alarm_active", "1 while the buzzer pattern is sounding", func(s status.Snapshot) float64 {
			return boolToFloat(s.AlarmActive)
		}),
		gauge("air_peer_connected", "1 while a wireless peer is attached", func(s status.Snapshot) float64 {
			return boolToFloat(s.PeerConnected)
		}),
		gauge("air_mqtt_connected", "1 while the MQTT uplink is connected", func(s status.Snapshot) float64 {
			return boolToFloat(s.MQTTConnected)
		}),
		gauge("air_alerts_raised_total", "Alerts raised since startup", func(s status.Snapshot) float64 {
			return float64(s.Counts.AlertsRaised)
		}),
		gauge("air_sensor_failures_total", "Failed sample attempts since startup", func(s status.Snapshot) float64 {
			return float64(s.Counts.SensorFailures)
		}),
		gauge("air_uptime_seconds", "Seconds since daemon start", func(s status.Snapshot) float64 {
			return s.Uptime().Seconds()
		}),
	)
}
