package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/air-monitor/internal/sensor"
	"github.com/sweeney/air-monitor/internal/status"
)

func newTestServer(t *testing.T) (*Server, *status.Tracker) {
	t.Helper()
	tracker := status.NewTracker(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC), status.Config{
		Broker:   "tcp://broker:1883",
		HTTPPort: ":8080",
	})
	return New(":0", tracker), tracker
}

func TestStatusEndpoint(t *testing.T) {
	srv, tracker := newTestServer(t)
	tracker.Update(
		sensor.Reading{CO2PPM: 1500, HumidityPct: 45, TempC: 21, Valid: true, SampledAt: time.Now()},
		sensor.AlertLow, "COMMUNICATING", true, false, true,
		status.Counts{AlertsRaised: 1},
	)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type %q", ct)
	}

	var decoded status.StatusJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Status.Alert != "LOW" {
		t.Errorf("alert: got %q", decoded.Status.Alert)
	}
	if decoded.Status.Reading.CO2PPM != 1500 {
		t.Errorf("co2: got %v", decoded.Status.Reading.CO2PPM)
	}
}

func TestRootServesStatus(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestUnknownPathIs404(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, tracker := newTestServer(t)
	tracker.Update(
		sensor.Reading{CO2PPM: 6000, HumidityPct: 50, TempC: 22, Valid: true, SampledAt: time.Now()},
		sensor.AlertMedium, "READING_SENSORS", false, false, false,
		status.Counts{SensorFailures: 2},
	)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		"air_co2_ppm 6000",
		"air_alert_level 2",
		"air_sensor_failures_total 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
