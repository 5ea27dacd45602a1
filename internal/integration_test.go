package internal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/air-monitor/internal/alarm"
	"github.com/sweeney/air-monitor/internal/button"
	"github.com/sweeney/air-monitor/internal/gpio"
	"github.com/sweeney/air-monitor/internal/monitor"
	"github.com/sweeney/air-monitor/internal/mqtt"
	"github.com/sweeney/air-monitor/internal/sensor"
	"github.com/sweeney/air-monitor/internal/wireless"
)

// TestIntegrationFullFlow drives the whole stack on fakes: air quality
// degrades, the alarm sounds, a peer connects mid-run and receives
// telemetry, and the uplink sees every reading.
func TestIntegrationFullFlow(t *testing.T) {
	cfg := monitor.DefaultConfig()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	bus := sensor.NewFakeBus([]sensor.FakeSample{
		{CO2: 600, Humidity: 40, Temp: 20},  // clean air
		{CO2: 2500, Humidity: 42, Temp: 21}, // LOW
		{CO2: 7000, Humidity: 45, Temp: 22}, // MEDIUM
		{CO2: 7000, Humidity: 45, Temp: 22},
		{CO2: 7000, Humidity: 45, Temp: 22},
	})
	buttons := button.New(cfg.Debounce, cfg.Hold)
	line := gpio.NewFakeButtonLine(buttons.HandleEdge)
	pwm := gpio.NewFakePWM()
	alm := alarm.New(pwm, cfg.AlarmCadence, cfg.AlarmMaxToggles)
	ep := wireless.NewFakeEndpoint()
	ch := wireless.NewChannel(ep, cfg.DiscoveryTimeout)
	if err := ch.Open(start); err != nil {
		t.Fatalf("open channel: %v", err)
	}
	uplink := mqtt.NewFakePublisher()

	ctl := monitor.New(cfg, monitor.Deps{
		Buttons: buttons,
		Line:    line,
		Alarm:   alm,
		Source:  sensor.NewSource(bus, cfg.SampleInterval),
		Channel: ch,
		Power:   gpio.NewFakePower(),
		Uplink:  uplink,
	})

	now := start
	tickOnce := func() {
		now = now.Add(500 * time.Millisecond)
		ctl.Tick(now)
	}

	// Clean air first: no alarm.
	for i := 0; i < 4; i++ {
		tickOnce()
	}
	if ctl.Alert() != sensor.AlertNone {
		t.Fatalf("expected NONE in clean air, got %v", ctl.Alert())
	}
	if len(pwm.Tones) != 0 {
		t.Fatal("alarm started in clean air")
	}

	// Peer connects; air degrades through LOW to MEDIUM.
	ep.PeerConnect()
	for i := 0; i < 8; i++ {
		tickOnce()
	}

	if ctl.Alert() != sensor.AlertMedium {
		t.Errorf("expected MEDIUM, got %v", ctl.Alert())
	}
	wantTones := []int{alarm.ToneLow, alarm.ToneMedium}
	if len(pwm.Tones) != len(wantTones) {
		t.Fatalf("expected %d alarm starts, got %v", len(wantTones), pwm.Tones)
	}
	for i, tone := range wantTones {
		if pwm.Tones[i] != tone {
			t.Errorf("alarm start %d: got %d Hz, want %d Hz", i, pwm.Tones[i], tone)
		}
	}

	// The connected peer received framed telemetry.
	if len(ep.Notified) == 0 {
		t.Fatal("peer received no telemetry")
	}
	var last wireless.Telemetry
	if err := json.Unmarshal(ep.Notified[len(ep.Notified)-1], &last); err != nil {
		t.Fatalf("telemetry is not valid JSON: %v", err)
	}
	if last.CO2 != 7000 || last.Alert != int(sensor.AlertMedium) {
		t.Errorf("unexpected final telemetry: %+v", last)
	}

	// The uplink saw readings too.
	if len(uplink.Readings) == 0 {
		t.Error("uplink received no telemetry")
	}

	// Peer sends MUTE; the sounding pattern stops immediately.
	ep.PeerWrite([]byte("1"))
	tickOnce()
	if pwm.Active {
		t.Error("mute command did not silence the buzzer")
	}
}
