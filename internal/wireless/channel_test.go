package wireless

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/air-monitor/internal/sensor"
)

const timeout = 30 * time.Second

func TestParseCommand(t *testing.T) {
	cases := []struct {
		payload string
		want    Command
		ok      bool
	}{
		{"1", CmdMuteAlarm, true},
		{"2", CmdForceSleep, true},
		{"3", CmdRequestData, true},
		{"4", CmdResetAlerts, true},
		{" 2\n", CmdForceSleep, true},
		{"0", CmdNone, false},
		{"5", CmdNone, false},
		{"-1", CmdNone, false},
		{"", CmdNone, false},
		{"mute", CmdNone, false},
		{"2x", CmdNone, false},
	}
	for _, c := range cases {
		got, ok := ParseCommand([]byte(c.payload))
		if got != c.want || ok != c.ok {
			t.Errorf("ParseCommand(%q) = (%v, %v), want (%v, %v)", c.payload, got, ok, c.want, c.ok)
		}
	}
}

func TestFormatTelemetry(t *testing.T) {
	since := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := sensor.Reading{
		CO2PPM:      1234.5,
		HumidityPct: 47.2,
		TempC:       21.8,
		Valid:       true,
		SampledAt:   since.Add(2500 * time.Millisecond),
	}

	payload := FormatTelemetry(r, sensor.AlertLow, since)

	var decoded Telemetry
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("telemetry is not valid JSON: %v", err)
	}
	if decoded.CO2 != 1234.5 || decoded.Humidity != 47.2 || decoded.Temperature != 21.8 {
		t.Errorf("unexpected measurement fields: %+v", decoded)
	}
	if decoded.Alert != 1 {
		t.Errorf("expected alert 1, got %d", decoded.Alert)
	}
	if decoded.Timestamp != 2500 {
		t.Errorf("expected device-relative timestamp 2500, got %d", decoded.Timestamp)
	}
}

func TestSendRequiresPeer(t *testing.T) {
	ep := NewFakeEndpoint()
	ch := NewChannel(ep, timeout)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if err := ch.Open(now); err != nil {
		t.Fatalf("open: %v", err)
	}

	r := sensor.Reading{CO2PPM: 800, Valid: true, SampledAt: now}
	ch.Send(r, sensor.AlertNone)
	if len(ep.Notified) != 0 {
		t.Error("send without a peer should be a no-op")
	}

	ep.PeerConnect()
	ch.Send(r, sensor.AlertNone)
	if len(ep.Notified) != 1 {
		t.Errorf("expected 1 notification after connect, got %d", len(ep.Notified))
	}
}

func TestConnectionLifecycle(t *testing.T) {
	ep := NewFakeEndpoint()
	ch := NewChannel(ep, timeout)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ch.Open(now)

	if ch.IsConnected() {
		t.Error("should start disconnected")
	}
	if !ep.Advertising {
		t.Error("should advertise after open")
	}

	ep.PeerConnect()
	if !ch.IsConnected() {
		t.Error("expected connected after peer attach")
	}
	if ep.Advertising {
		t.Error("advertising should stop while connected")
	}

	ep.PeerDisconnect()
	if ch.IsConnected() {
		t.Error("expected disconnected after peer detach")
	}
	if !ep.Advertising {
		t.Error("detach should restart discovery broadcasting")
	}
}

func TestPollCommandReadAndClear(t *testing.T) {
	ep := NewFakeEndpoint()
	ch := NewChannel(ep, timeout)
	ch.Open(time.Now())

	if got := ch.PollCommand(); got != CmdNone {
		t.Fatalf("expected no pending command, got %v", got)
	}

	ep.PeerWrite([]byte("3"))
	if got := ch.PollCommand(); got != CmdRequestData {
		t.Errorf("expected REQUEST_DATA, got %v", got)
	}
	if got := ch.PollCommand(); got != CmdNone {
		t.Errorf("command was not cleared by poll, got %v", got)
	}
}

func TestMalformedCommandsDiscarded(t *testing.T) {
	ep := NewFakeEndpoint()
	ch := NewChannel(ep, timeout)
	ch.Open(time.Now())

	for _, payload := range []string{"", "9", "garbage", "\x00\x01"} {
		ep.PeerWrite([]byte(payload))
		if got := ch.PollCommand(); got != CmdNone {
			t.Errorf("payload %q surfaced as command %v", payload, got)
		}
	}
}

func TestDiscoveryTimeout(t *testing.T) {
	ep := NewFakeEndpoint()
	ch := NewChannel(ep, timeout)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if ch.HasTimedOut(now) {
		t.Error("unopened channel cannot have timed out")
	}

	ch.Open(now)
	if ch.HasTimedOut(now.Add(29 * time.Second)) {
		t.Error("timed out before the discovery window elapsed")
	}
	if !ch.HasTimedOut(now.Add(31 * time.Second)) {
		t.Error("expected timeout after the discovery window")
	}
}

func TestCloseStopsAdvertisingOnly(t *testing.T) {
	ep := NewFakeEndpoint()
	ch := NewChannel(ep, timeout)
	ch.Open(time.Now())

	if err := ch.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if ep.Advertising {
		t.Error("close should stop discovery broadcasting")
	}
	if ep.Closed {
		t.Error("close must not tear down the endpoint")
	}
}

func TestOpenIdempotent(t *testing.T) {
	ep := NewFakeEndpoint()
	ch := NewChannel(ep, timeout)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	ch.Open(now)
	calls := ep.AdvertiseCalls
	ch.Open(now.Add(time.Minute))

	if ep.AdvertiseCalls != calls {
		t.Error("second Open restarted the endpoint")
	}
	if !ch.HasTimedOut(now.Add(31 * time.Second)) {
		t.Error("second Open reset the discovery clock")
	}
}
