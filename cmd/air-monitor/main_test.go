package main

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/air-monitor/internal/alarm"
	"github.com/sweeney/air-monitor/internal/button"
	"github.com/sweeney/air-monitor/internal/gpio"
	"github.com/sweeney/air-monitor/internal/monitor"
	"github.com/sweeney/air-monitor/internal/sensor"
	"github.com/sweeney/air-monitor/internal/wireless"
)

func newTestController(t *testing.T) (*monitor.Controller, *wireless.FakeEndpoint, *gpio.FakePower) {
	t.Helper()

	cfg := monitor.DefaultConfig()
	buttons := button.New(cfg.Debounce, cfg.Hold)
	line := gpio.NewFakeButtonLine(buttons.HandleEdge)
	ep := wireless.NewFakeEndpoint()
	ch := wireless.NewChannel(ep, cfg.DiscoveryTimeout)
	if err := ch.Open(time.Now()); err != nil {
		t.Fatalf("open channel: %v", err)
	}
	power := gpio.NewFakePower()

	ctl := monitor.New(cfg, monitor.Deps{
		Buttons: buttons,
		Line:    line,
		Alarm:   alarm.New(gpio.NewFakePWM(), cfg.AlarmCadence, cfg.AlarmMaxToggles),
		Source:  sensor.NewSource(sensor.NewFakeBus([]sensor.FakeSample{{CO2: 800, Humidity: 40, Temp: 20}}), cfg.SampleInterval),
		Channel: ch,
		Power:   power,
	})
	return ctl, ep, power
}

func TestRunLoopStopsOnSignal(t *testing.T) {
	ctl, _, _ := newTestController(t)

	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)
	done := make(chan error, 1)

	go func() {
		done <- runLoop(ctl, time.Now, tick, sig)
	}()

	tick <- time.Now()
	sig <- syscall.SIGTERM

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runLoop returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runLoop did not stop on signal")
	}
}

func TestRunLoopStopsOnLowPower(t *testing.T) {
	ctl, ep, power := newTestController(t)

	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)
	done := make(chan error, 1)

	go func() {
		done <- runLoop(ctl, time.Now, tick, sig)
	}()

	// A force-sleep command takes the controller through the sleep
	// path; the fake power returns, ending the loop.
	tick <- time.Now()
	ep.PeerWrite([]byte("2"))
	deadline := time.After(2 * time.Second)
	for {
		select {
		case tick <- time.Now():
			time.Sleep(time.Millisecond)
		case err := <-done:
			if err != nil {
				t.Errorf("runLoop returned error: %v", err)
			}
			if !power.Entered {
				t.Error("loop ended without entering low power")
			}
			return
		case <-deadline:
			t.Fatal("runLoop did not stop after low-power entry")
		}
	}
}
