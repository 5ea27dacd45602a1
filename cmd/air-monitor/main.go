// Command air-monitor runs the CO2 monitor control loop: sample the
// sensors, classify alerts, drive the buzzer, serve a BLE peer and
// manage the sleep/wake lifecycle around the button.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/air-monitor/internal/alarm"
	"github.com/sweeney/air-monitor/internal/button"
	"github.com/sweeney/air-monitor/internal/gpio"
	"github.com/sweeney/air-monitor/internal/monitor"
	"github.com/sweeney/air-monitor/internal/mqtt"
	"github.com/sweeney/air-monitor/internal/sensor"
	"github.com/sweeney/air-monitor/internal/status"
	"github.com/sweeney/air-monitor/internal/web"
	"github.com/sweeney/air-monitor/internal/wireless"
)

func main() {
	poll := flag.Duration("poll", 10*time.Millisecond, "cooperative tick interval")
	broker := flag.String("broker", "", "MQTT uplink broker address (empty to disable)")
	httpAddr := flag.String("http", ":8080", "HTTP status address (empty to disable)")
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if err := run(*poll, *broker, *httpAddr); err != nil {
		haltSafely(err)
	}
}

// haltSafely reports a bring-up failure and idles instead of entering
// the monitoring loop. Idling keeps the supervisor from restart-looping
// against broken hardware.
func haltSafely(err error) {
	log.Errorf("bring-up failed: %v", err)
	log.Error("not entering monitoring loop, idling until terminated")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	os.Exit(1)
}

func run(poll time.Duration, broker, httpAddr string) error {
	cfg := monitor.DefaultConfig()
	startTime := time.Now()

	// Button first: its edge callback must exist before anything can
	// trigger it.
	buttons := button.New(cfg.Debounce, cfg.Hold)
	line, err := gpio.NewRealButtonLine(cfg.ButtonPin, buttons.HandleEdge)
	if err != nil {
		return fmt.Errorf("init button: %w", err)
	}
	defer line.Close()

	pwm, err := gpio.NewRealPWM(cfg.BuzzerPin)
	if err != nil {
		return fmt.Errorf("init buzzer: %w", err)
	}
	defer pwm.Close()
	alarmDrv := alarm.New(pwm, cfg.AlarmCadence, cfg.AlarmMaxToggles)

	bus, err := sensor.NewRealBus()
	if err != nil {
		return fmt.Errorf("init sensor bus: %w", err)
	}
	defer bus.Close()
	source := sensor.NewSource(bus, cfg.SampleInterval)
	if err := source.Initialize(); err != nil {
		return fmt.Errorf("init sensors: %w", err)
	}

	channel := wireless.NewChannel(wireless.NewBLEEndpoint(), cfg.DiscoveryTimeout)
	if err := channel.Open(time.Now()); err != nil {
		return fmt.Errorf("init wireless: %w", err)
	}

	var uplink mqtt.Publisher
	var uplinkStatus mqtt.ConnectionStatus
	if broker != "" {
		pub := mqtt.NewRealPublisher(broker)
		defer pub.Close()
		uplink = pub
		uplinkStatus = pub

		startup := mqtt.SystemEvent{Timestamp: startTime, Event: "STARTUP", Retained: true}
		if err := pub.PublishSystem(startup); err != nil {
			log.Warnf("publish startup event: %v", err)
		}
	}

	tracker := status.NewTracker(startTime, status.Config{
		PollMs:           poll.Milliseconds(),
		SampleIntervalMs: cfg.SampleInterval.Milliseconds(),
		DebounceMs:       cfg.Debounce.Milliseconds(),
		HoldMs:           cfg.Hold.Milliseconds(),
		DiscoveryMs:      cfg.DiscoveryTimeout.Milliseconds(),
		Broker:           broker,
		HTTPPort:         httpAddr,
	})

	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Infof("http status server listening on %s", httpAddr)
	}

	ctl := monitor.New(cfg, monitor.Deps{
		Buttons:      buttons,
		Line:         line,
		Alarm:        alarmDrv,
		Source:       source,
		Channel:      channel,
		Power:        gpio.NewRealPower(),
		Uplink:       uplink,
		UplinkStatus: uplinkStatus,
		Tracker:      tracker,
	})

	log.Infof("started: poll=%v sample=%v broker=%q", poll, cfg.SampleInterval, broker)

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(ctl, time.Now, ticker.C, sigCh)
}

// runLoop drives the controller until a signal arrives or the device
// enters low power (only reachable with a returning Power fake).
func runLoop(ctl *monitor.Controller, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Infof("received %v, shutting down", s)
			return nil

		case <-tick:
			if ctl.Tick(now()) {
				return nil
			}
		}
	}
}
