// Package monitor holds the device state machine. One Tick is one
// cooperative pass: drain inputs, advance the active state, drive
// outputs. No component calls back into the controller.
package monitor

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/air-monitor/internal/alarm"
	"github.com/sweeney/air-monitor/internal/button"
	"github.com/sweeney/air-monitor/internal/gpio"
	"github.com/sweeney/air-monitor/internal/mqtt"
	"github.com/sweeney/air-monitor/internal/sensor"
	"github.com/sweeney/air-monitor/internal/status"
	"github.com/sweeney/air-monitor/internal/wireless"
)

// State is the active monitor state. Exactly one value is active;
// owned exclusively by the Controller.
type State int

const (
	StateSleeping State = iota
	StateWakingUp
	StateReadingSensors
	StateProcessingAlerts
	StateCommunicating
	StatePreparingSleep
)

// String returns the state name for logs and status output.
func (s State) String() string {
	switch s {
	case StateSleeping:
		return "SLEEPING"
	case StateWakingUp:
		return "WAKING_UP"
	case StateReadingSensors:
		return "READING_SENSORS"
	case StateProcessingAlerts:
		return "PROCESSING_ALERTS"
	case StateCommunicating:
		return "COMMUNICATING"
	case StatePreparingSleep:
		return "PREPARING_SLEEP"
	default:
		return "UNKNOWN"
	}
}

// Deps is the component set the controller orchestrates. One instance
// of each, owned by the caller, passed by reference.
type Deps struct {
	Buttons *button.Input
	Line    gpio.ButtonLine
	Alarm   *alarm.Driver
	Source  *sensor.Source
	Channel *wireless.Channel
	Power   gpio.Power

	// Optional collaborators; nil disables them.
	Uplink       mqtt.Publisher
	UplinkStatus mqtt.ConnectionStatus
	Tracker      *status.Tracker
}

// Controller sequences sensing, alerting, communication and the sleep
// lifecycle. Single-threaded: Tick must only be called from the
// cooperative loop.
type Controller struct {
	cfg Config
	d   Deps

	state          State
	currentAlert   sensor.AlertLevel
	reading        sensor.Reading
	lastSensorRead time.Time
	retryAt        time.Time
	pendingSleep   bool
	sleepReason    string

	counts status.Counts
}

// New creates a Controller in the WakingUp state.
func New(cfg Config, d Deps) *Controller {
	return &Controller{
		cfg:   cfg,
		d:     d,
		state: StateWakingUp,
	}
}

// State returns the active state.
func (c *Controller) State() State {
	return c.state
}

// Alert returns the current alert level.
func (c *Controller) Alert() sensor.AlertLevel {
	return c.currentAlert
}

// Tick runs one cooperative pass. It returns true once the device has
// entered low power and the loop should stop (real hardware never gets
// that far: EnterLowPower does not return).
func (c *Controller) Tick(now time.Time) bool {
	c.d.Buttons.Tick(now)
	c.d.Alarm.Tick(now)

	// Priority inputs, independent of the active state.
	if c.d.Buttons.Poll() {
		if c.d.Alarm.IsActive() {
			c.d.Alarm.Stop()
			log.Info("alarm stopped by button press")
		}
	}
	if c.d.Buttons.PollHeld() {
		if c.state != StateSleeping {
			log.Info("button held, preparing for sleep")
			c.requestSleep("BUTTON_HELD")
		}
	}
	c.handleCommand()

	done := c.advance(now)
	c.publishStatus(now)
	return done
}

// handleCommand drains and applies one pending wireless command.
func (c *Controller) handleCommand() {
	cmd := c.d.Channel.PollCommand()
	if cmd == wireless.CmdNone {
		return
	}
	c.counts.Commands++

	switch cmd {
	case wireless.CmdMuteAlarm:
		c.d.Alarm.Mute()
	case wireless.CmdForceSleep:
		c.requestSleep("FORCE_SLEEP_CMD")
	case wireless.CmdRequestData:
		c.d.Channel.Send(c.reading, c.currentAlert)
	case wireless.CmdResetAlerts:
		c.d.Alarm.Stop()
		c.d.Alarm.Unmute()
		c.currentAlert = sensor.AlertNone
		c.counts.AlertsCleared++
	}
	log.Infof("executed command %s", cmd)
}

func (c *Controller) requestSleep(reason string) {
	c.sleepReason = reason
	c.pendingSleep = true
}

func (c *Controller) advance(now time.Time) bool {
	// A sleep request preempts the state table: this tick performs the
	// transition, the next one does the shutdown work.
	if c.pendingSleep {
		c.pendingSleep = false
		if c.state != StatePreparingSleep && c.state != StateSleeping {
			c.state = StatePreparingSleep
			return false
		}
	}

	switch c.state {
	case StateWakingUp:
		log.Info("waking up")
		c.state = StateReadingSensors

	case StateReadingSensors:
		c.readSensors(now)

	case StateProcessingAlerts:
		c.processAlerts(now)
		c.state = StateCommunicating

	case StateCommunicating:
		c.communicate(now)
		// Timed out without a peer resumes monitoring, never sleep.
		c.state = StateReadingSensors

	case StatePreparingSleep:
		return c.prepareSleep(now)

	default:
		c.state = StateWakingUp
	}
	return false
}

func (c *Controller) readSensors(now time.Time) {
	if now.Before(c.retryAt) {
		return
	}
	if c.lastSensorRead.IsZero() || now.Sub(c.lastSensorRead) >= c.cfg.SampleInterval {
		r := c.d.Source.Read(now)
		if r.Valid {
			c.reading = r
			c.lastSensorRead = now
			c.state = StateProcessingAlerts
			return
		}
		c.counts.SensorFailures++
		c.retryAt = now.Add(c.cfg.ReadRetryBackoff)
		log.Warn("sensor read failed, backing off")
	}
}

// processAlerts recomputes the alert level from the latest reading.
// The alarm restarts on any level change away from None; equality with
// the previous level is the only suppression.
func (c *Controller) processAlerts(now time.Time) {
	if !c.reading.Valid {
		return
	}

	newAlert := sensor.Classify(c.reading.CO2PPM)

	if newAlert != c.currentAlert && newAlert != sensor.AlertNone {
		c.currentAlert = newAlert
		c.d.Alarm.Start(newAlert, now)
		c.counts.AlertsRaised++
		log.Infof("alert level %s (CO2 %.1f ppm)", newAlert, c.reading.CO2PPM)
	} else if newAlert == sensor.AlertNone && c.currentAlert != sensor.AlertNone {
		c.currentAlert = sensor.AlertNone
		c.d.Alarm.Stop()
		c.counts.AlertsCleared++
		log.Info("alert cleared")
	}
}

func (c *Controller) communicate(now time.Time) {
	if c.d.Channel.IsConnected() || !c.d.Channel.HasTimedOut(now) {
		c.d.Channel.Send(c.reading, c.currentAlert)
		if c.d.Channel.IsConnected() {
			c.counts.TelemetrySent++
		}
	} else {
		log.Debug("discovery timed out with no peer, continuing to monitor")
	}

	if c.d.Uplink != nil && c.reading.Valid {
		if err := c.d.Uplink.PublishTelemetry(c.reading, c.currentAlert); err != nil {
			log.Warnf("uplink publish failed: %v", err)
		}
	}
}

// prepareSleep releases resources, waits for the button to be let go
// and powers down. Runs to completion in one tick; blocking here is
// fine, the loop is about to end.
func (c *Controller) prepareSleep(now time.Time) bool {
	log.Info("preparing for sleep")
	c.d.Alarm.Stop()
	if err := c.d.Channel.Close(); err != nil {
		log.Warnf("close wireless channel: %v", err)
	}

	if c.d.Uplink != nil {
		event := mqtt.SystemEvent{
			Timestamp: now,
			Event:     "SLEEP",
			Reason:    c.sleepReason,
			Retained:  true,
		}
		if err := c.d.Uplink.PublishSystem(event); err != nil {
			log.Warnf("publish sleep event: %v", err)
		}
	}

	// A still-pressed button would wake the device right back up.
	c.waitForRelease()

	c.d.Alarm.Chirp(c.cfg.ChirpDuration)

	log.Info("entering low power")
	if err := c.d.Power.EnterLowPower(c.cfg.ButtonPin, c.cfg.WakeOnPress); err != nil {
		log.Errorf("enter low power: %v", err)
	}
	c.state = StateSleeping
	return true
}

// waitForRelease blocks until the button has been released for a full
// debounce window.
func (c *Controller) waitForRelease() {
	const poll = 10 * time.Millisecond
	var releasedFor time.Duration
	errs := 0

	for releasedFor < c.cfg.Debounce {
		pressed, err := c.d.Line.Level()
		if err != nil {
			errs++
			if errs >= 10 {
				log.Warnf("button release wait: giving up after repeated read errors: %v", err)
				return
			}
			time.Sleep(poll)
			continue
		}
		errs = 0
		if pressed {
			releasedFor = 0
		} else {
			releasedFor += poll
		}
		time.Sleep(poll)
	}
	log.Info("button released, proceeding to sleep")
}

func (c *Controller) publishStatus(now time.Time) {
	if c.d.Tracker == nil {
		return
	}
	if c.d.UplinkStatus != nil {
		c.d.Tracker.SetMQTTConnected(c.d.UplinkStatus.IsConnected())
	}
	c.d.Tracker.Update(
		c.reading,
		c.currentAlert,
		c.state.String(),
		c.d.Alarm.IsActive(),
		c.d.Alarm.IsMuted(),
		c.d.Channel.IsConnected(),
		c.counts,
	)
}
