// Package alarm sequences buzzer tone patterns for alert levels.
// The driver only mutates timing state in Tick, so it can run on the
// cooperative loop without locks.
package alarm

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/air-monitor/internal/gpio"
	"github.com/sweeney/air-monitor/internal/sensor"
)

// Tone frequencies in Hz, rising with severity.
const (
	ToneLow      = 800
	ToneMedium   = 1200
	ToneHigh     = 1800
	ToneCritical = 2500
)

// ToneFor returns the buzzer frequency for an alert level, or 0 for
// AlertNone.
func ToneFor(level sensor.AlertLevel) int {
	switch level {
	case sensor.AlertLow:
		return ToneLow
	case sensor.AlertMedium:
		return ToneMedium
	case sensor.AlertHigh:
		return ToneHigh
	case sensor.AlertCritical:
		return ToneCritical
	default:
		return 0
	}
}

// Driver drives a periodic on/off tone pattern on a PWM output.
type Driver struct {
	out        gpio.PWMOutput
	cadence    time.Duration
	maxToggles int

	muted      bool
	level      sensor.AlertLevel
	lastToggle time.Time
	toggles    int
	gateOn     bool
}

// New creates a Driver with the given toggle cadence and pattern length.
func New(out gpio.PWMOutput, cadence time.Duration, maxToggles int) *Driver {
	return &Driver{out: out, cadence: cadence, maxToggles: maxToggles}
}

// Start begins the pattern for level. A no-op while muted or for
// AlertNone.
func (d *Driver) Start(level sensor.AlertLevel, now time.Time) {
	if d.muted || level == sensor.AlertNone {
		return
	}

	d.level = level
	d.toggles = 0
	d.lastToggle = now

	if err := d.out.SetTone(ToneFor(level)); err != nil {
		log.Warnf("alarm: set tone: %v", err)
	}
	if err := d.out.SetActive(true); err != nil {
		log.Warnf("alarm: drive output: %v", err)
	}
	d.gateOn = true
	log.Infof("alarm started, level %s", level)
}

// Stop silences output immediately and resets the repeat counter.
func (d *Driver) Stop() {
	d.level = sensor.AlertNone
	d.toggles = 0
	d.silence()
}

// Mute gates Start and silences any in-progress pattern.
func (d *Driver) Mute() {
	d.muted = true
	d.silence()
	log.Info("alarm muted")
}

// Unmute re-enables Start. It does not resume a silenced pattern.
func (d *Driver) Unmute() {
	d.muted = false
	log.Info("alarm unmuted")
}

// IsMuted reports whether Start is currently gated off.
func (d *Driver) IsMuted() bool {
	return d.muted
}

// IsActive reports whether a pattern is currently sounding and not
// muted.
func (d *Driver) IsActive() bool {
	return d.level != sensor.AlertNone && !d.muted
}

// Tick toggles the output at the cadence and auto-stops after the
// bounded number of toggles. Must be called at least once per cadence
// period; this is the only method that mutates timing state.
func (d *Driver) Tick(now time.Time) {
	if d.level == sensor.AlertNone || d.muted {
		return
	}
	if now.Sub(d.lastToggle) < d.cadence {
		return
	}

	d.lastToggle = now
	d.toggles++
	d.gateOn = d.toggles%2 == 0
	if err := d.out.SetActive(d.gateOn); err != nil {
		log.Warnf("alarm: toggle output: %v", err)
	}

	if d.toggles >= d.maxToggles {
		d.Stop()
	}
}

// Chirp plays a short confirmation beep, blocking for its duration.
// Used as the farewell cue before sleep; never call it from the tick
// path.
func (d *Driver) Chirp(duration time.Duration) {
	if d.muted {
		return
	}
	if err := d.out.SetTone(ToneLow); err != nil {
		log.Warnf("alarm: chirp tone: %v", err)
		return
	}
	if err := d.out.SetActive(true); err != nil {
		log.Warnf("alarm: chirp drive: %v", err)
		return
	}
	time.Sleep(duration)
	d.silence()
}

func (d *Driver) silence() {
	d.gateOn = false
	if err := d.out.SetActive(false); err != nil {
		log.Warnf("alarm: silence output: %v", err)
	}
}
