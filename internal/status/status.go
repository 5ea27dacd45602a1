// Package status provides a thread-safe snapshot of monitor state for
// the HTTP endpoint and the Prometheus collector.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/air-monitor/internal/sensor"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs           int64
	SampleIntervalMs int64
	DebounceMs       int64
	HoldMs           int64
	DiscoveryMs      int64
	Broker           string
	HTTPPort         string
}

// Counts tracks event totals since startup.
type Counts struct {
	AlertsRaised   int
	AlertsCleared  int
	SensorFailures int
	Commands       int
	TelemetrySent  int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Reading       sensor.Reading
	Alert         sensor.AlertLevel
	State         string
	AlarmActive   bool
	AlarmMuted    bool
	PeerConnected bool
	MQTTConnected bool
	Counts        Counts
	StartTime     time.Time
	Now           time.Time
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the per-tick monitor state. Called from the loop on
// every pass.
func (t *Tracker) Update(r sensor.Reading, alert sensor.AlertLevel, state string, alarmActive, alarmMuted, peerConnected bool, counts Counts) {
	t.mu.Lock()
	t.snap.Reading = r
	t.snap.Alert = alert
	t.snap.State = state
	t.snap.AlarmActive = alarmActive
	t.snap.AlarmMuted = alarmMuted
	t.snap.PeerConnected = peerConnected
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the uplink connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
