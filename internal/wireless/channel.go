// Package wireless maintains the single logical BLE link to a phone
// app: telemetry out over a notify characteristic, commands in over a
// write characteristic, plus the discovery-timeout policy.
// The concrete stack lives behind the Endpoint interface; the real
// implementation uses go-ble, the fake scripts peer behavior.
package wireless

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/air-monitor/internal/sensor"
)

// Command is a decoded control message from the peer.
type Command int

const (
	CmdNone Command = iota
	CmdMuteAlarm
	CmdForceSleep
	CmdRequestData
	CmdResetAlerts
)

// String returns the command name for logs.
func (c Command) String() string {
	switch c {
	case CmdNone:
		return "NONE"
	case CmdMuteAlarm:
		return "MUTE_ALARM"
	case CmdForceSleep:
		return "FORCE_SLEEP"
	case CmdRequestData:
		return "REQUEST_DATA"
	case CmdResetAlerts:
		return "RESET_ALERTS"
	default:
		return "UNKNOWN"
	}
}

// ParseCommand decodes a command payload: a single ASCII integer 1-4.
// Anything else is rejected.
func ParseCommand(payload []byte) (Command, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(string(payload)))
	if err != nil {
		return CmdNone, false
	}
	switch n {
	case 1:
		return CmdMuteAlarm, true
	case 2:
		return CmdForceSleep, true
	case 3:
		return CmdRequestData, true
	case 4:
		return CmdResetAlerts, true
	default:
		return CmdNone, false
	}
}

// Telemetry is the flat record notified to the peer.
type Telemetry struct {
	CO2         float64 `json:"co2"`
	Humidity    float64 `json:"humidity"`
	Temperature float64 `json:"temperature"`
	Alert       int     `json:"alert"`
	Timestamp   int64   `json:"timestamp"` // device-relative milliseconds
}

// FormatTelemetry frames one reading for the wire. since anchors the
// device-relative timestamp.
func FormatTelemetry(r sensor.Reading, level sensor.AlertLevel, since time.Time) []byte {
	t := Telemetry{
		CO2:         r.CO2PPM,
		Humidity:    r.HumidityPct,
		Temperature: r.TempC,
		Alert:       int(level),
		Timestamp:   r.SampledAt.Sub(since).Milliseconds(),
	}
	data, _ := json.Marshal(t)
	return data
}

// Endpoint is the platform BLE stack. All methods must be non-blocking;
// Start registers the event sink whose methods the stack invokes from
// its own event context.
type Endpoint interface {
	// Start brings up the service and begins advertising.
	Start(events Events) error

	// Advertise (re)starts discovery broadcasting.
	Advertise() error

	// StopAdvertising halts discovery broadcasting.
	StopAdvertising() error

	// Notify pushes a payload to the connected peer.
	Notify(payload []byte) error

	// Close tears the endpoint down.
	Close() error
}

// Events is the narrow callback set the endpoint invokes. Handlers only
// mutate connection state and the pending-command cell; they never block.
type Events interface {
	OnConnect()
	OnDisconnect()
	OnCommand(payload []byte)
}

// Channel owns connection state and the pending command. The event-side
// methods (OnConnect, OnDisconnect, OnCommand) are invoked by the
// endpoint; everything else belongs to the cooperative loop.
type Channel struct {
	ep      Endpoint
	timeout time.Duration

	connected atomic.Bool
	pending   atomic.Int32

	openedAt time.Time
	opened   bool
}

// NewChannel creates a Channel over ep with the given discovery timeout.
func NewChannel(ep Endpoint, timeout time.Duration) *Channel {
	return &Channel{ep: ep, timeout: timeout}
}

// Open starts the service endpoint and the discovery-timeout clock.
// Idempotent only at process start.
func (c *Channel) Open(now time.Time) error {
	if c.opened {
		return nil
	}
	if err := c.ep.Start(c); err != nil {
		return err
	}
	c.opened = true
	c.openedAt = now
	log.Info("wireless service started, advertising")
	return nil
}

// Send frames and notifies one telemetry record. A no-op when no peer
// is connected.
func (c *Channel) Send(r sensor.Reading, level sensor.AlertLevel) {
	if !c.connected.Load() {
		return
	}
	payload := FormatTelemetry(r, level, c.openedAt)
	if err := c.ep.Notify(payload); err != nil {
		log.Warnf("wireless notify failed: %v", err)
	}
}

// PollCommand returns and clears one pending decoded command.
func (c *Channel) PollCommand() Command {
	return Command(c.pending.Swap(int32(CmdNone)))
}

// IsConnected reflects the latest connect/disconnect callback.
func (c *Channel) IsConnected() bool {
	return c.connected.Load()
}

// HasTimedOut reports whether the discovery timeout has elapsed since
// Open. Only meaningful while no peer is connected.
func (c *Channel) HasTimedOut(now time.Time) bool {
	if !c.opened {
		return false
	}
	return now.Sub(c.openedAt) > c.timeout
}

// Close stops discovery broadcasting. The endpoint survives; closing
// is not teardown.
func (c *Channel) Close() error {
	if !c.opened {
		return nil
	}
	return c.ep.StopAdvertising()
}

// OnConnect records peer attach. Advertising stops while connected.
func (c *Channel) OnConnect() {
	c.connected.Store(true)
	if err := c.ep.StopAdvertising(); err != nil {
		log.Warnf("stop advertising: %v", err)
	}
	log.Info("wireless peer connected")
}

// OnDisconnect records peer detach and restarts discovery.
func (c *Channel) OnDisconnect() {
	c.connected.Store(false)
	if err := c.ep.Advertise(); err != nil {
		log.Warnf("restart advertising: %v", err)
	}
	log.Info("wireless peer disconnected, advertising again")
}

// OnCommand decodes an incoming payload into the pending-command cell.
// Malformed payloads are logged and dropped, never surfaced.
func (c *Channel) OnCommand(payload []byte) {
	cmd, ok := ParseCommand(payload)
	if !ok {
		log.Warnf("ignoring malformed command payload %q", payload)
		return
	}
	c.pending.Store(int32(cmd))
	log.Infof("received command %s", cmd)
}
