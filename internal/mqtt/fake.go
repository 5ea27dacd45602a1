package mqtt

import (
	"github.com/sweeney/air-monitor/internal/sensor"
)

// FakePublisher records published messages for test assertions.
type FakePublisher struct {
	// Readings contains all telemetry readings that were published.
	Readings []sensor.Reading

	// Levels contains the alert level for each published reading.
	Levels []sensor.AlertLevel

	// TelemetryPayloads contains the JSON payloads that were published.
	TelemetryPayloads [][]byte

	// SystemEvents contains all lifecycle events that were published.
	SystemEvents []SystemEvent

	// TelemetryError, if set, will be returned by PublishTelemetry.
	TelemetryError error

	// SystemError, if set, will be returned by PublishSystem.
	SystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishTelemetry records the reading.
func (f *FakePublisher) PublishTelemetry(r sensor.Reading, level sensor.AlertLevel) error {
	if f.TelemetryError != nil {
		return f.TelemetryError
	}

	f.Readings = append(f.Readings, r)
	f.Levels = append(f.Levels, level)

	payload, err := FormatTelemetry(r, level)
	if err != nil {
		return err
	}
	f.TelemetryPayloads = append(f.TelemetryPayloads, payload)
	return nil
}

// PublishSystem records the lifecycle event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.SystemError != nil {
		return f.SystemError
	}
	f.SystemEvents = append(f.SystemEvents, event)
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}
