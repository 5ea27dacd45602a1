//go:build !linux

package wireless

import "errors"

// Service identity, shared with the phone app.
const (
	DeviceName      = "RespirationMonitor"
	ServiceUUIDStr  = "12345678-1234-1234-1234-123456789abc"
	DataCharUUIDStr = "87654321-4321-4321-4321-cba987654321"
	CtrlCharUUIDStr = "11111111-2222-3333-4444-555555555555"
)

var errUnsupported = errors.New("wireless: not supported on this platform (requires Linux)")

// BLEEndpoint is not available on non-Linux platforms.
type BLEEndpoint struct{}

// NewBLEEndpoint returns a stub on non-Linux platforms.
func NewBLEEndpoint() *BLEEndpoint { return &BLEEndpoint{} }

func (e *BLEEndpoint) Start(events Events) error  { return errUnsupported }
func (e *BLEEndpoint) Advertise() error           { return errUnsupported }
func (e *BLEEndpoint) StopAdvertising() error     { return nil }
func (e *BLEEndpoint) Notify(payload []byte) error { return errUnsupported }
func (e *BLEEndpoint) Close() error               { return nil }
