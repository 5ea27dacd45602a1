//go:build linux

package wireless

import (
	"context"
	"sync"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Service identity, shared with the phone app.
const (
	DeviceName      = "RespirationMonitor"
	ServiceUUIDStr  = "12345678-1234-1234-1234-123456789abc"
	DataCharUUIDStr = "87654321-4321-4321-4321-cba987654321"
	CtrlCharUUIDStr = "11111111-2222-3333-4444-555555555555"
)

// BLEEndpoint is the go-ble peripheral implementation of Endpoint.
// Peer attach is observed through the notify subscription: the stack
// invokes the notify handler when the central subscribes and its
// context ends on detach.
type BLEEndpoint struct {
	name    string
	svcUUID ble.UUID

	events Events

	mu       sync.Mutex
	notifier ble.Notifier
	advStop  context.CancelFunc
}

// NewBLEEndpoint creates an endpoint advertising under the default
// device name.
func NewBLEEndpoint() *BLEEndpoint {
	return &BLEEndpoint{name: DeviceName}
}

// Start initializes the HCI device, registers the service and begins
// advertising.
func (e *BLEEndpoint) Start(events Events) error {
	e.events = events

	dev, err := linux.NewDevice()
	if err != nil {
		return errors.Wrap(err, "open hci device")
	}
	ble.SetDefaultDevice(dev)

	e.svcUUID = ble.MustParse(ServiceUUIDStr)
	svc := ble.NewService(e.svcUUID)

	data := svc.NewCharacteristic(ble.MustParse(DataCharUUIDStr))
	data.HandleNotify(ble.NotifyHandlerFunc(e.serveNotify))

	ctrl := svc.NewCharacteristic(ble.MustParse(CtrlCharUUIDStr))
	ctrl.HandleWrite(ble.WriteHandlerFunc(e.serveWrite))

	if err := ble.AddService(svc); err != nil {
		return errors.Wrap(err, "register service")
	}

	return e.Advertise()
}

// serveNotify runs for the lifetime of a subscription. Subscription is
// the attach signal; its context ending is the detach signal.
func (e *BLEEndpoint) serveNotify(req ble.Request, n ble.Notifier) {
	e.mu.Lock()
	e.notifier = n
	e.mu.Unlock()
	e.events.OnConnect()

	<-n.Context().Done()

	e.mu.Lock()
	e.notifier = nil
	e.mu.Unlock()
	e.events.OnDisconnect()
}

func (e *BLEEndpoint) serveWrite(req ble.Request, rsp ble.ResponseWriter) {
	e.events.OnCommand(req.Data())
}

// Advertise starts discovery broadcasting in the background.
func (e *BLEEndpoint) Advertise() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.advStop != nil {
		return nil // already advertising
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.advStop = cancel
	go func() {
		err := ble.AdvertiseNameAndServices(ctx, e.name, e.svcUUID)
		if err != nil && errors.Cause(err) != context.Canceled {
			log.Errorf("ble advertising stopped: %v", err)
		}
	}()
	return nil
}

// StopAdvertising halts discovery broadcasting.
func (e *BLEEndpoint) StopAdvertising() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.advStop != nil {
		e.advStop()
		e.advStop = nil
	}
	return nil
}

// Notify pushes a payload to the subscribed peer.
func (e *BLEEndpoint) Notify(payload []byte) error {
	e.mu.Lock()
	n := e.notifier
	e.mu.Unlock()
	if n == nil {
		return nil // no peer, nothing to do
	}
	if _, err := n.Write(payload); err != nil {
		return errors.Wrap(err, "notify peer")
	}
	return nil
}

// Close tears down the HCI device.
func (e *BLEEndpoint) Close() error {
	_ = e.StopAdvertising()
	return ble.Stop()
}
