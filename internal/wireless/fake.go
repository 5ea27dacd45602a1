package wireless

// FakeEndpoint is a test double that records endpoint calls and lets
// tests play the peer.
type FakeEndpoint struct {
	events Events

	// Started tracks if Start was called.
	Started bool

	// Advertising is the current broadcast state.
	Advertising bool

	// AdvertiseCalls counts Advertise invocations (including Start's).
	AdvertiseCalls int

	// Notified contains every payload passed to Notify.
	Notified [][]byte

	// Closed tracks if Close was called.
	Closed bool

	// StartError, if set, will be returned by Start.
	StartError error

	// NotifyError, if set, will be returned by Notify.
	NotifyError error
}

// NewFakeEndpoint creates a FakeEndpoint for testing.
func NewFakeEndpoint() *FakeEndpoint {
	return &FakeEndpoint{}
}

// Start records the event sink and begins "advertising".
func (f *FakeEndpoint) Start(events Events) error {
	if f.StartError != nil {
		return f.StartError
	}
	f.events = events
	f.Started = true
	return f.Advertise()
}

// Advertise records a broadcast start.
func (f *FakeEndpoint) Advertise() error {
	f.Advertising = true
	f.AdvertiseCalls++
	return nil
}

// StopAdvertising records a broadcast stop.
func (f *FakeEndpoint) StopAdvertising() error {
	f.Advertising = false
	return nil
}

// Notify records the payload.
func (f *FakeEndpoint) Notify(payload []byte) error {
	if f.NotifyError != nil {
		return f.NotifyError
	}
	f.Notified = append(f.Notified, payload)
	return nil
}

// Close marks the endpoint closed.
func (f *FakeEndpoint) Close() error {
	f.Closed = true
	return nil
}

// PeerConnect simulates a central attaching.
func (f *FakeEndpoint) PeerConnect() {
	f.events.OnConnect()
}

// PeerDisconnect simulates a central detaching.
func (f *FakeEndpoint) PeerDisconnect() {
	f.events.OnDisconnect()
}

// PeerWrite simulates a write to the command characteristic.
func (f *FakeEndpoint) PeerWrite(payload []byte) {
	f.events.OnCommand(payload)
}
