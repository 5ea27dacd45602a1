package gpio

import "time"

// FakeButtonLine is a test double that lets tests raise edges and set
// the raw level directly.
type FakeButtonLine struct {
	edge EdgeFunc

	// Pressed is the current raw level returned by Level.
	Pressed bool

	// LevelError, if set, will be returned by Level.
	LevelError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeButtonLine creates a FakeButtonLine delivering edges to edge.
func NewFakeButtonLine(edge EdgeFunc) *FakeButtonLine {
	return &FakeButtonLine{edge: edge}
}

// Trigger raises an edge at the given time and updates the raw level.
func (f *FakeButtonLine) Trigger(pressed bool, at time.Time) {
	f.Pressed = pressed
	if f.edge != nil {
		f.edge(pressed, at)
	}
}

// Level returns the scripted raw level.
func (f *FakeButtonLine) Level() (bool, error) {
	if f.LevelError != nil {
		return false, f.LevelError
	}
	return f.Pressed, nil
}

// Close marks the line as closed.
func (f *FakeButtonLine) Close() error {
	f.Closed = true
	return nil
}

// FakePWM records tone and gate changes for test assertions.
type FakePWM struct {
	// Tones contains every frequency passed to SetTone, in order.
	Tones []int

	// Gates contains every value passed to SetActive, in order.
	Gates []bool

	// Active is the current gate state.
	Active bool

	// Tone is the current carrier frequency.
	Tone int

	// Closed tracks if Close was called.
	Closed bool

	// Err, if set, will be returned by SetTone and SetActive.
	Err error
}

// NewFakePWM creates a FakePWM for testing.
func NewFakePWM() *FakePWM {
	return &FakePWM{}
}

// SetTone records the carrier frequency.
func (f *FakePWM) SetTone(freqHz int) error {
	if f.Err != nil {
		return f.Err
	}
	f.Tone = freqHz
	f.Tones = append(f.Tones, freqHz)
	return nil
}

// SetActive records the gate state.
func (f *FakePWM) SetActive(on bool) error {
	if f.Err != nil {
		return f.Err
	}
	f.Active = on
	f.Gates = append(f.Gates, on)
	return nil
}

// Close silences and marks the output closed.
func (f *FakePWM) Close() error {
	f.Active = false
	f.Closed = true
	return nil
}

// FakePower records low-power entry instead of powering down.
type FakePower struct {
	// Entered tracks if EnterLowPower was called.
	Entered bool

	// WakePin and WakeLevel record the last call's arguments.
	WakePin   int
	WakeLevel bool

	// Err, if set, will be returned by EnterLowPower.
	Err error
}

// NewFakePower creates a FakePower for testing.
func NewFakePower() *FakePower {
	return &FakePower{}
}

// EnterLowPower records the request and returns, unlike real hardware.
func (f *FakePower) EnterLowPower(wakePin int, wakeLevel bool) error {
	if f.Err != nil {
		return f.Err
	}
	f.Entered = true
	f.WakePin = wakePin
	f.WakeLevel = wakeLevel
	return nil
}
