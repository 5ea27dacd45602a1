//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealButtonLine is not available on non-Linux platforms.
type RealButtonLine struct{}

// NewRealButtonLine returns an error on non-Linux platforms.
func NewRealButtonLine(pin int, edge EdgeFunc) (*RealButtonLine, error) {
	return nil, errUnsupported
}

func (l *RealButtonLine) Level() (bool, error) { return false, errUnsupported }
func (l *RealButtonLine) Close() error         { return nil }

// RealPWM is not available on non-Linux platforms.
type RealPWM struct{}

// NewRealPWM returns an error on non-Linux platforms.
func NewRealPWM(pin int) (*RealPWM, error) { return nil, errUnsupported }

func (p *RealPWM) SetTone(freqHz int) error { return errUnsupported }
func (p *RealPWM) SetActive(on bool) error  { return errUnsupported }
func (p *RealPWM) Close() error             { return nil }

// RealPower is not available on non-Linux platforms.
type RealPower struct{}

// NewRealPower returns a stub on non-Linux platforms.
func NewRealPower() *RealPower { return &RealPower{} }

func (p *RealPower) EnterLowPower(wakePin int, wakeLevel bool) error {
	return errUnsupported
}
