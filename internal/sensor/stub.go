//go:build !linux

package sensor

import "errors"

var errUnsupported = errors.New("sensor: not supported on this platform (requires Linux)")

// RealBus is not available on non-Linux platforms.
type RealBus struct{}

// NewRealBus returns an error on non-Linux platforms.
func NewRealBus() (*RealBus, error) { return nil, errUnsupported }

func (b *RealBus) Initialize() error { return errUnsupported }

func (b *RealBus) Sample() (float64, float64, float64, error) {
	return 0, 0, 0, errUnsupported
}

func (b *RealBus) Close() error { return nil }
