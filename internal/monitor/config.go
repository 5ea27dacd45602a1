package monitor

import (
	"time"

	"github.com/sweeney/air-monitor/internal/gpio"
)

// Config is the compiled-in device configuration. Every recognized
// option has a default matching the shipped hardware.
type Config struct {
	// Sensing.
	SampleInterval   time.Duration // minimum time between samples
	ReadRetryBackoff time.Duration // retry delay after a failed sample

	// Button windows.
	Debounce time.Duration
	Hold     time.Duration

	// Wireless.
	DiscoveryTimeout time.Duration

	// Alarm pattern.
	AlarmCadence    time.Duration
	AlarmMaxToggles int
	ChirpDuration   time.Duration // farewell beep before sleep

	// Pins (BCM numbering).
	ButtonPin int
	BuzzerPin int

	// WakeOnPress is the wake level handed to the power collaborator.
	WakeOnPress bool
}

// DefaultConfig returns the shipped device configuration.
func DefaultConfig() Config {
	return Config{
		SampleInterval:   1000 * time.Millisecond,
		ReadRetryBackoff: 500 * time.Millisecond,
		Debounce:         50 * time.Millisecond,
		Hold:             2000 * time.Millisecond,
		DiscoveryTimeout: 30000 * time.Millisecond,
		AlarmCadence:     500 * time.Millisecond,
		AlarmMaxToggles:  10,
		ChirpDuration:    150 * time.Millisecond,
		ButtonPin:        gpio.DefaultPinButton,
		BuzzerPin:        gpio.DefaultPinBuzzer,
		WakeOnPress:      true,
	}
}
