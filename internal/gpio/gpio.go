// Package gpio provides the hardware capabilities the monitor needs:
// a button input line with edge callbacks, a PWM tone output for the
// buzzer, and entry into low-power sleep.
// The real implementations use the Linux GPIO character device and
// periph.io; fakes allow testing without hardware.
package gpio

import "time"

// EdgeFunc is invoked from the line-event context whenever the button
// level changes. pressed is the logical state after the edge (the raw
// line is active-low behind a pull-up). Implementations must not block:
// the callback runs on the event thread, not the cooperative loop.
type EdgeFunc func(pressed bool, at time.Time)

// ButtonLine is a debounce-free button input. Edge reporting happens
// through the EdgeFunc registered at construction; Level is for direct
// reads such as the pre-sleep release wait.
type ButtonLine interface {
	// Level returns the current logical state (true = pressed).
	Level() (bool, error)

	// Close releases the line.
	Close() error
}

// PWMOutput drives the buzzer. Frequency and gate are separate so a
// pattern can toggle output without reprogramming the carrier.
type PWMOutput interface {
	// SetTone programs the carrier frequency in Hz.
	SetTone(freqHz int) error

	// SetActive gates the output: true = 50% duty at the programmed
	// tone, false = silent.
	SetActive(on bool) error

	// Close silences and releases the output.
	Close() error
}

// Power enters the platform's low-power state.
type Power interface {
	// EnterLowPower powers down until the wake pin reaches wakeLevel.
	// On real hardware this call does not return to the caller.
	EnterLowPower(wakePin int, wakeLevel bool) error
}

// Pin defaults (BCM numbering).
const (
	DefaultPinButton = 14 // push button, internal pull-up
	DefaultPinBuzzer = 4  // buzzer PWM output
)
