//go:build linux

package gpio

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

var hostInitOnce sync.Once

func hostInit() error {
	var err error
	hostInitOnce.Do(func() {
		_, err = host.Init()
	})
	return err
}

// RealButtonLine reads the button through the Linux GPIO character device.
// Edges are delivered by the kernel event stream, which stands in for the
// edge interrupt on bare-metal targets.
type RealButtonLine struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealButtonLine requests the button pin as input with pull-up and
// both-edge events. edge is called from the event goroutine; it must be
// non-blocking.
func NewRealButtonLine(pin int, edge EdgeFunc) (*RealButtonLine, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			// Active-low: falling edge = pressed.
			edge(evt.Type == gpiocdev.LineEventFallingEdge, time.Now())
		}))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button pin %d: %w", pin, err)
	}

	return &RealButtonLine{chip: chip, line: line}, nil
}

// Level returns the current logical button state (true = pressed).
func (l *RealButtonLine) Level() (bool, error) {
	raw, err := l.line.Value()
	if err != nil {
		return false, fmt.Errorf("read button pin: %w", err)
	}
	// Active-low behind the pull-up.
	return raw == 0, nil
}

// Close releases the line. The pin is reconfigured to plain input first
// so the pull-up state survives for wake detection.
func (l *RealButtonLine) Close() error {
	var errs []error
	if l.line != nil {
		if err := l.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure button pin: %w", err))
		}
		if err := l.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pin: %w", err))
		}
	}
	if l.chip != nil {
		if err := l.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealPWM drives the buzzer pin through periph.io hardware PWM.
type RealPWM struct {
	pin  gpio.PinIO
	freq physic.Frequency
}

// NewRealPWM opens the buzzer pin for PWM output.
func NewRealPWM(pin int) (*RealPWM, error) {
	if err := hostInit(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p := gpioreg.ByName(fmt.Sprintf("GPIO%d", pin))
	if p == nil {
		return nil, fmt.Errorf("buzzer pin GPIO%d not found", pin)
	}
	if err := p.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("init buzzer pin: %w", err)
	}
	return &RealPWM{pin: p, freq: 1 * physic.KiloHertz}, nil
}

// SetTone programs the carrier frequency for subsequent SetActive(true).
func (p *RealPWM) SetTone(freqHz int) error {
	if freqHz <= 0 {
		return fmt.Errorf("invalid tone frequency %d", freqHz)
	}
	p.freq = physic.Frequency(freqHz) * physic.Hertz
	return nil
}

// SetActive gates the output at 50% duty.
func (p *RealPWM) SetActive(on bool) error {
	if !on {
		if err := p.pin.Out(gpio.Low); err != nil {
			return fmt.Errorf("silence buzzer: %w", err)
		}
		return nil
	}
	if err := p.pin.PWM(gpio.DutyHalf, p.freq); err != nil {
		return fmt.Errorf("drive buzzer: %w", err)
	}
	return nil
}

// Close silences and releases the output.
func (p *RealPWM) Close() error {
	return p.pin.Out(gpio.Low)
}

// RealPower suspends the board through the kernel power interface.
type RealPower struct {
	// StatePath is the sysfs power state file; overridable for tests.
	StatePath string
}

// NewRealPower returns a Power backed by /sys/power/state.
func NewRealPower() *RealPower {
	return &RealPower{StatePath: "/sys/power/state"}
}

// EnterLowPower suspends to RAM. The wake pin is expected to be wired as
// a kernel wakeup source; wakePin and wakeLevel document the contract for
// platforms that need explicit configuration. On resume the process exits
// so the service manager restarts the daemon into its wake-up path.
func (p *RealPower) EnterLowPower(wakePin int, wakeLevel bool) error {
	if err := os.WriteFile(p.StatePath, []byte("mem"), 0o644); err != nil {
		return fmt.Errorf("enter low power: %w", err)
	}
	// The write returns after resume; a fresh boot of the state machine
	// is the only sane continuation.
	os.Exit(0)
	return nil
}
