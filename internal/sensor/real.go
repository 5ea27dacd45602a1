//go:build linux

package sensor

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// I2C addresses and registers for the sensor pair.
const (
	ens160Addr = 0x53
	aht21Addr  = 0x38

	ens160RegOpMode     = 0x10
	ens160RegDataStatus = 0x20
	ens160RegECO2       = 0x24

	ens160OpModeReset    = 0xF0
	ens160OpModeStandard = 0x02

	ens160NewDataBit = 0x02
)

var busInitOnce sync.Once

func periphInit() error {
	var err error
	busInitOnce.Do(func() {
		_, err = host.Init()
	})
	return err
}

// RealBus reads an ENS160 (CO2) and an AHT21 (humidity/temperature)
// over the Linux I2C bus via periph.io.
type RealBus struct {
	bus    i2c.BusCloser
	ens160 *i2c.Dev
	aht21  *i2c.Dev
}

// NewRealBus opens the default I2C bus and binds both devices.
// Initialize must still be called before sampling.
func NewRealBus() (*RealBus, error) {
	if err := periphInit(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	bus, err := i2creg.Open("")
	if err != nil {
		return nil, fmt.Errorf("open i2c bus: %w", err)
	}
	return &RealBus{
		bus:    bus,
		ens160: &i2c.Dev{Bus: bus, Addr: ens160Addr},
		aht21:  &i2c.Dev{Bus: bus, Addr: aht21Addr},
	}, nil
}

// Initialize resets the ENS160 into standard gas sensing mode and
// issues the AHT21 init command.
func (b *RealBus) Initialize() error {
	if err := b.ens160.Tx([]byte{ens160RegOpMode, ens160OpModeReset}, nil); err != nil {
		return fmt.Errorf("ens160 reset: %w", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := b.ens160.Tx([]byte{ens160RegOpMode, ens160OpModeStandard}, nil); err != nil {
		return fmt.Errorf("ens160 set standard mode: %w", err)
	}

	// AHT21 init + calibrate.
	if err := b.aht21.Tx([]byte{0xBE, 0x08, 0x00}, nil); err != nil {
		return fmt.Errorf("aht21 init: %w", err)
	}
	// The gas sensor needs a short warm-up before data is meaningful.
	time.Sleep(500 * time.Millisecond)
	return nil
}

// Sample performs one measurement transaction on both devices.
func (b *RealBus) Sample() (float64, float64, float64, error) {
	// AHT21: trigger measurement, wait, read 7 bytes.
	if err := b.aht21.Tx([]byte{0xAC, 0x33, 0x00}, nil); err != nil {
		return 0, 0, 0, fmt.Errorf("aht21 trigger: %w", err)
	}
	time.Sleep(80 * time.Millisecond)
	raw := make([]byte, 7)
	if err := b.aht21.Tx(nil, raw); err != nil {
		return 0, 0, 0, fmt.Errorf("aht21 read: %w", err)
	}
	if raw[0]&0x80 != 0 {
		return 0, 0, 0, fmt.Errorf("aht21 busy")
	}
	humRaw := uint32(raw[1])<<12 | uint32(raw[2])<<4 | uint32(raw[3])>>4
	tempRaw := uint32(raw[3]&0x0F)<<16 | uint32(raw[4])<<8 | uint32(raw[5])
	humidity := float64(humRaw) / (1 << 20) * 100.0
	temp := float64(tempRaw)/(1<<20)*200.0 - 50.0

	// ENS160: check data-ready, then read eCO2.
	status := make([]byte, 1)
	if err := b.ens160.Tx([]byte{ens160RegDataStatus}, status); err != nil {
		return 0, 0, 0, fmt.Errorf("ens160 status: %w", err)
	}
	if status[0]&ens160NewDataBit == 0 {
		return 0, 0, 0, fmt.Errorf("ens160 data not ready")
	}
	eco2 := make([]byte, 2)
	if err := b.ens160.Tx([]byte{ens160RegECO2}, eco2); err != nil {
		return 0, 0, 0, fmt.Errorf("ens160 read eco2: %w", err)
	}
	co2 := float64(uint16(eco2[0]) | uint16(eco2[1])<<8)

	return co2, humidity, temp, nil
}

// Close releases the I2C bus.
func (b *RealBus) Close() error {
	return b.bus.Close()
}
