// Package sensor reads the CO2/humidity/temperature sensor pair,
// caches readings within the minimum sample interval, and classifies
// CO2 concentration into alert levels.
// The real bus talks ENS160 + AHT21 over I2C via periph.io; the fake
// returns scripted samples.
package sensor

import "time"

// AlertLevel grades CO2 concentration. Levels are ordered by severity.
type AlertLevel int

const (
	AlertNone AlertLevel = iota
	AlertLow
	AlertMedium
	AlertHigh
	AlertCritical // defined for the wire format; Classify never produces it
)

// String returns the level name for logs.
func (l AlertLevel) String() string {
	switch l {
	case AlertNone:
		return "NONE"
	case AlertLow:
		return "LOW"
	case AlertMedium:
		return "MEDIUM"
	case AlertHigh:
		return "HIGH"
	case AlertCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// CO2 thresholds in ppm, inclusive upper bounds.
const (
	ThresholdLow  = 1000.0
	ThresholdMed  = 5000.0
	ThresholdHigh = 10000.0
)

// Classify maps a CO2 concentration to an alert level. It is a pure
// function of its argument.
func Classify(co2PPM float64) AlertLevel {
	switch {
	case co2PPM <= ThresholdLow:
		return AlertNone
	case co2PPM <= ThresholdMed:
		return AlertLow
	case co2PPM <= ThresholdHigh:
		return AlertMedium
	default:
		return AlertHigh
	}
}

// Reading is one sample. A reading with Valid=false carries no
// trustworthy measurement fields. Immutable once returned.
type Reading struct {
	CO2PPM      float64
	HumidityPct float64
	TempC       float64
	Valid       bool
	SampledAt   time.Time
}

// Bus is the raw sensor transport. Implementations own protocol-level
// retries; interpretation and caching live in Source.
type Bus interface {
	// Initialize brings the sensors up. Called at startup and on Reset.
	Initialize() error

	// Sample performs one measurement transaction.
	Sample() (co2PPM, humidityPct, tempC float64, err error)

	// Close releases the bus.
	Close() error
}
