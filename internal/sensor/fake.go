package sensor

import "errors"

// FakeSample is one scripted bus measurement.
type FakeSample struct {
	CO2      float64
	Humidity float64
	Temp     float64
	Err      error
}

// FakeBus is a test double returning scripted samples.
type FakeBus struct {
	// Samples contains scripted measurements. Each call to Sample
	// consumes the next one; the last repeats when exhausted.
	Samples []FakeSample

	// InitError, if set, will be returned by Initialize.
	InitError error

	// InitCalls counts Initialize invocations.
	InitCalls int

	// SampleCalls counts Sample invocations.
	SampleCalls int

	// Closed tracks if Close was called.
	Closed bool

	index int
}

// NewFakeBus creates a FakeBus with the given samples.
func NewFakeBus(samples []FakeSample) *FakeBus {
	return &FakeBus{Samples: samples}
}

// Initialize records the call.
func (f *FakeBus) Initialize() error {
	f.InitCalls++
	return f.InitError
}

// Sample returns the next scripted measurement.
func (f *FakeBus) Sample() (float64, float64, float64, error) {
	f.SampleCalls++
	if len(f.Samples) == 0 {
		return 0, 0, 0, errors.New("no samples configured")
	}
	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	if s.Err != nil {
		return 0, 0, 0, s.Err
	}
	return s.CO2, s.Humidity, s.Temp, nil
}

// Close marks the bus as closed.
func (f *FakeBus) Close() error {
	f.Closed = true
	return nil
}
