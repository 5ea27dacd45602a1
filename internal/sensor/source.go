package sensor

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// Source samples the bus, serving a cached reading within the minimum
// sample interval. Not safe for concurrent use; it belongs to the
// cooperative loop.
type Source struct {
	bus      Bus
	interval time.Duration

	last       Reading
	lastReadAt time.Time
}

// NewSource creates a Source over bus with the given minimum sample
// interval.
func NewSource(bus Bus, interval time.Duration) *Source {
	return &Source{bus: bus, interval: interval}
}

// Initialize brings the bus up, retrying with a constant backoff.
// A failure here is fatal to bring-up; the caller must not enter the
// monitoring loop.
func (s *Source) Initialize() error {
	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(500*time.Millisecond), 4)
	return backoff.Retry(func() error {
		if err := s.bus.Initialize(); err != nil {
			log.Warnf("sensor init failed, retrying: %v", err)
			return err
		}
		return nil
	}, bo)
}

// Read attempts one sample. Within the minimum interval of the last
// valid sample the cached reading is returned unchanged. A bus failure
// yields Valid=false and leaves the cache untouched.
func (s *Source) Read(now time.Time) Reading {
	if s.last.Valid && now.Sub(s.lastReadAt) < s.interval {
		return s.last
	}

	co2, hum, temp, err := s.bus.Sample()
	if err != nil {
		log.Warnf("sensor sample failed: %v", err)
		return Reading{Valid: false, SampledAt: now}
	}

	r := Reading{
		CO2PPM:      co2,
		HumidityPct: hum,
		TempC:       temp,
		Valid:       true,
		SampledAt:   now,
	}
	s.last = r
	s.lastReadAt = now
	return r
}

// Last returns the cached reading, valid or not.
func (s *Source) Last() Reading {
	return s.last
}

// Reset invalidates the cache and re-initializes the bus. Best-effort:
// an init failure is logged and the next Read proceeds regardless.
func (s *Source) Reset() {
	s.last = Reading{}
	s.lastReadAt = time.Time{}
	if err := s.bus.Initialize(); err != nil {
		log.Warnf("sensor reset: re-init failed: %v", err)
	}
}
