package sensor

import (
	"errors"
	"testing"
	"time"
)

func TestClassifyBands(t *testing.T) {
	cases := []struct {
		co2  float64
		want AlertLevel
	}{
		{0, AlertNone},
		{400, AlertNone},
		{1000, AlertNone}, // inclusive upper bound
		{1000.1, AlertLow},
		{1500, AlertLow},
		{5000, AlertLow},
		{5000.1, AlertMedium},
		{6000, AlertMedium},
		{10000, AlertMedium},
		{10000.1, AlertHigh},
		{11000, AlertHigh},
		{100000, AlertHigh},
	}
	for _, c := range cases {
		if got := Classify(c.co2); got != c.want {
			t.Errorf("Classify(%v) = %v, want %v", c.co2, got, c.want)
		}
	}
}

func TestClassifyMonotonic(t *testing.T) {
	prev := AlertNone
	for co2 := 0.0; co2 <= 20000; co2 += 50 {
		got := Classify(co2)
		if got < prev {
			t.Fatalf("Classify not monotonic: %v at %v ppm after %v", got, co2, prev)
		}
		prev = got
	}
}

func TestClassifyPure(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := Classify(6000); got != AlertMedium {
			t.Fatalf("call %d: Classify(6000) = %v, want MEDIUM", i, got)
		}
	}
}

func TestClassifyNeverCritical(t *testing.T) {
	for co2 := 0.0; co2 <= 200000; co2 += 500 {
		if Classify(co2) == AlertCritical {
			t.Fatalf("Classify(%v) produced CRITICAL", co2)
		}
	}
}

func TestReadCachesWithinInterval(t *testing.T) {
	bus := NewFakeBus([]FakeSample{
		{CO2: 800, Humidity: 40, Temp: 20},
		{CO2: 900, Humidity: 41, Temp: 21},
	})
	src := NewSource(bus, time.Second)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	first := src.Read(now)
	if !first.Valid {
		t.Fatal("first read should be valid")
	}
	if bus.SampleCalls != 1 {
		t.Fatalf("expected 1 bus sample, got %d", bus.SampleCalls)
	}

	// Within the interval: bit-identical cached reading, no bus traffic.
	second := src.Read(now.Add(500 * time.Millisecond))
	if second != first {
		t.Errorf("cached reading differs: %+v vs %+v", second, first)
	}
	if bus.SampleCalls != 1 {
		t.Errorf("cache hit should not touch the bus, got %d calls", bus.SampleCalls)
	}

	// Past the interval: a fresh sample.
	third := src.Read(now.Add(1100 * time.Millisecond))
	if third.CO2PPM != 900 {
		t.Errorf("expected fresh sample co2=900, got %v", third.CO2PPM)
	}
	if bus.SampleCalls != 2 {
		t.Errorf("expected 2 bus samples, got %d", bus.SampleCalls)
	}
}

func TestReadFailureLeavesCacheIntact(t *testing.T) {
	bus := NewFakeBus([]FakeSample{
		{CO2: 800, Humidity: 40, Temp: 20},
		{Err: errors.New("i2c timeout")},
	})
	src := NewSource(bus, time.Second)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	first := src.Read(now)
	if !first.Valid {
		t.Fatal("first read should be valid")
	}

	failed := src.Read(now.Add(2 * time.Second))
	if failed.Valid {
		t.Error("failed sample should be Valid=false")
	}
	if got := src.Last(); got != first {
		t.Errorf("failure disturbed the cached reading: %+v", got)
	}
}

func TestResetInvalidatesCache(t *testing.T) {
	bus := NewFakeBus([]FakeSample{
		{CO2: 800, Humidity: 40, Temp: 20},
		{CO2: 900, Humidity: 41, Temp: 21},
	})
	src := NewSource(bus, time.Second)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	src.Read(now)
	src.Reset()

	if src.Last().Valid {
		t.Error("reset should invalidate the cache")
	}
	if bus.InitCalls != 1 {
		t.Errorf("reset should re-initialize the bus, got %d init calls", bus.InitCalls)
	}

	// Next read within the old interval must hit the bus again.
	r := src.Read(now.Add(100 * time.Millisecond))
	if !r.Valid || r.CO2PPM != 900 {
		t.Errorf("expected fresh sample after reset, got %+v", r)
	}
}

func TestInitializeRetries(t *testing.T) {
	bus := NewFakeBus([]FakeSample{{CO2: 800}})
	bus.InitError = errors.New("no ack")
	src := NewSource(bus, time.Second)

	if err := src.Initialize(); err == nil {
		t.Error("expected error when the bus never initializes")
	}
	if bus.InitCalls < 2 {
		t.Errorf("expected retries, got %d init calls", bus.InitCalls)
	}
}
