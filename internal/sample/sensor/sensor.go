package sensor

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/dshills/eventbus/internal/event"
)

// Kind identifies what a sensor measures.
type Kind int

const (
	Temperature Kind = iota
	Humidity
	WaterLevel
)

func (k Kind) String() string {
	switch k {
	case Temperature:
		return "Temperature"
	case Humidity:
		return "Humidity"
	case WaterLevel:
		return "WaterLevel"
	default:
		return "Unknown"
	}
}

// Sensor publishes simulated readings for one location.
type Sensor struct {
	ID     string
	Region string
	Kind   Kind

	bus       event.Bus
	baseline  float64
	threshold float64
	severity  string
	minDelay  time.Duration
	maxDelay  time.Duration
	rng       *rand.Rand
}

// NewTemperatureSensor creates a sensor whose readings vary around
// baseline. Readings more than 15 degrees above baseline raise a critical
// alert.
func NewTemperatureSensor(id, region string, bus event.Bus, baseline float64) *Sensor {
	return &Sensor{
		ID: id, Region: region, Kind: Temperature, bus: bus,
		baseline: baseline, threshold: baseline + 15, severity: SeverityCritical,
		minDelay: time.Second, maxDelay: 3 * time.Second,
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// NewHumiditySensor creates a sensor warning above 85%.
func NewHumiditySensor(id, region string, bus event.Bus, baseline float64) *Sensor {
	return &Sensor{
		ID: id, Region: region, Kind: Humidity, bus: bus,
		baseline: baseline, threshold: 85, severity: SeverityWarning,
		minDelay: 1500 * time.Millisecond, maxDelay: 3500 * time.Millisecond,
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// NewWaterLevelSensor creates a sensor raising a critical alert 1.5m above
// the normal level.
func NewWaterLevelSensor(id, location string, bus event.Bus, normal float64) *Sensor {
	return &Sensor{
		ID: id, Region: location, Kind: WaterLevel, bus: bus,
		baseline: normal, threshold: normal + 1.5, severity: SeverityCritical,
		minDelay: 2 * time.Second, maxDelay: 4 * time.Second,
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Seed makes the sensor's readings reproducible.
func (s *Sensor) Seed(seed uint64) *Sensor {
	s.rng = rand.New(rand.NewPCG(seed, seed))
	return s
}

// Run publishes readings at random intervals until ctx is done.
func (s *Sensor) Run(ctx context.Context) error {
	for {
		if err := s.Emit(ctx, s.sample()); err != nil {
			return err
		}

		delay := s.minDelay + time.Duration(s.rng.Int64N(int64(s.maxDelay-s.minDelay)+1))
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// Emit publishes one reading with the given value and an alert if it
// crosses the threshold.
func (s *Sensor) Emit(ctx context.Context, value float64) error {
	if err := s.bus.PublishAsync(ctx, s.reading(value)); err != nil {
		return err
	}
	if value <= s.threshold {
		return nil
	}
	return s.bus.PublishAsync(ctx, Alert{
		Base:       event.NewBase(),
		SensorType: s.Kind.String(),
		Severity:   s.severity,
		Value:      value,
		Threshold:  s.threshold,
		Region:     s.Region,
	})
}

func (s *Sensor) sample() float64 {
	r := s.rng.Float64()
	switch s.Kind {
	case Humidity:
		return math.Min(100, math.Max(0, s.baseline+r*40-20))
	case WaterLevel:
		return math.Max(0, s.baseline+r*2.5-0.5)
	default:
		return s.baseline + r*20 - 5
	}
}

func (s *Sensor) reading(value float64) any {
	switch s.Kind {
	case Humidity:
		return HumidityReading{Base: event.NewBase(), SensorID: s.ID, Region: s.Region, Percent: value}
	case WaterLevel:
		return WaterLevelReading{Base: event.NewBase(), SensorID: s.ID, Location: s.Region, Meters: value}
	default:
		return TemperatureReading{Base: event.NewBase(), SensorID: s.ID, Region: s.Region, Celsius: value}
	}
}
