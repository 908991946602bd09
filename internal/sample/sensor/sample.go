// Package sensor is a sample sensor monitoring system built on the event
// bus. Sensors publish readings; displays subscribe with different
// priorities and thread modes.
package sensor

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/eventbus/internal/event"
	"github.com/dshills/eventbus/internal/event/binder"
	"github.com/dshills/eventbus/internal/sample/console"
)

// Displays groups the subscribers of the sample.
type Displays struct {
	North    *NumericDisplay
	South    *NumericDisplay
	Average  *AverageDisplay
	Detailed *DetailedDisplay
	Alert    *AlertDisplay
}

// NewDisplays creates the sample displays writing to out.
func NewDisplays(out *console.Console) *Displays {
	return &Displays{
		North:    NewNumericDisplay("North", "North", out),
		South:    NewNumericDisplay("South", "South", out),
		Average:  NewAverageDisplay("Main", out),
		Detailed: NewDetailedDisplay("Central", out),
		Alert:    NewAlertDisplay("Emergency", out),
	}
}

// Register binds every display to bus.
func (d *Displays) Register(bus event.Bus) error {
	for _, sub := range []any{d.North, d.South, d.Average, d.Detailed, d.Alert} {
		if err := binder.Register(bus, sub); err != nil {
			return fmt.Errorf("register %T: %w", sub, err)
		}
	}
	return nil
}

// Unregister removes every display from bus.
func (d *Displays) Unregister(bus event.Bus) {
	for _, sub := range []any{d.North, d.South, d.Average, d.Detailed, d.Alert} {
		_ = bus.Unregister(sub)
	}
}

// Sensors returns the sample sensors publishing on bus.
func Sensors(bus event.Bus) []*Sensor {
	return []*Sensor{
		NewTemperatureSensor("TEMP-001", "North", bus, 18),
		NewTemperatureSensor("TEMP-002", "South", bus, 22),
		NewHumiditySensor("HUM-001", "North", bus, 60),
		NewWaterLevelSensor("WATER-001", "River Delta", bus, 2),
	}
}

// Run registers the displays, runs the sensors until ctx is done and
// unregisters the displays again.
func Run(ctx context.Context, bus event.Bus, out *console.Console, logger *zap.Logger) error {
	displays := NewDisplays(out)
	if err := displays.Register(bus); err != nil {
		return err
	}
	defer displays.Unregister(bus)
	out.Plain("Displays registered")

	g, ctx := errgroup.WithContext(ctx)
	for _, s := range Sensors(bus) {
		logger.Info("sensor started",
			zap.String("sensor", s.ID),
			zap.Stringer("kind", s.Kind),
			zap.String("region", s.Region),
		)
		g.Go(func() error {
			return s.Run(ctx)
		})
	}
	return g.Wait()
}
