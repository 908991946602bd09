package sensor

import (
	"fmt"
	"sync"

	"github.com/fatih/color"

	"github.com/dshills/eventbus/internal/event"
	"github.com/dshills/eventbus/internal/event/binder"
	"github.com/dshills/eventbus/internal/sample/console"
)

// NumericDisplay prints every reading for its region as it arrives. An
// empty region shows all readings.
type NumericDisplay struct {
	id     string
	region string
	out    *console.Console
}

// NewNumericDisplay creates a numeric display.
func NewNumericDisplay(id, region string, out *console.Console) *NumericDisplay {
	return &NumericDisplay{id: id, region: region, out: out}
}

func (d *NumericDisplay) accepts(region string) bool {
	return d.region == "" || d.region == region
}

func (d *NumericDisplay) OnTemperatureReading(r TemperatureReading) {
	if d.accepts(r.Region) {
		d.out.Printf(color.FgYellow, "[NumericDisplay-%s] %s", d.id, r)
	}
}

func (d *NumericDisplay) OnHumidityReading(r HumidityReading) {
	if d.accepts(r.Region) {
		d.out.Printf(color.FgCyan, "[NumericDisplay-%s] %s", d.id, r)
	}
}

func (d *NumericDisplay) OnWaterLevelReading(r WaterLevelReading) {
	if d.accepts(r.Location) {
		d.out.Printf(color.FgBlue, "[NumericDisplay-%s] %s", d.id, r)
	}
}

const (
	averageWindow = 10
	averageEvery  = 5
)

// AverageDisplay keeps a rolling window of temperature and humidity
// readings and prints their averages every fifth temperature reading.
type AverageDisplay struct {
	id  string
	out *console.Console

	mu       sync.Mutex
	temps    []float64
	humidity []float64
	updates  int
}

// NewAverageDisplay creates an average display.
func NewAverageDisplay(id string, out *console.Console) *AverageDisplay {
	return &AverageDisplay{id: id, out: out}
}

func (d *AverageDisplay) OnTemperatureReading(r TemperatureReading) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.temps = pushWindow(d.temps, r.Celsius)
	d.updates++
	if d.updates%averageEvery == 0 {
		d.print()
	}
}

func (d *AverageDisplay) OnHumidityReading(r HumidityReading) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.humidity = pushWindow(d.humidity, r.Percent)
}

// Averages returns the current temperature and humidity averages. A zero
// count means no readings.
func (d *AverageDisplay) Averages() (temp float64, tempCount int, humidity float64, humidityCount int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return mean(d.temps), len(d.temps), mean(d.humidity), len(d.humidity)
}

func (d *AverageDisplay) print() {
	lines := []string{fmt.Sprintf("[AverageDisplay-%s] --------------------------", d.id)}
	if len(d.temps) > 0 {
		lines = append(lines, fmt.Sprintf("  Average Temperature: %.2f°C (based on %d readings)", mean(d.temps), len(d.temps)))
	}
	if len(d.humidity) > 0 {
		lines = append(lines, fmt.Sprintf("  Average Humidity: %.2f%% (based on %d readings)", mean(d.humidity), len(d.humidity)))
	}
	lines = append(lines, "--------------------------")
	d.out.Block(color.FgMagenta, lines...)
}

func pushWindow(window []float64, v float64) []float64 {
	window = append(window, v)
	if len(window) > averageWindow {
		window = window[1:]
	}
	return window
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

const historySize = 5

// DetailedDisplay keeps the last five readings per sensor and prints the
// history once it is full. It runs on the bus worker pool.
type DetailedDisplay struct {
	id  string
	out *console.Console

	mu      sync.Mutex
	history map[string][]string
}

// NewDetailedDisplay creates a detailed display.
func NewDetailedDisplay(id string, out *console.Console) *DetailedDisplay {
	return &DetailedDisplay{id: id, out: out, history: make(map[string][]string)}
}

func (d *DetailedDisplay) EventHandlers() []binder.Spec {
	return []binder.Spec{
		{Method: "Temperature", Mode: event.Background},
		{Method: "WaterLevel", Mode: event.Background},
	}
}

func (d *DetailedDisplay) Temperature(r TemperatureReading) {
	d.add(r.SensorID, fmt.Sprintf("Temperature: %.1f°C at %s", r.Celsius, r.Timestamp.Format("15:04:05")))
}

func (d *DetailedDisplay) WaterLevel(r WaterLevelReading) {
	d.add(r.SensorID, fmt.Sprintf("Water Level: %.2fm at %s", r.Meters, r.Timestamp.Format("15:04:05")))
}

// History returns the retained readings of one sensor.
func (d *DetailedDisplay) History(sensorID string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.history[sensorID]...)
}

func (d *DetailedDisplay) add(sensorID, line string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	h := append(d.history[sensorID], line)
	if len(h) > historySize {
		h = h[1:]
	}
	d.history[sensorID] = h

	if len(h) == historySize {
		lines := []string{fmt.Sprintf("[DetailedDisplay-%s] History for %s:", d.id, sensorID)}
		for _, l := range h {
			lines = append(lines, "  • "+l)
		}
		d.out.Block(color.FgGreen, lines...)
	}
}

// AlertDisplay prints alerts ahead of every other handler.
type AlertDisplay struct {
	id  string
	out *console.Console
}

// NewAlertDisplay creates an alert display.
func NewAlertDisplay(id string, out *console.Console) *AlertDisplay {
	return &AlertDisplay{id: id, out: out}
}

func (d *AlertDisplay) EventHandlers() []binder.Spec {
	return []binder.Spec{
		{Method: "Show", Priority: event.PriorityCritical},
	}
}

func (d *AlertDisplay) Show(a Alert) {
	attr := color.FgHiYellow
	if a.Severity == SeverityCritical {
		attr = color.FgRed
	}
	d.out.Block(attr,
		"-------------------------------------------------",
		fmt.Sprintf("| [AlertDisplay-%s] %s", d.id, a),
		"-------------------------------------------------",
	)
}
