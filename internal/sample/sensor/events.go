package sensor

import (
	"fmt"

	"github.com/dshills/eventbus/internal/event"
)

// TemperatureReading is published by temperature sensors.
type TemperatureReading struct {
	event.Base
	SensorID string
	Region   string
	Celsius  float64
}

func (r TemperatureReading) String() string {
	return fmt.Sprintf("[%s] Temperature: %.1f°C | Sensor: %s | Region: %s",
		r.Timestamp.Format("15:04:05"), r.Celsius, r.SensorID, r.Region)
}

// HumidityReading is published by humidity sensors.
type HumidityReading struct {
	event.Base
	SensorID string
	Region   string
	Percent  float64
}

func (r HumidityReading) String() string {
	return fmt.Sprintf("[%s] Humidity: %.1f%% | Sensor: %s | Region: %s",
		r.Timestamp.Format("15:04:05"), r.Percent, r.SensorID, r.Region)
}

// WaterLevelReading is published by water level sensors.
type WaterLevelReading struct {
	event.Base
	SensorID string
	Location string
	Meters   float64
}

func (r WaterLevelReading) String() string {
	return fmt.Sprintf("[%s] Water Level: %.2fm | Sensor: %s | Location: %s",
		r.Timestamp.Format("15:04:05"), r.Meters, r.SensorID, r.Location)
}

// Severity of an Alert.
const (
	SeverityWarning  = "WARNING"
	SeverityCritical = "CRITICAL"
)

// Alert is published when a reading crosses its sensor's threshold.
type Alert struct {
	event.Base
	SensorType string
	Severity   string
	Value      float64
	Threshold  float64
	Region     string
}

func (a Alert) String() string {
	return fmt.Sprintf("!!! ALERT [%s] %s - %s: %.1f exceeds threshold %.1f in %s",
		a.Timestamp.Format("15:04:05"), a.Severity, a.SensorType, a.Value, a.Threshold, a.Region)
}
