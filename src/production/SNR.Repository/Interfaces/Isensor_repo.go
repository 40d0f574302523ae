package interfaces

import (
	"context"

	hardware_models "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Models/hardware"
)

// SensorRepository is the sensor registry contract. Every call is atomic
// with respect to every other call, and mutations are visible to all
// later reads.
type SensorRepository interface {
	// Read sensors, in insertion order
	ListSensors(ctx context.Context) ([]hardware_models.Sensor, error)
	ListSensorsByType(ctx context.Context, sensorType string) ([]hardware_models.Sensor, error)
	CountSensors(ctx context.Context) (int, error)

	// Create sensor with a freshly assigned id
	CreateSensor(ctx context.Context, name, sensorType string, value float64) (*hardware_models.Sensor, error)

	// Delete sensor; removed is false when no record had the id
	DeleteSensor(ctx context.Context, id int64) (removed bool, err error)
}
