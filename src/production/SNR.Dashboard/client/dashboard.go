package client

import (
	"context"
	"sync"

	api_models "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Models/api"
	hardware_models "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Models/hardware"
)

// AllTypes is the filter value that shows every sensor
const AllTypes = "todos"

// SensorAPI is the part of APIClient the dashboard drives
type SensorAPI interface {
	ListSensors(ctx context.Context) ([]hardware_models.Sensor, error)
	CreateSensor(ctx context.Context, name, sensorType string, value float64) (*hardware_models.Sensor, error)
	DeleteSensor(ctx context.Context, id int64) (*api_models.DeleteSensorResponse, error)
}

// Dashboard keeps the last list fetched from the API. Every mutation is
// followed by a full reload; a failed call leaves the held list as it was.
type Dashboard struct {
	api SensorAPI

	mu      sync.RWMutex
	sensors []hardware_models.Sensor
}

// NewDashboard creates an empty dashboard; call Reload to populate it
func NewDashboard(api SensorAPI) *Dashboard {
	return &Dashboard{api: api, sensors: []hardware_models.Sensor{}}
}

// Sensors returns a copy of the held list
func (d *Dashboard) Sensors() []hardware_models.Sensor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]hardware_models.Sensor{}, d.sensors...)
}

// Reload replaces the held list with the API's current one
func (d *Dashboard) Reload(ctx context.Context) ([]hardware_models.Sensor, error) {
	sensors, err := d.api.ListSensors(ctx)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.sensors = append([]hardware_models.Sensor{}, sensors...)
	d.mu.Unlock()
	return sensors, nil
}

// Filter narrows the held list to an exact tipo match. AllTypes or an
// empty tipo returns everything.
func (d *Dashboard) Filter(sensorType string) []hardware_models.Sensor {
	d.mu.RLock()
	defer d.mu.RUnlock()

	filtered := []hardware_models.Sensor{}
	for _, s := range d.sensors {
		if sensorType == "" || sensorType == AllTypes || s.Type == sensorType {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// CreateAndReload creates a sensor, then reloads the list
func (d *Dashboard) CreateAndReload(ctx context.Context, name, sensorType string, value float64) (*hardware_models.Sensor, error) {
	created, err := d.api.CreateSensor(ctx, name, sensorType, value)
	if err != nil {
		return nil, err
	}
	if _, err := d.Reload(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// DeleteAndReload deletes a sensor, then reloads the list
func (d *Dashboard) DeleteAndReload(ctx context.Context, id int64) error {
	if _, err := d.api.DeleteSensor(ctx, id); err != nil {
		return err
	}
	_, err := d.Reload(ctx)
	return err
}
