package implementation

import (
	"context"

	metrics "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Metrics"
	hardware_models "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Models/hardware"
	interfaces "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Repository/Interfaces"
)

// InstrumentedSensorRepository records Prometheus metrics around another repository
type InstrumentedSensorRepository struct {
	next    interfaces.SensorRepository
	metrics *metrics.Metrics
}

var _ interfaces.SensorRepository = (*InstrumentedSensorRepository)(nil)

// NewInstrumentedSensorRepository wraps next and primes the sensor gauge
func NewInstrumentedSensorRepository(ctx context.Context, next interfaces.SensorRepository, m *metrics.Metrics) *InstrumentedSensorRepository {
	r := &InstrumentedSensorRepository{next: next, metrics: m}
	r.refreshGauge(ctx)
	return r
}

func (r *InstrumentedSensorRepository) ListSensors(ctx context.Context) ([]hardware_models.Sensor, error) {
	r.metrics.RegistryOperations.WithLabelValues("list").Inc()
	return r.next.ListSensors(ctx)
}

func (r *InstrumentedSensorRepository) ListSensorsByType(ctx context.Context, sensorType string) ([]hardware_models.Sensor, error) {
	r.metrics.RegistryOperations.WithLabelValues("list_by_type").Inc()
	return r.next.ListSensorsByType(ctx, sensorType)
}

func (r *InstrumentedSensorRepository) CountSensors(ctx context.Context) (int, error) {
	return r.next.CountSensors(ctx)
}

func (r *InstrumentedSensorRepository) CreateSensor(ctx context.Context, name, sensorType string, value float64) (*hardware_models.Sensor, error) {
	r.metrics.RegistryOperations.WithLabelValues("create").Inc()
	sensor, err := r.next.CreateSensor(ctx, name, sensorType, value)
	if err == nil {
		r.metrics.Sensors.Inc()
	}
	return sensor, err
}

func (r *InstrumentedSensorRepository) DeleteSensor(ctx context.Context, id int64) (bool, error) {
	r.metrics.RegistryOperations.WithLabelValues("delete").Inc()
	removed, err := r.next.DeleteSensor(ctx, id)
	if err == nil && removed {
		r.metrics.Sensors.Dec()
	}
	return removed, err
}

func (r *InstrumentedSensorRepository) refreshGauge(ctx context.Context) {
	if n, err := r.next.CountSensors(ctx); err == nil {
		r.metrics.Sensors.Set(float64(n))
	}
}
