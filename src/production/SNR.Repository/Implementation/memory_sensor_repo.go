package implementation

import (
	"context"
	"sync"

	snrmodels "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Models"
	hardware_models "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Models/hardware"
	interfaces "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Repository/Interfaces"
)

// MemorySensorRepository is the process-lifetime sensor registry. A single
// RWMutex guards the slice, so every operation is atomic and readers see
// every completed mutation.
type MemorySensorRepository struct {
	mu       sync.RWMutex
	sensors  []hardware_models.Sensor
	ids      *AtomicIDGenerator
	notifier interfaces.SensorEventNotifier
}

var _ interfaces.SensorRepository = (*MemorySensorRepository)(nil)

// NewMemorySensorRepository creates a registry holding seed in order.
// Generated ids start above the largest seed id. notifier may be nil.
func NewMemorySensorRepository(seed []hardware_models.Sensor, notifier interfaces.SensorEventNotifier) *MemorySensorRepository {
	return &MemorySensorRepository{
		sensors:  cloneSensors(seed),
		ids:      NewAtomicIDGenerator(maxSensorID(seed)),
		notifier: notifier,
	}
}

func (r *MemorySensorRepository) ListSensors(_ context.Context) ([]hardware_models.Sensor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return cloneSensors(r.sensors), nil
}

func (r *MemorySensorRepository) ListSensorsByType(_ context.Context, sensorType string) ([]hardware_models.Sensor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	filtered := make([]hardware_models.Sensor, 0)
	for _, s := range r.sensors {
		if s.Type == sensorType {
			filtered = append(filtered, s)
		}
	}
	return filtered, nil
}

func (r *MemorySensorRepository) CountSensors(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sensors), nil
}

func (r *MemorySensorRepository) CreateSensor(_ context.Context, name, sensorType string, value float64) (*hardware_models.Sensor, error) {
	r.mu.Lock()
	sensor := hardware_models.Sensor{
		ID:    r.ids.Generate(),
		Name:  name,
		Type:  sensorType,
		Value: value,
	}
	r.sensors = append(r.sensors, sensor)
	r.notify(snrmodels.NewSensorEvent(snrmodels.ActionCreated, sensor))
	r.mu.Unlock()

	created := sensor
	return &created, nil
}

func (r *MemorySensorRepository) DeleteSensor(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	var removed *hardware_models.Sensor
	kept := r.sensors[:0]
	for i := range r.sensors {
		if r.sensors[i].ID == id {
			s := r.sensors[i]
			removed = &s
			continue
		}
		kept = append(kept, r.sensors[i])
	}
	// Clear the tail so the dropped record is not retained by the backing array.
	for i := len(kept); i < len(r.sensors); i++ {
		r.sensors[i] = hardware_models.Sensor{}
	}
	r.sensors = kept
	if removed != nil {
		r.notify(snrmodels.NewSensorEvent(snrmodels.ActionDeleted, *removed))
	}
	r.mu.Unlock()

	return removed != nil, nil
}

// notify is called with the write lock held so events are queued in the
// same order the mutations were applied. Notifiers must not block or call
// back into the repository.
func (r *MemorySensorRepository) notify(event snrmodels.SensorEvent) {
	if r.notifier != nil {
		r.notifier.Notify(event)
	}
}
