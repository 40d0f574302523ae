package snrmodels

import (
	"time"

	hardware_models "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Models/hardware"
)

// SensorAction names a registry mutation
type SensorAction string

const (
	ActionCreated SensorAction = "creado"
	ActionDeleted SensorAction = "eliminado"
)

// SensorEvent describes a change applied to the sensor registry.
// Sensor is set for creations and for deletions that removed a record.
type SensorEvent struct {
	Action    SensorAction            `json:"accion"`
	SensorID  int64                   `json:"id"`
	Sensor    *hardware_models.Sensor `json:"sensor,omitempty"`
	Timestamp time.Time               `json:"timestamp"`
}

// NewSensorEvent builds an event stamped with the current UTC time
func NewSensorEvent(action SensorAction, sensor hardware_models.Sensor) SensorEvent {
	s := sensor
	return SensorEvent{
		Action:    action,
		SensorID:  sensor.ID,
		Sensor:    &s,
		Timestamp: time.Now().UTC(),
	}
}
