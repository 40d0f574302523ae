package interfaces

import (
	snrmodels "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Models"
)

// SensorEventNotifier receives registry change events. Notify must not block.
type SensorEventNotifier interface {
	Notify(event snrmodels.SensorEvent)
}
