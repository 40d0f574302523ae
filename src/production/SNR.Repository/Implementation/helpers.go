package implementation

import (
	hardware_models "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Models/hardware"
)

// cloneSensors copies src so callers never share the registry's backing array.
// The result is never nil, which keeps empty listings encoded as [].
func cloneSensors(src []hardware_models.Sensor) []hardware_models.Sensor {
	dst := make([]hardware_models.Sensor, len(src))
	copy(dst, src)
	return dst
}

// maxSensorID returns the largest id in sensors, or 0 when empty
func maxSensorID(sensors []hardware_models.Sensor) int64 {
	var highest int64
	for _, s := range sensors {
		if s.ID > highest {
			highest = s.ID
		}
	}
	return highest
}

// Sensor Repository (in-memory)
// ├── ListSensors() - All sensors, insertion order
// ├── ListSensorsByType() - Exact, case-sensitive tipo match
// ├── CountSensors() - Current size
// ├── CreateSensor() - Append with next sequence id
// └── DeleteSensor() - Remove by id, silent when absent
