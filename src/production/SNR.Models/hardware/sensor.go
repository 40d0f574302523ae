package hardware_models

// Sensor represents a registered sensor and its latest reading
type Sensor struct {
	ID    int64   `json:"id"`
	Name  string  `json:"nombre"`
	Type  string  `json:"tipo"` // Temperatura, Humedad, Luz, ... (open-ended)
	Value float64 `json:"valor"`
}

// SeedSensors returns the records the registry holds at startup, in order
func SeedSensors() []Sensor {
	return []Sensor{
		{ID: 1, Name: "Sensor Sala", Type: "Temperatura", Value: 24},
		{ID: 2, Name: "Sensor Cocina", Type: "Humedad", Value: 60},
		{ID: 3, Name: "Sensor Jardín", Type: "Luz", Value: 85},
	}
}
