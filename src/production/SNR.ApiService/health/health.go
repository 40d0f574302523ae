package health

import (
	"context"
	"fmt"
	"time"

	interfaces "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Repository/Interfaces"
)

// Version reported by the health endpoints
const Version = "1.0.0"

// ConnectionChecker reports whether an optional dependency is connected
type ConnectionChecker interface {
	IsConnected() bool
}

// HealthChecker provides health check functionality
type HealthChecker struct {
	sensorRepo interfaces.SensorRepository
	publisher  ConnectionChecker
}

// NewHealthChecker creates a new health checker. publisher is nil when
// change events are disabled.
func NewHealthChecker(sensorRepo interfaces.SensorRepository, publisher ConnectionChecker) *HealthChecker {
	return &HealthChecker{sensorRepo: sensorRepo, publisher: publisher}
}

// CheckRegistry verifies the registry answers and returns its size
func (h *HealthChecker) CheckRegistry(ctx context.Context) (int, error) {
	if h.sensorRepo == nil {
		return 0, fmt.Errorf("sensor registry is nil")
	}
	n, err := h.sensorRepo.CountSensors(ctx)
	if err != nil {
		return 0, fmt.Errorf("sensor registry check failed: %w", err)
	}
	return n, nil
}

// PublisherState returns disabled, connected or disconnected
func (h *HealthChecker) PublisherState() string {
	switch {
	case h.publisher == nil:
		return "disabled"
	case h.publisher.IsConnected():
		return "connected"
	default:
		return "disconnected"
	}
}

// GetHealthStatus returns the current health status. ready is false only
// when the registry itself fails; a disconnected broker degrades status.
func (h *HealthChecker) GetHealthStatus(ctx context.Context) (status map[string]interface{}, ready bool) {
	checks := make(map[string]interface{})
	status = map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
		"checks":    checks,
	}

	overall := "ok"
	ready = true

	if n, err := h.CheckRegistry(ctx); err != nil {
		checks["registry"] = map[string]interface{}{"status": "error", "error": err.Error()}
		overall = "error"
		ready = false
	} else {
		checks["registry"] = map[string]interface{}{"status": "ok", "sensors": n}
	}

	publisherState := h.PublisherState()
	checks["event_publisher"] = map[string]interface{}{"status": publisherState}
	if publisherState == "disconnected" && overall == "ok" {
		overall = "degraded"
	}

	status["status"] = overall
	return status, ready
}
