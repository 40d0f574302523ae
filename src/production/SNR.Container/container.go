package container

import (
	"context"
	"fmt"
	"sync"

	"gitlab.com/maplesense1/sensor.registry/src/production/SNR.ApiService/health"
	config "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Config"
	snrpublisher "gitlab.com/maplesense1/sensor.registry/src/production/SNR.EventPublisher/publisher"
	logger "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Logger"
	metrics "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Metrics"
	hardware_models "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Models/hardware"
	implementation "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Repository/Implementation"
	interfaces "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Repository/Interfaces"
)

// Container manages dependencies and their lifecycle
type Container struct {
	config  *config.Config
	logger  *logger.Logger
	metrics *metrics.Metrics

	// nil when MQTT_ENABLED is false
	publisher *snrpublisher.Publisher

	sensorRepo    interfaces.SensorRepository
	healthChecker *health.HealthChecker

	// Mutex for thread-safe access
	mu sync.RWMutex

	// Cleanup functions
	cleanupFuncs []func() error
}

// NewContainer loads configuration from the environment and builds a container
func NewContainer() (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return NewContainerFromConfig(context.Background(), cfg, logger.NewLogger(&cfg.Logging)), nil
}

// NewContainerFromConfig wires every component from an already loaded config
func NewContainerFromConfig(ctx context.Context, cfg *config.Config, log *logger.Logger) *Container {
	c := &Container{
		config:  cfg,
		logger:  log.WithService("sensor-registry"),
		metrics: metrics.New(),
	}

	// Keep the interfaces nil rather than holding a nil *Publisher.
	var notifier interfaces.SensorEventNotifier
	var connection health.ConnectionChecker
	if cfg.MQTT.Enabled {
		c.publisher = snrpublisher.New(cfg.MQTT, c.logger, c.metrics)
		notifier = c.publisher
		connection = c.publisher
	}

	var seed []hardware_models.Sensor
	if cfg.Registry.SeedEnabled {
		seed = hardware_models.SeedSensors()
	}

	memory := implementation.NewMemorySensorRepository(seed, notifier)
	c.sensorRepo = implementation.NewInstrumentedSensorRepository(ctx, memory, c.metrics)
	c.healthChecker = health.NewHealthChecker(c.sensorRepo, connection)

	c.logger.Logger.Info().
		Int("seed_sensors", len(seed)).
		Bool("events_enabled", cfg.MQTT.Enabled).
		Msg("Container initialized")

	return c
}

// Start connects optional infrastructure. The registry itself needs no startup.
func (c *Container) Start(ctx context.Context) error {
	if c.publisher == nil {
		c.logger.Info("Change events disabled, skipping MQTT publisher")
		return nil
	}

	if err := c.publisher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start event publisher: %w", err)
	}
	c.AddCleanupFunc(func() error {
		c.publisher.Stop()
		return nil
	})
	return nil
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.logger
}

// GetMetrics returns the metrics collectors
func (c *Container) GetMetrics() *metrics.Metrics {
	return c.metrics
}

// GetSensorRepository returns the instrumented sensor registry
func (c *Container) GetSensorRepository() interfaces.SensorRepository {
	return c.sensorRepo
}

// GetHealthChecker returns the health checker
func (c *Container) GetHealthChecker() *health.HealthChecker {
	return c.healthChecker
}

// GetPublisher returns the event publisher, or nil when events are disabled
func (c *Container) GetPublisher() *snrpublisher.Publisher {
	return c.publisher
}

// HealthCheck performs a comprehensive health check
func (c *Container) HealthCheck(ctx context.Context) map[string]interface{} {
	status, _ := c.healthChecker.GetHealthStatus(ctx)
	return status
}

// Shutdown gracefully shuts down the container and all its dependencies
func (c *Container) Shutdown(ctx context.Context) error {
	c.logger.Info("Shutting down container...")

	c.mu.Lock()
	funcs := c.cleanupFuncs
	c.cleanupFuncs = nil
	c.mu.Unlock()

	// Execute cleanup functions in reverse order
	for i := len(funcs) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("shutdown interrupted: %w", err)
		}
		if err := funcs[i](); err != nil {
			c.logger.ErrorWithError(err, "Error during cleanup")
		}
	}

	c.logger.Info("Container shutdown complete")
	return nil
}

// AddCleanupFunc adds a cleanup function
func (c *Container) AddCleanupFunc(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
}
