package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"gitlab.com/maplesense1/sensor.registry/src/production/SNR.ApiService/server"
	container "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Container"
)

func main() {
	// Initialize dependency injection container
	ctr, err := container.NewContainer()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize container: %v", err))
	}

	config := ctr.GetConfig()
	logger := ctr.GetLogger()
	logger.Info("Starting sensor registry API")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := ctr.Start(ctx); err != nil {
		logger.FatalWithError(err, "Failed to start container")
	}
	logger.WithFields(ctr.HealthCheck(ctx)).Info("Initial health check")

	gin.SetMode(config.Server.GinMode)
	router := server.NewRouter(server.Dependencies{
		Config:        config,
		Logger:        logger,
		Metrics:       ctr.GetMetrics(),
		SensorRepo:    ctr.GetSensorRepository(),
		HealthChecker: ctr.GetHealthChecker(),
	})

	srv := server.NewHTTPServer(config, router)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info("HTTP server starting on port " + config.Server.Port)
		for _, endpoint := range server.Endpoints(router) {
			logger.WithField("endpoint", endpoint).Info("Route registered")
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.FatalWithError(err, "Failed to start HTTP server")
		}
	}()

	logger.Info("Sensor registry running... press Ctrl+C to stop")

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithError(err, "Server forced to shutdown")
	}

	if err := ctr.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithError(err, "Container shutdown incomplete")
	}
}
