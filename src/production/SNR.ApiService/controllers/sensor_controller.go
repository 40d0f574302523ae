package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gitlab.com/maplesense1/sensor.registry/src/production/SNR.ApiService/middleware"
	logger "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Logger"
	api_models "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Models/api"
	interfaces "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Repository/Interfaces"
)

// SensorController handles sensor registry requests
type SensorController struct {
	sensorRepo interfaces.SensorRepository
	logger     *logger.Logger
}

// NewSensorController creates a new sensor controller
func NewSensorController(sensorRepo interfaces.SensorRepository, logger *logger.Logger) *SensorController {
	return &SensorController{
		sensorRepo: sensorRepo,
		logger:     logger.WithComponent("sensor_controller"),
	}
}

// RegisterRoutes registers the sensor routes with Gin
func (c *SensorController) RegisterRoutes(router gin.IRouter) {
	sensors := router.Group("/api/sensores")
	{
		sensors.GET("", c.ListSensors)
		sensors.POST("", c.CreateSensor)
		sensors.DELETE("/:id", c.DeleteSensor)
		sensors.GET("/tipo/:tipo", c.ListSensorsByType)
	}
}

func (c *SensorController) ListSensors(ctx *gin.Context) {
	sensors, err := c.sensorRepo.ListSensors(ctx)
	if err != nil {
		c.respondError(ctx, http.StatusInternalServerError, err)
		return
	}

	ctx.JSON(http.StatusOK, sensors)
}

func (c *SensorController) ListSensorsByType(ctx *gin.Context) {
	sensorType := ctx.Param("tipo")

	sensors, err := c.sensorRepo.ListSensorsByType(ctx, sensorType)
	if err != nil {
		c.respondError(ctx, http.StatusInternalServerError, err)
		return
	}

	ctx.JSON(http.StatusOK, sensors)
}

func (c *SensorController) CreateSensor(ctx *gin.Context) {
	var req api_models.CreateSensorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.respondError(ctx, http.StatusBadRequest, bindingError(err))
		return
	}

	sensor, err := c.sensorRepo.CreateSensor(ctx, req.Nombre, req.Tipo, req.Valor.Float64())
	if err != nil {
		c.respondError(ctx, http.StatusInternalServerError, err)
		return
	}

	c.requestLogger(ctx).Logger.Info().
		Int64("sensor_id", sensor.ID).
		Str("tipo", sensor.Type).
		Msg("Sensor created")

	ctx.JSON(http.StatusCreated, sensor)
}

func (c *SensorController) DeleteSensor(ctx *gin.Context) {
	id, err := api_models.ParseSensorID(ctx.Param("id"))
	if err != nil {
		c.respondError(ctx, http.StatusBadRequest, err)
		return
	}

	removed, err := c.sensorRepo.DeleteSensor(ctx, id)
	if err != nil {
		c.respondError(ctx, http.StatusInternalServerError, err)
		return
	}

	c.requestLogger(ctx).Logger.Info().
		Int64("sensor_id", id).
		Bool("removed", removed).
		Msg("Sensor delete acknowledged")

	// Acknowledged whether or not a record existed.
	ctx.JSON(http.StatusOK, api_models.DeleteSensorResponse{
		Mensaje: api_models.DeleteSensorMessage,
		ID:      id,
	})
}

func (c *SensorController) respondError(ctx *gin.Context, status int, err error) {
	_ = ctx.Error(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		c.requestLogger(ctx).ErrorWithError(err, "Sensor registry request failed")
		message = "internal server error"
	}
	ctx.AbortWithStatusJSON(status, api_models.ErrorResponse{Error: message})
}

func (c *SensorController) requestLogger(ctx *gin.Context) *logger.Logger {
	if requestID, ok := middleware.GetRequestIDFromGinContext(ctx); ok {
		return c.logger.WithRequestID(requestID)
	}
	return c.logger
}

// bindingError turns gin binding failures into client-facing messages
func bindingError(err error) error {
	if errors.Is(err, api_models.ErrInvalidValor) {
		return err
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]string, 0, len(validationErrs))
		for _, fe := range validationErrs {
			fields = append(fields, strings.ToLower(fe.Field()))
		}
		return errors.New("missing required fields: " + strings.Join(fields, ", "))
	}

	return errors.New("invalid request body: " + err.Error())
}
