package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/maplesense1/sensor.registry/src/production/SNR.ApiService/health"
	"gitlab.com/maplesense1/sensor.registry/src/production/SNR.ApiService/middleware"
	config "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Config"
	logger "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Logger"
	metrics "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Metrics"
	api_models "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Models/api"
	hardware_models "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Models/hardware"
	implementation "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Repository/Implementation"
	interfaces "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Repository/Interfaces"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "3001", GinMode: gin.TestMode},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         600,
		},
	}
}

func newTestRouter(t *testing.T, repo interfaces.SensorRepository) *gin.Engine {
	t.Helper()
	m := metrics.New()
	if repo == nil {
		repo = implementation.NewInstrumentedSensorRepository(context.Background(),
			implementation.NewMemorySensorRepository(hardware_models.SeedSensors(), nil), m)
	}
	return NewRouter(Dependencies{
		Config:        testConfig(),
		Logger:        logger.NewNop(),
		Metrics:       m,
		SensorRepo:    repo,
		HealthChecker: health.NewHealthChecker(repo, nil),
	})
}

func do(router http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeSensors(t *testing.T, w *httptest.ResponseRecorder) []hardware_models.Sensor {
	t.Helper()
	var sensors []hardware_models.Sensor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sensors))
	return sensors
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp api_models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestListReturnsSeeds(t *testing.T) {
	router := newTestRouter(t, nil)

	w := do(router, http.MethodGet, "/api/sensores", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[
		{"id":1,"nombre":"Sensor Sala","tipo":"Temperatura","valor":24},
		{"id":2,"nombre":"Sensor Cocina","tipo":"Humedad","valor":60},
		{"id":3,"nombre":"Sensor Jardín","tipo":"Luz","valor":85}
	]`, w.Body.String())
}

func TestCreateListFilterDeleteScenario(t *testing.T) {
	router := newTestRouter(t, nil)

	w := do(router, http.MethodPost, "/api/sensores", `{"nombre":"Test","tipo":"Luz","valor":50}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created hardware_models.Sensor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Test", created.Name)
	assert.Equal(t, "Luz", created.Type)
	assert.Equal(t, float64(50), created.Value)
	assert.NotContains(t, []int64{1, 2, 3}, created.ID)

	w = do(router, http.MethodGet, "/api/sensores", "")
	assert.Len(t, decodeSensors(t, w), 4)

	w = do(router, http.MethodGet, "/api/sensores/tipo/Luz", "")
	require.Equal(t, http.StatusOK, w.Code)
	luz := decodeSensors(t, w)
	require.Len(t, luz, 2)
	assert.Equal(t, int64(3), luz[0].ID)
	assert.Equal(t, created.ID, luz[1].ID)

	w = do(router, http.MethodDelete, "/api/sensores/3", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"mensaje":"Sensor eliminado correctamente","id":3}`, w.Body.String())

	w = do(router, http.MethodGet, "/api/sensores", "")
	remaining := decodeSensors(t, w)
	assert.Len(t, remaining, 3)
	for _, s := range remaining {
		assert.NotEqual(t, int64(3), s.ID)
	}
}

func TestCreateAcceptsNumericString(t *testing.T) {
	router := newTestRouter(t, nil)

	w := do(router, http.MethodPost, "/api/sensores", `{"nombre":"Patio","tipo":"Temperatura","valor":"18.75"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created hardware_models.Sensor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 18.75, created.Value)
}

func TestCreateRejectsBadBodies(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		contains string
	}{
		{"missing nombre", `{"tipo":"Luz","valor":1}`, "nombre"},
		{"empty tipo", `{"nombre":"a","tipo":"","valor":1}`, "tipo"},
		{"missing valor", `{"nombre":"a","tipo":"Luz"}`, "valor"},
		{"null valor", `{"nombre":"a","tipo":"Luz","valor":null}`, "valor"},
		{"non numeric valor", `{"nombre":"a","tipo":"Luz","valor":"abc"}`, "valor must be numeric"},
		{"boolean valor", `{"nombre":"a","tipo":"Luz","valor":true}`, "valor must be numeric"},
		{"malformed json", `{"nombre":`, "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, nil)

			w := do(router, http.MethodPost, "/api/sensores", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeError(t, w), tt.contains)

			// Nothing was stored.
			assert.Len(t, decodeSensors(t, do(router, http.MethodGet, "/api/sensores", "")), 3)
		})
	}
}

func TestDeleteUnknownIDIsAcknowledged(t *testing.T) {
	router := newTestRouter(t, nil)

	w := do(router, http.MethodDelete, "/api/sensores/999", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"mensaje":"Sensor eliminado correctamente","id":999}`, w.Body.String())
	assert.Len(t, decodeSensors(t, do(router, http.MethodGet, "/api/sensores", "")), 3)
}

func TestDeleteRejectsNonIntegerID(t *testing.T) {
	router := newTestRouter(t, nil)

	for _, id := range []string{"abc", "1.5", "0x10"} {
		w := do(router, http.MethodDelete, "/api/sensores/"+id, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, id)
		assert.Contains(t, decodeError(t, w), "invalid sensor id")
	}
}

func TestFilterUnknownTypeReturnsEmptyArray(t *testing.T) {
	router := newTestRouter(t, nil)

	w := do(router, http.MethodGet, "/api/sensores/tipo/Presi%C3%B3n", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())

	w = do(router, http.MethodGet, "/api/sensores/tipo/luz", "")
	assert.Equal(t, "[]", w.Body.String())
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	router := newTestRouter(t, nil)

	w := do(router, http.MethodGet, "/api/sensores", "", "Origin", "http://localhost:3000")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(router, http.MethodOptions, "/api/sensores", "",
		"Origin", "http://localhost:3000",
		"Access-Control-Request-Method", http.MethodPost,
		"Access-Control-Request-Headers", "Content-Type")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDIsEchoedOrGenerated(t *testing.T) {
	router := newTestRouter(t, nil)

	w := do(router, http.MethodGet, "/api/sensores", "", middleware.RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", w.Header().Get(middleware.RequestIDHeader))

	w = do(router, http.MethodGet, "/api/sensores", "")
	assert.Len(t, w.Header().Get(middleware.RequestIDHeader), 36)
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	router := newTestRouter(t, nil)

	w := do(router, http.MethodGet, "/health/live", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(router, http.MethodGet, "/health/ready", "")
	require.Equal(t, http.StatusOK, w.Code)
	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "ok", status["status"])

	do(router, http.MethodGet, "/api/sensores", "")
	w = do(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sensor_registry_sensors 3")
	assert.Contains(t, w.Body.String(), `sensor_registry_http_requests_total{method="GET",route="/api/sensores",status="200"} 1`)
}

type failingRepo struct{}

var errRegistryDown = errors.New("registry down")

func (failingRepo) ListSensors(context.Context) ([]hardware_models.Sensor, error) {
	return nil, errRegistryDown
}

func (failingRepo) ListSensorsByType(context.Context, string) ([]hardware_models.Sensor, error) {
	return nil, errRegistryDown
}

func (failingRepo) CountSensors(context.Context) (int, error) {
	return 0, errRegistryDown
}

func (failingRepo) CreateSensor(context.Context, string, string, float64) (*hardware_models.Sensor, error) {
	return nil, errRegistryDown
}

func (failingRepo) DeleteSensor(context.Context, int64) (bool, error) {
	return false, errRegistryDown
}

func TestRegistryFailuresHideDetails(t *testing.T) {
	router := newTestRouter(t, failingRepo{})

	w := do(router, http.MethodGet, "/api/sensores", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decodeError(t, w))

	w = do(router, http.MethodPost, "/api/sensores", `{"nombre":"a","tipo":"Luz","valor":1}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = do(router, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestEndpointsListsEveryRoute(t *testing.T) {
	router := newTestRouter(t, nil)

	endpoints := Endpoints(router)
	for _, want := range []string{
		"GET /api/sensores",
		"POST /api/sensores",
		"DELETE /api/sensores/:id",
		"GET /api/sensores/tipo/:tipo",
		"GET /health/live",
		"GET /health/ready",
		"GET /metrics",
	} {
		assert.Contains(t, endpoints, want)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	router := newTestRouter(t, nil)

	w := do(router, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
