package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	api_models "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Models/api"
	hardware_models "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Models/hardware"
)

// DefaultTimeout bounds every request when the caller does not pick one
const DefaultTimeout = 10 * time.Second

// ErrTransport wraps failures to reach the API at all (refused, DNS, timeout)
var ErrTransport = errors.New("sensor API unreachable")

// StatusError is returned for any non-2xx response
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Message)
}

// IsMalformedRequest reports whether the API rejected the request itself
func (e *StatusError) IsMalformedRequest() bool {
	return e.StatusCode == http.StatusBadRequest
}

// UserMessage turns a client error into a message fit for the terminal
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var statusErr *StatusError
	switch {
	case errors.Is(err, ErrTransport):
		return "No se pudo conectar con el servidor. ¿Está corriendo el backend?"
	case errors.As(err, &statusErr) && statusErr.IsMalformedRequest():
		return "Solicitud inválida: " + statusErr.Message
	case errors.As(err, &statusErr):
		return fmt.Sprintf("Error del servidor (HTTP %d)", statusErr.StatusCode)
	default:
		return "Error inesperado: " + err.Error()
	}
}

// APIClient handles communication with the sensor registry API. Requests are
// never retried; callers decide what to do with a failure.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// createSensorBody is the POST /api/sensores payload
type createSensorBody struct {
	Nombre string  `json:"nombre"`
	Tipo   string  `json:"tipo"`
	Valor  float64 `json:"valor"`
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListSensors fetches every registered sensor
func (c *APIClient) ListSensors(ctx context.Context) ([]hardware_models.Sensor, error) {
	var sensors []hardware_models.Sensor
	if err := c.do(ctx, http.MethodGet, "/api/sensores", nil, &sensors); err != nil {
		return nil, fmt.Errorf("failed to list sensors: %w", err)
	}
	return nonNil(sensors), nil
}

// ListSensorsByType fetches the sensors whose tipo matches exactly
func (c *APIClient) ListSensorsByType(ctx context.Context, sensorType string) ([]hardware_models.Sensor, error) {
	var sensors []hardware_models.Sensor
	path := "/api/sensores/tipo/" + url.PathEscape(sensorType)
	if err := c.do(ctx, http.MethodGet, path, nil, &sensors); err != nil {
		return nil, fmt.Errorf("failed to list sensors of type %q: %w", sensorType, err)
	}
	return nonNil(sensors), nil
}

// CreateSensor registers a new sensor and returns the stored record
func (c *APIClient) CreateSensor(ctx context.Context, name, sensorType string, value float64) (*hardware_models.Sensor, error) {
	body := createSensorBody{Nombre: name, Tipo: sensorType, Valor: value}

	var created hardware_models.Sensor
	if err := c.do(ctx, http.MethodPost, "/api/sensores", body, &created); err != nil {
		return nil, fmt.Errorf("failed to create sensor: %w", err)
	}
	return &created, nil
}

// DeleteSensor asks the API to remove id. The API acknowledges unknown ids too.
func (c *APIClient) DeleteSensor(ctx context.Context, id int64) (*api_models.DeleteSensorResponse, error) {
	var resp api_models.DeleteSensorResponse
	path := "/api/sensores/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodDelete, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to delete sensor %d: %w", id, err)
	}
	return &resp, nil
}

// Health checks if the API Service is alive
func (c *APIClient) Health(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/health/live", nil, nil); err != nil {
		return fmt.Errorf("API health check failed: %w", err)
	}
	return nil
}

// do sends one request and decodes a 2xx body into out when out is non-nil
func (c *APIClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := c.makeRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// makeRequest makes an HTTP request to the API Service
func (c *APIClient) makeRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "sensor-dashboard")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var apiErr api_models.ErrorResponse
	message := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
		message = apiErr.Error
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: message}
}

func nonNil(sensors []hardware_models.Sensor) []hardware_models.Sensor {
	if sensors == nil {
		return []hardware_models.Sensor{}
	}
	return sensors
}
