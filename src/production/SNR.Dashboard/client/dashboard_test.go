package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api_models "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Models/api"
	hardware_models "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Models/hardware"
)

// stubAPI serves a fixed list and records calls; failing methods return err
type stubAPI struct {
	sensors []hardware_models.Sensor
	nextID  int64

	failList   bool
	failCreate bool
	failDelete bool

	listCalls int
}

var errStub = &StatusError{StatusCode: 500, Message: "internal server error"}

func newStubAPI() *stubAPI {
	return &stubAPI{sensors: hardware_models.SeedSensors(), nextID: 100}
}

func (s *stubAPI) ListSensors(context.Context) ([]hardware_models.Sensor, error) {
	s.listCalls++
	if s.failList {
		return nil, errStub
	}
	return append([]hardware_models.Sensor{}, s.sensors...), nil
}

func (s *stubAPI) CreateSensor(_ context.Context, name, sensorType string, value float64) (*hardware_models.Sensor, error) {
	if s.failCreate {
		return nil, errStub
	}
	s.nextID++
	created := hardware_models.Sensor{ID: s.nextID, Name: name, Type: sensorType, Value: value}
	s.sensors = append(s.sensors, created)
	return &created, nil
}

func (s *stubAPI) DeleteSensor(_ context.Context, id int64) (*api_models.DeleteSensorResponse, error) {
	if s.failDelete {
		return nil, errStub
	}
	kept := s.sensors[:0]
	for _, sensor := range s.sensors {
		if sensor.ID != id {
			kept = append(kept, sensor)
		}
	}
	s.sensors = kept
	return &api_models.DeleteSensorResponse{Mensaje: api_models.DeleteSensorMessage, ID: id}, nil
}

func TestDashboardStartsEmpty(t *testing.T) {
	d := NewDashboard(newStubAPI())
	assert.NotNil(t, d.Sensors())
	assert.Empty(t, d.Sensors())
	assert.Empty(t, d.Filter(AllTypes))
}

func TestDashboardReloadsAfterEveryMutation(t *testing.T) {
	ctx := context.Background()
	api := newStubAPI()
	d := NewDashboard(api)

	_, err := d.Reload(ctx)
	require.NoError(t, err)
	assert.Len(t, d.Sensors(), 3)

	created, err := d.CreateAndReload(ctx, "Test", "Luz", 50)
	require.NoError(t, err)
	assert.Len(t, d.Sensors(), 4)
	assert.Equal(t, *created, d.Sensors()[3])

	require.NoError(t, d.DeleteAndReload(ctx, 3))
	assert.Len(t, d.Sensors(), 3)
	assert.Equal(t, 3, api.listCalls)
}

func TestDashboardFilter(t *testing.T) {
	ctx := context.Background()
	d := NewDashboard(newStubAPI())
	_, err := d.CreateAndReload(ctx, "Test", "Luz", 50)
	require.NoError(t, err)

	assert.Len(t, d.Filter(AllTypes), 4)
	assert.Len(t, d.Filter(""), 4)

	luz := d.Filter("Luz")
	require.Len(t, luz, 2)
	assert.Equal(t, int64(3), luz[0].ID)

	assert.Empty(t, d.Filter("luz"))
	assert.NotNil(t, d.Filter("Presión"))
}

func TestDashboardKeepsListOnFailure(t *testing.T) {
	ctx := context.Background()
	api := newStubAPI()
	d := NewDashboard(api)
	_, err := d.Reload(ctx)
	require.NoError(t, err)
	before := d.Sensors()

	api.failCreate = true
	_, err = d.CreateAndReload(ctx, "x", "Luz", 1)
	assert.Error(t, err)
	assert.Equal(t, before, d.Sensors())

	api.failDelete = true
	assert.Error(t, d.DeleteAndReload(ctx, 1))
	assert.Equal(t, before, d.Sensors())

	api.failList = true
	_, err = d.Reload(ctx)
	var statusErr *StatusError
	assert.True(t, errors.As(err, &statusErr))
	assert.Equal(t, before, d.Sensors())
}

func TestDashboardSensorsIsACopy(t *testing.T) {
	d := NewDashboard(newStubAPI())
	_, err := d.Reload(context.Background())
	require.NoError(t, err)

	held := d.Sensors()
	held[0].Name = "mutated"
	assert.Equal(t, "Sensor Sala", d.Sensors()[0].Name)
}
