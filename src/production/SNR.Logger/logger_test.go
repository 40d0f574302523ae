package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var lines []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		lines = append(lines, entry)
	}
	return lines
}

func TestLoggerFields(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	log := NewWithWriter(&buf)

	log.WithComponent("registry").
		WithRequestID("req-1").
		WithFields(map[string]interface{}{"sensor_id": 4}).
		Info("sensor created")
	log.WithError(errors.New("boom")).Warn("publish failed")
	log.ErrorWithError(errors.New("bad"), "request failed")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 3)

	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "registry", lines[0]["component"])
	assert.Equal(t, "req-1", lines[0]["request_id"])
	assert.Equal(t, float64(4), lines[0]["sensor_id"])
	assert.Equal(t, "sensor created", lines[0]["message"])

	assert.Equal(t, "warn", lines[1]["level"])
	assert.Equal(t, "boom", lines[1]["error"])

	assert.Equal(t, "error", lines[2]["level"])
	assert.Equal(t, "bad", lines[2]["error"])
}

func TestLoggerChildrenDoNotLeakFields(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	parent := NewWithWriter(&buf)

	parent.WithField("k", "v").Debug("child")
	parent.Debug("parent")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "v", lines[0]["k"])
	_, ok := lines[1]["k"]
	assert.False(t, ok)
}

func TestNopDiscards(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNop().WithComponent("x").Info("ignored")
	})
}
