package api_models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrInvalidValor is returned when valor is neither a finite number nor a numeric string.
	ErrInvalidValor = errors.New("valor must be numeric")

	// ErrInvalidSensorID is returned when a path id is not an integer.
	ErrInvalidSensorID = errors.New("invalid sensor id")
)

// DeleteSensorMessage is the acknowledgement text returned by the delete endpoint
const DeleteSensorMessage = "Sensor eliminado correctamente"

// CreateSensorRequest is the body accepted by POST /api/sensores
type CreateSensorRequest struct {
	Nombre string `json:"nombre" binding:"required"`
	Tipo   string `json:"tipo" binding:"required"`
	Valor  *Valor `json:"valor" binding:"required"`
}

// DeleteSensorResponse acknowledges a delete request
type DeleteSensorResponse struct {
	Mensaje string `json:"mensaje"`
	ID      int64  `json:"id"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Valor is a sensor reading that accepts either a JSON number or a string
// holding a decimal number. Non-finite values are rejected.
type Valor float64

// Float64 returns the reading as a float64
func (v Valor) Float64() float64 {
	return float64(v)
}

// UnmarshalJSON implements json.Unmarshaler
func (v *Valor) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	text := string(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidValor, err)
		}
		text = strings.TrimSpace(s)
	}

	f, err := ParseValor(text)
	if err != nil {
		return err
	}
	*v = Valor(f)
	return nil
}

// decimalPattern is a plain decimal number with optional exponent. Hex
// floats, underscores and Inf/NaN spellings do not match.
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseValor converts text to a finite float64
func ParseValor(text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	if !decimalPattern.MatchString(trimmed) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidValor, text)
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidValor, text)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrInvalidValor, text)
	}
	return f, nil
}

// ParseSensorID parses the :id path parameter
func ParseSensorID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSensorID, raw)
	}
	return id, nil
}
