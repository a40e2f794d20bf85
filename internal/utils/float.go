package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNotFinite is returned for NaN and infinite values
var ErrNotFinite = errors.New("value is not a finite number")

// ToFloat64 converts various numeric types to float64.
// Returns the converted value and true if successful, or 0 and false if conversion fails.
// Supports: float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number
func ToFloat64(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}

	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ParseFiniteFloat64 converts a numeric value or a decimal string to a
// finite float64. Surrounding whitespace and quotes are ignored for strings.
func ParseFiniteFloat64(v interface{}) (float64, error) {
	var f float64

	switch val := v.(type) {
	case nil:
		return 0, errors.New("missing value")
	case string:
		s := strings.TrimSpace(strings.Trim(strings.TrimSpace(val), "\""))
		if s == "" {
			return 0, errors.New("empty value")
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		f = parsed
	default:
		n, ok := ToFloat64(v)
		if !ok {
			return 0, fmt.Errorf("unsupported type %T", v)
		}
		f = n
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrNotFinite
	}
	return f, nil
}
