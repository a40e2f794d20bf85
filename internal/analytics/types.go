// Package analytics provides the common types shared by the series analysis
// packages: samples, series, derived sequences and their typed errors.
package analytics

import (
	"encoding/json"
	"strconv"
	"time"
)

// Sample is a single (timestamp, value) observation.
// Identity is its position in the Series; samples are never merged.
type Sample struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Series is an ordered sequence of samples. After loading it is sorted
// non-decreasing by Time with ties kept in input order.
type Series []Sample

// Values extracts just the values from the series
func (s Series) Values() []float64 {
	values := make([]float64, len(s))
	for i, p := range s {
		values[i] = p.Value
	}
	return values
}

// Len returns the number of samples
func (s Series) Len() int {
	return len(s)
}

// IsSorted reports whether timestamps are non-decreasing.
func (s Series) IsSorted() bool {
	for i := 1; i < len(s); i++ {
		if s[i].Time.Before(s[i-1].Time) {
			return false
		}
	}
	return true
}

// Pick returns a new series holding the samples at the given indices, in the
// order the indices are given.
func (s Series) Pick(indices []int) Series {
	out := make(Series, 0, len(indices))
	for _, i := range indices {
		out = append(out, s[i])
	}
	return out
}

// SlopeSample is a sample annotated with the first difference that ends at it.
type SlopeSample struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
	Slope float64   `json:"slope"`
}

// Optional holds a float64 that may be undefined. The zero value is undefined.
type Optional struct {
	value float64
	valid bool
}

// Some returns a defined Optional holding v.
func Some(v float64) Optional {
	return Optional{value: v, valid: true}
}

// Undefined returns an Optional with no value.
func Undefined() Optional {
	return Optional{}
}

// Get returns the value and whether it is defined.
func (o Optional) Get() (float64, bool) {
	return o.value, o.valid
}

// Defined reports whether the value is present.
func (o Optional) Defined() bool {
	return o.valid
}

// String renders the value, or "undefined".
func (o Optional) String() string {
	if !o.valid {
		return "undefined"
	}
	return strconv.FormatFloat(o.value, 'g', -1, 64)
}

// MarshalJSON encodes an undefined value as null.
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes null as undefined.
func (o *Optional) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = Optional{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// Derived is a sequence aligned 1:1 by index with the Series it was computed
// from. Positions where the computation has no value are undefined.
type Derived []Optional

// UndefinedCount returns the number of undefined positions.
func (d Derived) UndefinedCount() int {
	n := 0
	for _, o := range d {
		if !o.valid {
			n++
		}
	}
	return n
}
