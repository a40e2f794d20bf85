package analytics

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptional_JSON(t *testing.T) {
	d := Derived{Undefined(), Some(1.5), Some(-2)}

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `[null,1.5,-2]`, string(data))

	var back Derived
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d, back)
	assert.Equal(t, 1, back.UndefinedCount())
}

func TestOptional_ZeroIsUndefined(t *testing.T) {
	var o Optional
	_, ok := o.Get()
	assert.False(t, ok)
	assert.Equal(t, "undefined", o.String())

	v, ok := Some(0).Get()
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestSeries_Helpers(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := Series{
		{Time: base, Value: 1},
		{Time: base.Add(time.Minute), Value: 2},
		{Time: base.Add(2 * time.Minute), Value: 3},
	}

	assert.Equal(t, []float64{1, 2, 3}, s.Values())
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.IsSorted())
	assert.Equal(t, Series{s[2], s[0]}, s.Pick([]int{2, 0}))

	s[0], s[2] = s[2], s[0]
	assert.False(t, s.IsSorted())
}

func TestErrors_Matching(t *testing.T) {
	var err error = &MalformedRowError{Row: 3, Field: "Values", Raw: "abc", Err: errors.New("bad")}
	wrapped := fmt.Errorf("load: %w", err)

	assert.True(t, errors.Is(wrapped, ErrMalformedRow))
	assert.False(t, errors.Is(wrapped, ErrInvalidWindow))

	var mre *MalformedRowError
	require.True(t, errors.As(wrapped, &mre))
	assert.Equal(t, 3, mre.Row)
	assert.Contains(t, err.Error(), `row 3: field "Values"`)

	err = &InvalidWindowError{Window: 0}
	assert.True(t, errors.Is(err, ErrInvalidWindow))
	assert.Equal(t, "invalid window 0: must be positive", err.Error())
}
