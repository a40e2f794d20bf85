// Package slope computes first and second differences of a series and flags
// samples where the series is falling faster and faster.
package slope

import (
	"github.com/soltixdb/trendscope/internal/analytics"
)

// Compute returns the first difference aligned with the series:
// slope[0] is undefined and slope[i] = value[i] - value[i-1].
func Compute(series analytics.Series) analytics.Derived {
	out := make(analytics.Derived, len(series))
	for i := 1; i < len(series); i++ {
		out[i] = analytics.Some(series[i].Value - series[i-1].Value)
	}
	return out
}

// SecondDifference returns the change in slope aligned with the series.
// Positions 0 and 1 are undefined because slope[0] is.
func SecondDifference(series analytics.Series) analytics.Derived {
	return diff(Compute(series))
}

// DeclineIndices returns indices i >= 2 where slope[i] < 0 and
// slope[i] - slope[i-1] < 0.
func DeclineIndices(series analytics.Series) []int {
	slopes := Compute(series)
	accel := diff(slopes)

	indices := []int{}
	for i := range series {
		s, ok := slopes[i].Get()
		if !ok {
			continue
		}
		a, ok := accel[i].Get()
		if !ok {
			continue
		}
		if s < 0 && a < 0 {
			indices = append(indices, i)
		}
	}
	return indices
}

// FindAcceleratingDecline returns the (time, value, slope) rows of the
// samples selected by DeclineIndices.
func FindAcceleratingDecline(series analytics.Series) []analytics.SlopeSample {
	slopes := Compute(series)
	indices := DeclineIndices(series)

	out := make([]analytics.SlopeSample, 0, len(indices))
	for _, i := range indices {
		s, _ := slopes[i].Get()
		out = append(out, analytics.SlopeSample{
			Time:  series[i].Time,
			Value: series[i].Value,
			Slope: s,
		})
	}
	return out
}

// diff differences a derived sequence; a position is defined only when both
// it and its predecessor are.
func diff(d analytics.Derived) analytics.Derived {
	out := make(analytics.Derived, len(d))
	for i := 1; i < len(d); i++ {
		cur, ok := d[i].Get()
		if !ok {
			continue
		}
		prev, ok := d[i-1].Get()
		if !ok {
			continue
		}
		out[i] = analytics.Some(cur - prev)
	}
	return out
}
