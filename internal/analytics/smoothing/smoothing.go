// Package smoothing computes trailing simple moving averages over a series.
package smoothing

import (
	"sort"

	"github.com/soltixdb/trendscope/internal/analytics"
)

// MovingAverage returns the trailing simple moving average of the series
// values. Position i is undefined while i < window-1; from window-1 onward it
// is the mean of values [i-window+1, i].
//
// A window longer than the series is not an error: every position is
// undefined. A non-positive window returns *analytics.InvalidWindowError.
func MovingAverage(series analytics.Series, window int) (analytics.Derived, error) {
	if window <= 0 {
		return nil, &analytics.InvalidWindowError{Window: window}
	}

	result := make(analytics.Derived, len(series))
	if window > len(series) {
		return result, nil
	}

	sum := 0.0
	for i, s := range series {
		sum += s.Value
		if i >= window {
			sum -= series[i-window].Value
		}
		if i >= window-1 {
			result[i] = analytics.Some(sum / float64(window))
		}
	}

	return result, nil
}

// MovingAverages computes one moving average per window. Duplicate windows
// are computed once. The first invalid window aborts the whole call.
func MovingAverages(series analytics.Series, windows ...int) (map[int]analytics.Derived, error) {
	out := make(map[int]analytics.Derived, len(windows))
	for _, w := range windows {
		if _, done := out[w]; done {
			continue
		}
		ma, err := MovingAverage(series, w)
		if err != nil {
			return nil, err
		}
		out[w] = ma
	}
	return out, nil
}

// SortedWindows returns the keys of a MovingAverages result in ascending order.
func SortedWindows(m map[int]analytics.Derived) []int {
	windows := make([]int, 0, len(m))
	for w := range m {
		windows = append(windows, w)
	}
	sort.Ints(windows)
	return windows
}
