// Package extrema finds strict local maxima and minima in a series.
package extrema

import (
	"github.com/soltixdb/trendscope/internal/analytics"
)

// PeakIndices returns the indices i (1 <= i <= n-2) whose value is strictly
// greater than both immediate neighbours. The first and last samples have a
// single neighbour and are never peaks. Equal neighbours (plateaus) never
// qualify.
func PeakIndices(series analytics.Series) []int {
	return scan(series, func(prev, cur, next float64) bool {
		return cur > prev && cur > next
	})
}

// LowIndices is the strict local minimum counterpart of PeakIndices.
func LowIndices(series analytics.Series) []int {
	return scan(series, func(prev, cur, next float64) bool {
		return cur < prev && cur < next
	})
}

// FindPeaks returns the peak samples in series order.
func FindPeaks(series analytics.Series) analytics.Series {
	return series.Pick(PeakIndices(series))
}

// FindLows returns the low samples in series order.
func FindLows(series analytics.Series) analytics.Series {
	return series.Pick(LowIndices(series))
}

func scan(series analytics.Series, match func(prev, cur, next float64) bool) []int {
	indices := []int{}
	if len(series) < 3 {
		return indices
	}
	for i := 1; i < len(series)-1; i++ {
		if match(series[i-1].Value, series[i].Value, series[i+1].Value) {
			indices = append(indices, i)
		}
	}
	return indices
}
