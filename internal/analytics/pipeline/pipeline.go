// Package pipeline composes the analysis stages into a single call that
// returns an immutable result bundle.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/soltixdb/trendscope/internal/analytics"
	"github.com/soltixdb/trendscope/internal/analytics/extrema"
	"github.com/soltixdb/trendscope/internal/analytics/filter"
	"github.com/soltixdb/trendscope/internal/analytics/slope"
	"github.com/soltixdb/trendscope/internal/analytics/smoothing"
)

// Result set names. Result.Sets always returns exactly these keys.
const (
	SetPeaks               = "peaks"
	SetLows                = "lows"
	SetLowValues           = "low_values"
	SetAcceleratingDecline = "accelerating_decline"
)

// SetNames lists the result set names in presentation order.
var SetNames = []string{SetPeaks, SetLows, SetLowValues, SetAcceleratingDecline}

// Config selects the threshold and the optional stages.
type Config struct {
	// Threshold selects the low_values result set
	Threshold filter.Predicate

	// MovingAverageWindows are optional trend stages; empty skips smoothing
	MovingAverageWindows []int

	// IncludeSlope adds the full first-difference sequence to the result
	IncludeSlope bool

	// Parallel runs independent stages on separate goroutines
	Parallel bool
}

// DefaultConfig returns the configuration of the reference analysis:
// values below 20, 1000/5000/5 sample moving averages.
func DefaultConfig() Config {
	return Config{
		Threshold:            filter.LessThan(20),
		MovingAverageWindows: []int{1000, 5000, 5},
	}
}

// Fingerprint identifies the parts of the config that change the result.
// Parallel does not.
func (c Config) Fingerprint() string {
	windows := append([]int(nil), c.MovingAverageWindows...)
	sort.Ints(windows)

	parts := make([]string, len(windows))
	for i, w := range windows {
		parts[i] = strconv.Itoa(w)
	}
	return fmt.Sprintf("threshold=%s;ma=%s;slope=%t", c.Threshold, strings.Join(parts, ","), c.IncludeSlope)
}

// Result is the outcome of one pipeline run. It is built once and not
// modified afterwards.
type Result struct {
	SampleCount         int                       `json:"sample_count"`
	Threshold           filter.Predicate          `json:"threshold"`
	Peaks               analytics.Series          `json:"peaks"`
	Lows                analytics.Series          `json:"lows"`
	LowValues           analytics.Series          `json:"low_values"`
	AcceleratingDecline []analytics.SlopeSample   `json:"accelerating_decline"`
	MovingAverages      map[int]analytics.Derived `json:"moving_averages,omitempty"`
	Slope               analytics.Derived         `json:"slope,omitempty"`
}

type stage struct {
	name string
	run  func(r *Result) error
}

// Run executes every stage over series. Stage errors are returned wrapped
// with the stage name; errors.Is/As still match the original error.
// An empty series is not an error: every result set is empty.
func Run(ctx context.Context, series analytics.Series, cfg Config) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := cfg.Threshold.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", SetLowValues, err)
	}

	stages := []stage{
		{SetPeaks, func(r *Result) error {
			r.Peaks = extrema.FindPeaks(series)
			return nil
		}},
		{SetLows, func(r *Result) error {
			r.Lows = extrema.FindLows(series)
			return nil
		}},
		{SetLowValues, func(r *Result) error {
			r.LowValues = filter.ByValue(series, cfg.Threshold)
			return nil
		}},
		{SetAcceleratingDecline, func(r *Result) error {
			r.AcceleratingDecline = slope.FindAcceleratingDecline(series)
			return nil
		}},
	}
	if len(cfg.MovingAverageWindows) > 0 {
		stages = append(stages, stage{"moving_averages", func(r *Result) error {
			ma, err := smoothing.MovingAverages(series, cfg.MovingAverageWindows...)
			if err != nil {
				return err
			}
			r.MovingAverages = ma
			return nil
		}})
	}
	if cfg.IncludeSlope {
		stages = append(stages, stage{"slope", func(r *Result) error {
			r.Slope = slope.Compute(series)
			return nil
		}})
	}

	result := &Result{
		SampleCount: len(series),
		Threshold:   cfg.Threshold,
	}

	var err error
	if cfg.Parallel {
		err = runParallel(stages, result)
	} else {
		err = runSequential(stages, result)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func runSequential(stages []stage, result *Result) error {
	for _, s := range stages {
		if err := s.run(result); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

// runParallel runs each stage on its own goroutine. Every stage writes a
// distinct field of result. The first error in stage order is returned.
func runParallel(stages []stage, result *Result) error {
	errs := make([]error, len(stages))

	var wg sync.WaitGroup
	for i, s := range stages {
		wg.Add(1)
		go func(i int, s stage) {
			defer wg.Done()
			if err := s.run(result); err != nil {
				errs[i] = fmt.Errorf("%s: %w", s.name, err)
			}
		}(i, s)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
