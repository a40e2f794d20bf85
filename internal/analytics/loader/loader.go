// Package loader turns raw tabular rows into a validated, time-sorted
// analytics.Series.
//
// Loading is strict: the first row with a missing or unparseable timestamp or
// value aborts the load with *analytics.MalformedRowError. Skipping rows would
// silently shift the positional indices every downstream stage relies on.
package loader

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/soltixdb/trendscope/internal/analytics"
	"github.com/soltixdb/trendscope/internal/utils"
)

// Row is one loosely typed input record keyed by column name.
type Row map[string]interface{}

// Columns names the timestamp and value fields of a Row.
type Columns struct {
	Timestamp string
	Value     string
}

// DefaultColumns returns the column names of the reference data file.
func DefaultColumns() Columns {
	return Columns{
		Timestamp: utils.DefaultTimestampColumn,
		Value:     utils.DefaultValueColumn,
	}
}

// Validate checks both column names are set.
func (c Columns) Validate() error {
	if strings.TrimSpace(c.Timestamp) == "" {
		return errors.New("timestamp column is required")
	}
	if strings.TrimSpace(c.Value) == "" {
		return errors.New("value column is required")
	}
	return nil
}

// timeLayouts are tried in order after the caller supplied layout.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006/01/02 15:04:05",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
}

type options struct {
	layout   string
	location *time.Location
}

// Option configures timestamp parsing.
type Option func(*options)

// WithTimeLayout tries layout before the built-in layouts.
func WithTimeLayout(layout string) Option {
	return func(o *options) {
		o.layout = layout
	}
}

// WithLocation interprets timestamps without a zone in loc (default UTC).
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

// Load maps rows to samples and sorts them by timestamp. The sort is stable
// so rows sharing a timestamp keep their input order.
func Load(rows []Row, cols Columns, opts ...Option) (analytics.Series, error) {
	if err := cols.Validate(); err != nil {
		return nil, err
	}

	o := options{location: time.UTC}
	for _, opt := range opts {
		opt(&o)
	}

	series := make(analytics.Series, 0, len(rows))
	for i, row := range rows {
		sample, err := parseRow(i, row, cols, o)
		if err != nil {
			return nil, err
		}
		series = append(series, sample)
	}

	sort.SliceStable(series, func(a, b int) bool {
		return series[a].Time.Before(series[b].Time)
	})

	return series, nil
}

func parseRow(index int, row Row, cols Columns, o options) (analytics.Sample, error) {
	rawTime, ok := row[cols.Timestamp]
	if !ok || rawTime == nil {
		return analytics.Sample{}, &analytics.MalformedRowError{
			Row: index, Field: cols.Timestamp, Err: errors.New("missing field"),
		}
	}
	ts, err := parseTime(rawTime, o)
	if err != nil {
		return analytics.Sample{}, &analytics.MalformedRowError{
			Row: index, Field: cols.Timestamp, Raw: rawTime, Err: err,
		}
	}

	rawValue, ok := row[cols.Value]
	if !ok || rawValue == nil {
		return analytics.Sample{}, &analytics.MalformedRowError{
			Row: index, Field: cols.Value, Err: errors.New("missing field"),
		}
	}
	value, err := utils.ParseFiniteFloat64(rawValue)
	if err != nil {
		return analytics.Sample{}, &analytics.MalformedRowError{
			Row: index, Field: cols.Value, Raw: rawValue, Err: err,
		}
	}

	return analytics.Sample{Time: ts, Value: value}, nil
}

// parseTime accepts time.Time, layout strings and Unix seconds.
func parseTime(v interface{}, o options) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val, nil
	case *time.Time:
		if val == nil {
			return time.Time{}, errors.New("nil time")
		}
		return *val, nil
	case string:
		return parseTimeString(val, o)
	default:
		secs, ok := utils.ToFloat64(v)
		if !ok {
			return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
		}
		if math.IsNaN(secs) || math.IsInf(secs, 0) {
			return time.Time{}, utils.ErrNotFinite
		}
		whole, frac := math.Modf(secs)
		return time.Unix(int64(whole), int64(frac*1e9)).UTC(), nil
	}
}

func parseTimeString(s string, o options) (time.Time, error) {
	s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "\""))
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}

	layouts := timeLayouts
	if o.layout != "" {
		layouts = append([]string{o.layout}, timeLayouts...)
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, o.location); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format %q", s)
}
