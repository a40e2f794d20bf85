package models

import (
	"fmt"
	"strconv"
	"strings"
)

// AnalysisQuery holds the query string of the analysis routes
type AnalysisQuery struct {
	TimestampColumn string `query:"timestamp_column"`
	ValueColumn     string `query:"value_column"`
	TimeLayout      string `query:"time_layout"`
	Threshold       string `query:"threshold"` // e.g. "< 20", URL-encoded
	Windows         string `query:"windows"`   // comma separated, "none" disables moving averages
	Slope           string `query:"slope"`     // true/false
	Parallel        string `query:"parallel"`  // true/false
	Format          string `query:"format"`    // json (default), csv, xlsx, pdf
	Set             string `query:"set"`       // result set rendered by format=csv

	// InfluxDB selection, defaults come from configuration
	Bucket      string `query:"bucket"`
	Measurement string `query:"measurement"`
	Field       string `query:"field"`
	Range       string `query:"range"`
}

// ParseWindows returns nil when no windows were given, an empty slice for
// "none" and the listed windows otherwise.
func (q AnalysisQuery) ParseWindows() ([]int, error) {
	raw := strings.TrimSpace(q.Windows)
	if raw == "" {
		return nil, nil
	}
	if strings.EqualFold(raw, "none") {
		return []int{}, nil
	}

	parts := strings.Split(raw, ",")
	windows := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		w, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid window %q", p)
		}
		windows = append(windows, w)
	}
	return windows, nil
}

// ParseBool parses an optional boolean query value; empty is nil
func ParseBool(name, raw string) (*bool, error) {
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: must be true or false", name, raw)
	}
	return &b, nil
}
