package config

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/soltixdb/trendscope/internal/analytics/filter"
	"github.com/soltixdb/trendscope/internal/analytics/loader"
	"github.com/soltixdb/trendscope/internal/analytics/pipeline"
)

var offsetPattern = regexp.MustCompile(`^([+-])(\d{2}):(\d{2})$`)

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

// Columns returns the configured CSV column names
func (c *AnalysisConfig) Columns() loader.Columns {
	return loader.Columns{Timestamp: c.TimestampColumn, Value: c.ValueColumn}
}

// PipelineConfig converts the analysis section into a pipeline configuration
func (c *AnalysisConfig) PipelineConfig() (pipeline.Config, error) {
	pred, err := filter.Parse(c.Threshold)
	if err != nil {
		return pipeline.Config{}, err
	}
	return pipeline.Config{
		Threshold:            pred,
		MovingAverageWindows: append([]int(nil), c.MovingAverageWindows...),
		IncludeSlope:         c.IncludeSlope,
		Parallel:             c.Parallel,
	}, nil
}

// Location returns the configured timezone, UTC when unset or invalid.
// Supports formats:
//   - IANA timezone names: "Asia/Tokyo", "America/New_York", "UTC"
//   - Offset format: "+09:00", "-05:00", "+00:00"
func (c *AnalysisConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := ParseTimezone(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseTimezone parses an IANA zone name or a "+09:00" style offset
func ParseTimezone(tz string) (*time.Location, error) {
	// Try parsing as IANA timezone name first
	if loc, err := time.LoadLocation(tz); err == nil {
		return loc, nil
	}
	return parseOffsetTimezone(tz)
}

// parseOffsetTimezone parses timezone offset format like "+09:00", "-05:00"
func parseOffsetTimezone(offset string) (*time.Location, error) {
	matches := offsetPattern.FindStringSubmatch(offset)
	if len(matches) != 4 {
		return nil, fmt.Errorf("invalid offset format: %s", offset)
	}

	sign := 1
	if matches[1] == "-" {
		sign = -1
	}

	hours, err := strconv.Atoi(matches[2])
	if err != nil {
		return nil, fmt.Errorf("invalid hours: %s", matches[2])
	}

	minutes, err := strconv.Atoi(matches[3])
	if err != nil {
		return nil, fmt.Errorf("invalid minutes: %s", matches[3])
	}

	offsetSeconds := sign * (hours*3600 + minutes*60)
	return time.FixedZone(offset, offsetSeconds), nil
}
