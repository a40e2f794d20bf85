package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/soltixdb/trendscope/internal/analytics/filter"
	"github.com/soltixdb/trendscope/internal/utils"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Influx   InfluxConfig   `mapstructure:"influx"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host        string `mapstructure:"host"`          // Bind address (e.g., 0.0.0.0 for all interfaces)
	HTTPPort    int    `mapstructure:"http_port"`     // HTTP server port
	BodyLimitMB int    `mapstructure:"body_limit_mb"` // Max CSV upload size
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled   bool     `mapstructure:"enabled"`    // Enable/disable authentication
	APIKeys   []string `mapstructure:"api_keys"`   // List of valid API keys
	JWTSecret string   `mapstructure:"jwt_secret"` // HS256 secret for bearer tokens, empty disables JWT
}

// AnalysisConfig holds the defaults applied to every analysis request
type AnalysisConfig struct {
	TimestampColumn      string `mapstructure:"timestamp_column"`
	ValueColumn          string `mapstructure:"value_column"`
	TimeLayout           string `mapstructure:"time_layout"` // Optional Go layout tried before the built-in ones
	Timezone             string `mapstructure:"timezone"`    // Zone for timestamps without offset (e.g., "Asia/Tokyo", "+09:00")
	Threshold            string `mapstructure:"threshold"`   // e.g. "< 20"
	MovingAverageWindows []int  `mapstructure:"moving_average_windows"`
	IncludeSlope         bool   `mapstructure:"include_slope"`
	Parallel             bool   `mapstructure:"parallel"`
}

// CacheConfig represents result cache configuration
type CacheConfig struct {
	Type       string        `mapstructure:"type"` // memory (default), redis, none
	URL        string        `mapstructure:"url"`  // Redis URL (e.g., redis://localhost:6379/0)
	Password   string        `mapstructure:"password"`
	Prefix     string        `mapstructure:"prefix"`
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"` // memory backend only
	Compress   bool          `mapstructure:"compress"`    // snappy-compress cached payloads
}

// InfluxConfig represents the optional InfluxDB series source
type InfluxConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	URL         string `mapstructure:"url"`
	Token       string `mapstructure:"token"`
	Org         string `mapstructure:"org"`
	Bucket      string `mapstructure:"bucket"`
	Measurement string `mapstructure:"measurement"`
	Field       string `mapstructure:"field"`
	Range       string `mapstructure:"range"` // Flux duration, e.g. "-24h"
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen

	// Rotation, applied only when OutputPath is a file
	MaxSizeMB  int `mapstructure:"max_size_mb"`
	MaxBackups int `mapstructure:"max_backups"`
	MaxAgeDays int `mapstructure:"max_age_days"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth config: %w", err)
	}

	if err := c.Analysis.Validate(); err != nil {
		return fmt.Errorf("analysis config: %w", err)
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	if err := c.Influx.Validate(); err != nil {
		return fmt.Errorf("influx config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}

	if c.BodyLimitMB < 0 {
		return fmt.Errorf("body_limit_mb cannot be negative")
	}

	return nil
}

// Validate validates analysis configuration
func (c *AnalysisConfig) Validate() error {
	if strings.TrimSpace(c.TimestampColumn) == "" {
		return fmt.Errorf("analysis.timestamp_column is required")
	}

	if strings.TrimSpace(c.ValueColumn) == "" {
		return fmt.Errorf("analysis.value_column is required")
	}

	if _, err := filter.Parse(c.Threshold); err != nil {
		return fmt.Errorf("analysis.threshold: %w", err)
	}

	for _, w := range c.MovingAverageWindows {
		if w <= 0 {
			return fmt.Errorf("analysis.moving_average_windows must be positive, got %d", w)
		}
	}

	if c.Timezone != "" {
		if _, err := ParseTimezone(c.Timezone); err != nil {
			return fmt.Errorf("analysis.timezone: %w", err)
		}
	}

	return nil
}

// Validate validates auth configuration
func (c *AuthConfig) Validate() error {
	if c.Enabled && len(c.APIKeys) == 0 && c.JWTSecret == "" {
		return fmt.Errorf("auth enabled but neither api_keys nor jwt_secret is set")
	}
	return nil
}

// Validate validates cache configuration
func (c *CacheConfig) Validate() error {
	switch utils.CacheType(strings.ToLower(c.Type)) {
	case "", utils.CacheTypeMemory, utils.CacheTypeNone:
	case utils.CacheTypeRedis:
		if c.URL == "" {
			return fmt.Errorf("cache.url is required for redis cache")
		}
	default:
		return fmt.Errorf("cache.type must be one of: memory, redis, none")
	}

	if c.TTL < 0 {
		return fmt.Errorf("cache.ttl cannot be negative")
	}

	if c.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries cannot be negative")
	}

	return nil
}

// Validate validates influx configuration
func (c *InfluxConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.URL == "" {
		return fmt.Errorf("influx.url is required when influx is enabled")
	}

	if c.Org == "" || c.Bucket == "" {
		return fmt.Errorf("influx.org and influx.bucket are required when influx is enabled")
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("logging rotation settings cannot be negative")
	}

	return nil
}
