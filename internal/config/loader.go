package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/soltixdb/trendscope/internal/utils"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")               // Current directory
		v.AddConfigPath("./configs")       // Project configs directory
		v.AddConfigPath("/etc/trendscope") // System-wide config
	}

	// Set defaults
	setDefaults(v)

	// Enable environment variable overrides (TRENDSCOPE_CACHE_TYPE, ...)
	v.SetEnvPrefix("TRENDSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	// Server defaults
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)
	v.SetDefault("server.body_limit_mb", d.Server.BodyLimitMB)

	// Auth defaults
	v.SetDefault("auth.enabled", false)

	// Analysis defaults
	v.SetDefault("analysis.timestamp_column", d.Analysis.TimestampColumn)
	v.SetDefault("analysis.value_column", d.Analysis.ValueColumn)
	v.SetDefault("analysis.threshold", d.Analysis.Threshold)
	v.SetDefault("analysis.moving_average_windows", d.Analysis.MovingAverageWindows)
	v.SetDefault("analysis.include_slope", d.Analysis.IncludeSlope)
	v.SetDefault("analysis.parallel", d.Analysis.Parallel)

	// Cache defaults
	v.SetDefault("cache.type", d.Cache.Type)
	v.SetDefault("cache.prefix", d.Cache.Prefix)
	v.SetDefault("cache.ttl", d.Cache.TTL.String())
	v.SetDefault("cache.max_entries", d.Cache.MaxEntries)
	v.SetDefault("cache.compress", d.Cache.Compress)

	// Influx defaults
	v.SetDefault("influx.enabled", false)
	v.SetDefault("influx.range", d.Influx.Range)

	// Logging defaults
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		// Return default configuration
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			HTTPPort:    5580,
			BodyLimitMB: utils.MaxUploadSize / (1024 * 1024),
		},
		Analysis: AnalysisConfig{
			TimestampColumn:      utils.DefaultTimestampColumn,
			ValueColumn:          utils.DefaultValueColumn,
			Threshold:            utils.DefaultThreshold,
			MovingAverageWindows: append([]int(nil), utils.DefaultMovingAverageWindows...),
		},
		Cache: CacheConfig{
			Type:       string(utils.CacheTypeMemory),
			Prefix:     utils.DefaultCachePrefix,
			TTL:        utils.DefaultCacheTTL,
			MaxEntries: utils.DefaultCacheMaxEntries,
			Compress:   true,
		},
		Influx: InfluxConfig{
			Range: "-24h",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}
}
