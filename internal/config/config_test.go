package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soltixdb/trendscope/internal/analytics/filter"
)

func TestConfigValidation(t *testing.T) {
	withCfg := func(mutate func(c *Config)) *Config {
		c := DefaultConfig()
		mutate(c)
		return c
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "default config should be valid",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name:    "invalid http port",
			config:  withCfg(func(c *Config) { c.Server.HTTPPort = 0 }),
			wantErr: true,
		},
		{
			name:    "empty value column",
			config:  withCfg(func(c *Config) { c.Analysis.ValueColumn = " " }),
			wantErr: true,
		},
		{
			name:    "bad threshold expression",
			config:  withCfg(func(c *Config) { c.Analysis.Threshold = "about 20" }),
			wantErr: true,
		},
		{
			name:    "non-positive window",
			config:  withCfg(func(c *Config) { c.Analysis.MovingAverageWindows = []int{5, 0} }),
			wantErr: true,
		},
		{
			name:    "unknown timezone",
			config:  withCfg(func(c *Config) { c.Analysis.Timezone = "Mars/Olympus" }),
			wantErr: true,
		},
		{
			name:    "redis cache without url",
			config:  withCfg(func(c *Config) { c.Cache.Type = "redis" }),
			wantErr: true,
		},
		{
			name:    "unknown cache type",
			config:  withCfg(func(c *Config) { c.Cache.Type = "memcached" }),
			wantErr: true,
		},
		{
			name:    "cache disabled",
			config:  withCfg(func(c *Config) { c.Cache.Type = "none" }),
			wantErr: false,
		},
		{
			name:    "influx enabled without url",
			config:  withCfg(func(c *Config) { c.Influx.Enabled = true }),
			wantErr: true,
		},
		{
			name:    "auth enabled without credentials",
			config:  withCfg(func(c *Config) { c.Auth.Enabled = true }),
			wantErr: true,
		},
		{
			name: "auth enabled with jwt only",
			config: withCfg(func(c *Config) {
				c.Auth.Enabled = true
				c.Auth.JWTSecret = "s3cret"
			}),
			wantErr: false,
		},
		{
			name:    "invalid logging level",
			config:  withCfg(func(c *Config) { c.Logging.Level = "verbose" }),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Analysis.TimestampColumn != "Timestamp" || cfg.Analysis.ValueColumn != "Values" {
		t.Errorf("unexpected default columns: %+v", cfg.Analysis.Columns())
	}

	want := []int{1000, 5000, 5}
	if len(cfg.Analysis.MovingAverageWindows) != len(want) {
		t.Fatalf("expected windows %v, got %v", want, cfg.Analysis.MovingAverageWindows)
	}
	for i, w := range want {
		if cfg.Analysis.MovingAverageWindows[i] != w {
			t.Errorf("window[%d] = %d, want %d", i, cfg.Analysis.MovingAverageWindows[i], w)
		}
	}

	if cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("expected cache ttl 10m, got %v", cfg.Cache.TTL)
	}
}

func TestConfigHelpers(t *testing.T) {
	cfg := DefaultConfig()

	if got := cfg.GetServerAddress(); got != "0.0.0.0:5580" {
		t.Errorf("GetServerAddress() = %s", got)
	}

	pc, err := cfg.Analysis.PipelineConfig()
	if err != nil {
		t.Fatalf("PipelineConfig() error = %v", err)
	}
	if pc.Threshold != filter.LessThan(20) {
		t.Errorf("expected threshold < 20, got %s", pc.Threshold)
	}

	// Mutating the pipeline config must not leak back into the analysis section
	pc.MovingAverageWindows[0] = 1
	if cfg.Analysis.MovingAverageWindows[0] != 1000 {
		t.Error("PipelineConfig() shares the windows slice")
	}
}

func TestParseTimezone(t *testing.T) {
	tests := []struct {
		tz         string
		wantOffset int
		wantErr    bool
	}{
		{"UTC", 0, false},
		{"+09:00", 9 * 3600, false},
		{"-05:30", -(5*3600 + 30*60), false},
		{"9h", 0, true},
	}

	ref := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.tz, func(t *testing.T) {
			loc, err := ParseTimezone(tt.tz)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimezone(%q) error = %v, wantErr %v", tt.tz, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if _, offset := ref.In(loc).Zone(); offset != tt.wantOffset {
				t.Errorf("offset = %d, want %d", offset, tt.wantOffset)
			}
		})
	}

	a := AnalysisConfig{Timezone: "nowhere"}
	if a.Location() != time.UTC {
		t.Error("invalid timezone should fall back to UTC")
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  http_port: 9000
analysis:
  value_column: voltage
  threshold: ">= 3.5"
  moving_average_windows: [3, 7]
cache:
  type: none
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TRENDSCOPE_LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPPort != 9000 {
		t.Errorf("http_port = %d", cfg.Server.HTTPPort)
	}
	if cfg.Analysis.ValueColumn != "voltage" || cfg.Analysis.TimestampColumn != "Timestamp" {
		t.Errorf("unexpected columns %+v", cfg.Analysis.Columns())
	}
	if len(cfg.Analysis.MovingAverageWindows) != 2 || cfg.Analysis.MovingAverageWindows[1] != 7 {
		t.Errorf("windows = %v", cfg.Analysis.MovingAverageWindows)
	}
	if cfg.Cache.Type != "none" {
		t.Errorf("cache.type = %s", cfg.Cache.Type)
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("cache.ttl default lost: %v", cfg.Cache.TTL)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("env override not applied, level = %s", cfg.Logging.Level)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("analysis:\n  threshold: \"~ 2\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected validation error")
	}

	if cfg := LoadOrDefault(path); cfg.Analysis.Threshold != "< 20" {
		t.Errorf("LoadOrDefault should fall back to defaults, got %q", cfg.Analysis.Threshold)
	}
}
