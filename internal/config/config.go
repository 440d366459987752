// Package config loads plotpipe configuration from file and environment.
//
// Precedence (highest to lowest):
//  1. Environment variables (PLOTPIPE_*, OTEL_EXPORTER_OTLP_*), including
//     any set by a .env file in the current directory
//  2. Config file
//  3. Built-in defaults
//
// Config file search order:
//  1. .plotpipe.yaml in current directory
//  2. ~/.config/plotpipe/config.yaml
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/timvw/plotpipe/internal/codec"
)

// Config holds all plotpipe configuration.
type Config struct {
	// gnuplot process
	Program  string `yaml:"program"`
	Persist  *bool  `yaml:"persist"`
	Terminal string `yaml:"terminal"` // sent as "set terminal <x>" after spawn

	// Wire protocol
	Endian     string `yaml:"endian"` // native, little, big
	FlushLines int    `yaml:"flush_lines"`

	// Timing, Go duration strings
	StartupDelay string `yaml:"startup_delay"`
	WaitTimeout  string `yaml:"wait_timeout"`

	// Logging
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	// OTEL
	OTELEndpoint string `yaml:"otel_endpoint"`
	OTELHeaders  string `yaml:"otel_headers"`
	OTELInterval string `yaml:"otel_interval"` // metric export interval

	// Parsed values (not from YAML, set after loading)
	ByteOrder            codec.Endian  `yaml:"-"`
	StartupDelayDuration time.Duration `yaml:"-"`
	WaitTimeoutDuration  time.Duration `yaml:"-"`
	OTELIntervalDuration time.Duration `yaml:"-"`

	// ConfigFile is the path to the config file that was loaded (empty if none).
	ConfigFile string `yaml:"-"`
}

// DefaultFlushLines is how many comment lines Flush pushes through the pipe.
const DefaultFlushLines = 250

// Defaults returns a Config with all default values.
func Defaults() *Config {
	persist := true
	return &Config{
		Program:      "gnuplot",
		Persist:      &persist,
		Endian:       "native",
		FlushLines:   DefaultFlushLines,
		StartupDelay: "0",
		WaitTimeout:  "0",
		LogLevel:     "info",
	}
}

// PersistEnabled reports the effective persist flag.
func (c *Config) PersistEnabled() bool {
	return c.Persist == nil || *c.Persist
}

// Load reads configuration from file and environment variables.
// Environment variables always override file values.
func Load() (*Config, error) {
	cfg := Defaults()

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	if path, data, err := findConfigFile(); err == nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
		mergeFile(cfg, &fileCfg)
	}

	if err := mergeEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv loads path into the environment if it exists. Values already
// in the environment win over the file.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// resolve parses the string-typed settings into their typed fields.
func (c *Config) resolve() error {
	var err error
	c.ByteOrder, err = codec.ParseEndian(c.Endian)
	if err != nil {
		return err
	}
	c.StartupDelayDuration, err = parseDurationOrDisable(c.StartupDelay, 0)
	if err != nil {
		return fmt.Errorf("invalid startup delay %q: %w", c.StartupDelay, err)
	}
	c.WaitTimeoutDuration, err = parseDurationOrDisable(c.WaitTimeout, 0)
	if err != nil {
		return fmt.Errorf("invalid wait timeout %q: %w", c.WaitTimeout, err)
	}
	c.OTELIntervalDuration, err = parseDurationOrDisable(c.OTELInterval, 0)
	if err != nil {
		return fmt.Errorf("invalid otel interval %q: %w", c.OTELInterval, err)
	}
	if c.FlushLines < 0 {
		return fmt.Errorf("flush_lines must not be negative, got %d", c.FlushLines)
	}
	return nil
}

// findConfigFile searches for a config file and returns its path and contents.
func findConfigFile() (string, []byte, error) {
	if data, err := os.ReadFile(".plotpipe.yaml"); err == nil {
		return ".plotpipe.yaml", data, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "plotpipe", "config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	return "", nil, fmt.Errorf("no config file found")
}

// mergeFile applies non-zero file values onto cfg.
func mergeFile(cfg *Config, file *Config) {
	if file.Program != "" {
		cfg.Program = file.Program
	}
	if file.Persist != nil {
		cfg.Persist = file.Persist
	}
	if file.Terminal != "" {
		cfg.Terminal = file.Terminal
	}
	if file.Endian != "" {
		cfg.Endian = file.Endian
	}
	if file.FlushLines > 0 {
		cfg.FlushLines = file.FlushLines
	}
	if file.StartupDelay != "" {
		cfg.StartupDelay = file.StartupDelay
	}
	if file.WaitTimeout != "" {
		cfg.WaitTimeout = file.WaitTimeout
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	if file.LogFile != "" {
		cfg.LogFile = file.LogFile
	}
	if file.OTELEndpoint != "" {
		cfg.OTELEndpoint = file.OTELEndpoint
	}
	if file.OTELHeaders != "" {
		cfg.OTELHeaders = file.OTELHeaders
	}
	if file.OTELInterval != "" {
		cfg.OTELInterval = file.OTELInterval
	}
}

// mergeEnv applies environment variables onto cfg. Env always wins.
func mergeEnv(cfg *Config) error {
	if v := os.Getenv("PLOTPIPE_PROGRAM"); v != "" {
		cfg.Program = v
	}
	if v := os.Getenv("PLOTPIPE_PERSIST"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid PLOTPIPE_PERSIST %q: %w", v, err)
		}
		cfg.Persist = &b
	}
	if v := os.Getenv("PLOTPIPE_TERMINAL"); v != "" {
		cfg.Terminal = v
	}
	if v := os.Getenv("PLOTPIPE_ENDIAN"); v != "" {
		cfg.Endian = v
	}
	if v := os.Getenv("PLOTPIPE_FLUSH_LINES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PLOTPIPE_FLUSH_LINES %q: %w", v, err)
		}
		cfg.FlushLines = n
	}
	if v := os.Getenv("PLOTPIPE_STARTUP_DELAY"); v != "" {
		cfg.StartupDelay = v
	}
	if v := os.Getenv("PLOTPIPE_WAIT_TIMEOUT"); v != "" {
		cfg.WaitTimeout = v
	}
	if v := os.Getenv("PLOTPIPE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PLOTPIPE_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); v != "" {
		cfg.OTELHeaders = v
	}
	if v := os.Getenv("PLOTPIPE_OTEL_INTERVAL"); v != "" {
		cfg.OTELInterval = v
	}
	return nil
}

// parseDurationOrDisable parses a duration string. "0", "off", "disable" return 0.
// Empty string returns the fallback value.
func parseDurationOrDisable(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	if s == "0" || s == "off" || s == "disable" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
