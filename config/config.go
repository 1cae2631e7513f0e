// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config loads the wheeldash YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/GermanBionicSystems/wheeldash/graph"
	"github.com/GermanBionicSystems/wheeldash/ringlog"
	"github.com/GermanBionicSystems/wheeldash/sampler"
)

// Temperature sources.
const (
	SourceNone    = "none"
	SourceTMP102  = "tmp102"
	SourceHDC302x = "hdc302x"
	SourceDHT11   = "dht11"
)

// Config holds all configuration for the dashboard.
type Config struct {
	// Name is shown in the header when there is no clock.
	Name    string `yaml:"name"`
	DataDir string `yaml:"data_dir"`

	Display     DisplayConfig     `yaml:"display"`
	Wheel       WheelConfig       `yaml:"wheel"`
	Temperature TemperatureConfig `yaml:"temperature"`
	Logger      LoggerConfig      `yaml:"logger"`
	Archive     ArchiveConfig     `yaml:"archive"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// DisplayConfig contains panel settings.
type DisplayConfig struct {
	SPIPort string `yaml:"spi_port"`
	// FullEvery forces a full refresh after that many partial ones. 0 means
	// always full.
	FullEvery int `yaml:"full_every"`
	// ShowClock puts date and time in the header and aligns the time axis
	// to the hour. Only meaningful with a real-time clock.
	ShowClock   bool          `yaml:"show_clock"`
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// WheelConfig describes the rotation sensor.
type WheelConfig struct {
	Pin                 string        `yaml:"pin"`
	Diameter            float64       `yaml:"diameter"`
	PulsesPerRevolution int           `yaml:"pulses_per_revolution"`
	Debounce            time.Duration `yaml:"debounce"`
	// SpeedWindow is how far back the maximum speed looks.
	SpeedWindow time.Duration `yaml:"speed_window"`
}

// TemperatureConfig selects the temperature sensor.
type TemperatureConfig struct {
	Source   string        `yaml:"source"`
	Interval time.Duration `yaml:"interval"`
	I2CBus   string        `yaml:"i2c_bus"`
	I2CAddr  uint16        `yaml:"i2c_addr"`
	DHTPin   int           `yaml:"dht_pin"`
}

// LoggerConfig sizes the history ring.
type LoggerConfig struct {
	Interval  time.Duration `yaml:"interval"`
	Retention time.Duration `yaml:"retention"`
	// Window is the span shown on the graph, one pixel per sample. It must
	// fill the graph exactly.
	Window time.Duration `yaml:"window"`
}

// ArchiveConfig contains the optional SQLite archive settings.
type ArchiveConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Path          string        `yaml:"path"`
	RetentionDays int           `yaml:"retention_days"`
	CleanupPeriod time.Duration `yaml:"cleanup_period"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadConfig loads configuration from a YAML file, then applies defaults and
// environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c.finish()
}

// Default returns the configuration used without a file.
func Default() (*Config, error) {
	var c Config
	return c.finish()
}

func (c *Config) finish() (*Config, error) {
	c.ApplyDefaults()
	c.OverrideFromEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyDefaults sets default values for any unset fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "wheeldash"
	}
	if c.DataDir == "" {
		c.DataDir = "."
	}
	if c.Display.BusyTimeout == 0 {
		c.Display.BusyTimeout = 10 * time.Second
	}
	if c.Wheel.Pin == "" {
		c.Wheel.Pin = "GPIO27"
	}
	if c.Wheel.Diameter == 0 {
		c.Wheel.Diameter = sampler.DefaultCounterOpts.WheelDiameter
	}
	if c.Wheel.PulsesPerRevolution == 0 {
		c.Wheel.PulsesPerRevolution = sampler.DefaultCounterOpts.PulsesPerRevolution
	}
	if c.Wheel.Debounce == 0 {
		c.Wheel.Debounce = sampler.DefaultCounterOpts.Debounce
	}
	if c.Wheel.SpeedWindow == 0 {
		c.Wheel.SpeedWindow = 18 * time.Hour
	}
	if c.Temperature.Source == "" {
		c.Temperature.Source = SourceTMP102
	}
	if c.Temperature.Interval == 0 {
		c.Temperature.Interval = time.Minute
	}
	if c.Temperature.I2CAddr == 0 {
		c.Temperature.I2CAddr = 0x48
		if c.Temperature.Source == SourceHDC302x {
			c.Temperature.I2CAddr = 0x44
		}
	}
	if c.Temperature.DHTPin == 0 {
		c.Temperature.DHTPin = 4
	}
	if c.Logger.Interval == 0 {
		c.Logger.Interval = 5 * time.Minute
	}
	if c.Logger.Retention == 0 {
		c.Logger.Retention = 7 * 24 * time.Hour
	}
	if c.Logger.Window == 0 {
		c.Logger.Window = 18 * time.Hour
	}
	if c.Archive.Path == "" {
		c.Archive.Path = "archive.db"
	}
	if c.Archive.RetentionDays == 0 {
		c.Archive.RetentionDays = 365
	}
	if c.Archive.CleanupPeriod == 0 {
		c.Archive.CleanupPeriod = 24 * time.Hour
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// OverrideFromEnv overrides config values from environment variables.
func (c *Config) OverrideFromEnv() {
	if v := os.Getenv("WHEELDASH_NAME"); v != "" {
		c.Name = v
	}
	if v := os.Getenv("WHEELDASH_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Display.FullEvery < 0 {
		return errors.New("config: display.full_every must not be negative")
	}
	if c.Wheel.Diameter <= 0 {
		return errors.New("config: wheel.diameter must be positive")
	}
	if c.Wheel.PulsesPerRevolution < 0 {
		return errors.New("config: wheel.pulses_per_revolution must be positive")
	}
	switch c.Temperature.Source {
	case SourceNone, SourceTMP102, SourceHDC302x, SourceDHT11:
	default:
		return fmt.Errorf("config: unknown temperature.source %q", c.Temperature.Source)
	}
	if c.Temperature.Interval < time.Second {
		return errors.New("config: temperature.interval must be at least 1s")
	}
	if c.Logger.Interval < time.Minute {
		return errors.New("config: logger.interval must be at least 1m")
	}
	if c.Logger.Retention%c.Logger.Interval != 0 || c.Logger.Window%c.Logger.Interval != 0 {
		return errors.New("config: logger.retention and logger.window must be multiples of logger.interval")
	}
	if n := int(c.Logger.Window / c.Logger.Interval); n != graph.Landscape213.Width {
		return fmt.Errorf("config: logger.window holds %d samples, the graph is %d wide", n, graph.Landscape213.Width)
	}
	if c.Logger.Window > c.Logger.Retention {
		return errors.New("config: logger.window must not exceed logger.retention")
	}
	if c.Logger.Retention < 24*time.Hour {
		return errors.New("config: logger.retention must be at least 24h")
	}
	if c.Archive.RetentionDays < 1 {
		return errors.New("config: archive.retention_days must be at least 1")
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("config: logging.level: %w", err)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("config: logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// RingOpts sizes the history ring from the logger section.
func (c *Config) RingOpts() ringlog.Opts {
	n := func(d time.Duration) int { return int(d / c.Logger.Interval) }
	return ringlog.Opts{
		Capacity: n(c.Logger.Retention),
		Day:      n(24 * time.Hour),
		HalfDay:  n(12 * time.Hour),
		Window:   n(c.Logger.Window),
	}
}

// CounterOpts describes the wheel.
func (c *Config) CounterOpts() sampler.CounterOpts {
	o := sampler.DefaultCounterOpts
	o.WheelDiameter = c.Wheel.Diameter
	o.PulsesPerRevolution = c.Wheel.PulsesPerRevolution
	o.Debounce = c.Wheel.Debounce
	return o
}

// HistoryPath is the history ring file.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "history.log")
}

// SpeedPath is the maximum speed file.
func (c *Config) SpeedPath() string {
	return filepath.Join(c.DataDir, "speed.log")
}

// ArchivePath is the SQLite archive, relative to DataDir unless absolute.
func (c *Config) ArchivePath() string {
	if filepath.IsAbs(c.Archive.Path) {
		return c.Archive.Path
	}
	return filepath.Join(c.DataDir, c.Archive.Path)
}

// String returns a one line summary.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Name: %s, DataDir: %s, Display: %+v, Wheel: %+v, Temperature: %+v, Logger: %+v, Archive: %+v, Logging: %+v}",
		c.Name, c.DataDir, c.Display, c.Wheel, c.Temperature, c.Logger, c.Archive, c.Logging)
}
