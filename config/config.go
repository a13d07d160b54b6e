// Package config loads the YAML file that tells sniffview where the device's
// two traffic ports live and how often to merge and render them.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// UI modes accepted by ui.mode.
const (
	UIModeTView    = "tview"
	UIModePlain    = "plain"
	UIModeJSON     = "json"
	UIModeHeadless = "headless"
)

// Config represents the complete sniffview configuration
type Config struct {
	Device  DeviceConfig  `yaml:"device"`
	Merge   MergeConfig   `yaml:"merge"`
	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
	Stats   StatsConfig   `yaml:"stats"`

	// LoadedFrom is the path the configuration was read from.
	LoadedFrom string `yaml:"-"`
}

// DeviceConfig describes the sniffer's telnet endpoints.
type DeviceConfig struct {
	Host               string `yaml:"host"`
	InPort             int    `yaml:"in_port"`
	OutPort            int    `yaml:"out_port"`
	DialTimeoutSeconds int    `yaml:"dial_timeout_seconds"`
	ReadTimeoutMS      int    `yaml:"read_timeout_ms"`
	MaxLineBytes       int    `yaml:"max_line_bytes"`
}

// MergeConfig contains merge cadence settings
type MergeConfig struct {
	IntervalMS         int `yaml:"interval_ms"`
	MaxRecordsPerCycle int `yaml:"max_records_per_cycle"`
}

// UIConfig selects and tunes the presentation layer.
type UIConfig struct {
	Mode        string `yaml:"mode"`
	HistoryRows int    `yaml:"history_rows"`
	TargetFPS   int    `yaml:"target_fps"`
	SliderSteps int    `yaml:"slider_steps"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
}

// StatsConfig controls the periodic stats line.
type StatsConfig struct {
	DisplayIntervalSeconds int `yaml:"display_interval_seconds"`
}

// DialTimeout returns the connect timeout for each reader.
func (d DeviceConfig) DialTimeout() time.Duration {
	return time.Duration(d.DialTimeoutSeconds) * time.Second
}

// ReadTimeout returns the bounded wait of one read attempt.
func (d DeviceConfig) ReadTimeout() time.Duration {
	return time.Duration(d.ReadTimeoutMS) * time.Millisecond
}

// Interval returns the merge cadence.
func (m MergeConfig) Interval() time.Duration {
	return time.Duration(m.IntervalMS) * time.Millisecond
}

// DisplayInterval returns how often stats lines are refreshed; 0 disables them.
func (s StatsConfig) DisplayInterval() time.Duration {
	return time.Duration(s.DisplayIntervalSeconds) * time.Second
}

// Load loads configuration from a YAML file. Unknown keys are rejected so a
// misspelled port does not silently fall back to zero.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	cfg.LoadedFrom = filename
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Device.Host = strings.TrimSpace(c.Device.Host)
	c.UI.Mode = strings.ToLower(strings.TrimSpace(c.UI.Mode))
	if c.UI.Mode == "" {
		c.UI.Mode = UIModeTView
	}
	if c.UI.TargetFPS <= 0 {
		c.UI.TargetFPS = 30
	}
	if c.UI.SliderSteps <= 0 {
		c.UI.SliderSteps = 1000
	}
	c.Logging.Dir = strings.TrimSpace(c.Logging.Dir)
}

// Validate reports every missing or out-of-range setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Device.Host == "" {
		errs = append(errs, errors.New("device.host is required"))
	}
	if !validPort(c.Device.InPort) {
		errs = append(errs, fmt.Errorf("device.in_port %d out of range", c.Device.InPort))
	}
	if !validPort(c.Device.OutPort) {
		errs = append(errs, fmt.Errorf("device.out_port %d out of range", c.Device.OutPort))
	}
	if c.Device.DialTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("device.dial_timeout_seconds must be positive"))
	}
	if c.Device.ReadTimeoutMS <= 0 {
		errs = append(errs, errors.New("device.read_timeout_ms must be positive"))
	}
	if c.Device.MaxLineBytes < 0 {
		errs = append(errs, errors.New("device.max_line_bytes must not be negative"))
	}
	if c.Merge.IntervalMS <= 0 {
		errs = append(errs, errors.New("merge.interval_ms must be positive"))
	}
	if c.Merge.MaxRecordsPerCycle < 0 {
		errs = append(errs, errors.New("merge.max_records_per_cycle must not be negative"))
	}
	switch c.UI.Mode {
	case UIModeTView, UIModePlain, UIModeJSON, UIModeHeadless:
	default:
		errs = append(errs, fmt.Errorf("ui.mode %q not recognized (tview, plain, json, headless)", c.UI.Mode))
	}
	if c.UI.HistoryRows < 0 {
		errs = append(errs, errors.New("ui.history_rows must not be negative"))
	}
	if c.Logging.Enabled && c.Logging.Dir == "" {
		errs = append(errs, errors.New("logging.dir is required when logging is enabled"))
	}
	if c.Stats.DisplayIntervalSeconds < 0 {
		errs = append(errs, errors.New("stats.display_interval_seconds must not be negative"))
	}
	return errors.Join(errs...)
}

func validPort(p int) bool {
	return p > 0 && p <= 65535
}

// Print displays the configuration
func (c *Config) Print() {
	fmt.Printf("Device: %s (in port %d, out port %d)\n", c.Device.Host, c.Device.InPort, c.Device.OutPort)
	limit := "unlimited"
	if c.Device.MaxLineBytes > 0 {
		limit = fmt.Sprintf("%d bytes", c.Device.MaxLineBytes)
	}
	fmt.Printf("Reads: dial timeout %s, read timeout %s, line limit %s\n", c.Device.DialTimeout(), c.Device.ReadTimeout(), limit)
	capDesc := "unbounded"
	if c.Merge.MaxRecordsPerCycle > 0 {
		capDesc = fmt.Sprintf("%d records per direction", c.Merge.MaxRecordsPerCycle)
	}
	fmt.Printf("Merge: every %s (%s)\n", c.Merge.Interval(), capDesc)
	fmt.Printf("UI: %s (history %d rows)\n", c.UI.Mode, c.UI.HistoryRows)
	if c.Logging.Enabled {
		fmt.Printf("Logging: %s (retention %d days)\n", c.Logging.Dir, c.Logging.RetentionDays)
	}
}
