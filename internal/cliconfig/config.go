package cliconfig

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

// DefaultInterval is the heartbeat interval when nothing else is configured.
const DefaultInterval = 10 * time.Second

// Config holds CLI configuration for hostbeat.
type Config struct {
	Interval     time.Duration
	ShowIdentity bool
	Watch        bool
	LogLevel     string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Interval: DefaultInterval,
		LogLevel: zerolog.InfoLevel.String(),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	if c.LogLevel == "" {
		c.LogLevel = zerolog.InfoLevel.String()
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log-level: %w", err)
	}
	return nil
}

// ParseInterval accepts a Go duration ("1s", "1500ms") or a bare number of
// seconds ("10", "0.5").
func ParseInterval(value string) (time.Duration, error) {
	if d, err := time.ParseDuration(value); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(secs) || math.Abs(secs) > maxIntervalSeconds {
		return 0, fmt.Errorf("invalid interval %q", value)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// maxIntervalSeconds is the largest interval a time.Duration can hold.
const maxIntervalSeconds = float64(math.MaxInt64 / int64(time.Second))

// configSetter applies values unless the corresponding flag was set
// explicitly on the command line.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInterval(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := ParseInterval(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString treats "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

// IntervalValue is a pflag.Value for intervals parsed with ParseInterval.
type IntervalValue struct {
	dst *time.Duration
}

// NewIntervalValue binds an IntervalValue to dst.
func NewIntervalValue(dst *time.Duration) *IntervalValue {
	return &IntervalValue{dst: dst}
}

func (v *IntervalValue) String() string {
	if v.dst == nil {
		return ""
	}
	return v.dst.String()
}

func (v *IntervalValue) Set(s string) error {
	d, err := ParseInterval(s)
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("interval must be positive, got %s", d)
	}
	*v.dst = d
	return nil
}

func (v *IntervalValue) Type() string { return "interval" }

var _ pflag.Value = (*IntervalValue)(nil)
