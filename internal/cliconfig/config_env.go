package cliconfig

import "os"

// Environment variables read by ApplyEnvConfig.
const (
	EnvInterval     = "HOSTBEAT_INTERVAL"
	EnvShowIdentity = "HOSTBEAT_SHOW_IDENTITY"
	EnvWatch        = "HOSTBEAT_WATCH"
	EnvLogLevel     = "HOSTBEAT_LOG_LEVEL"
)

// ApplyEnvConfig applies HOSTBEAT_* variables to cfg, skipping flags present
// in changed. Returns an error for a malformed interval.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	if err := s.setInterval("interval", os.Getenv(EnvInterval), &cfg.Interval); err != nil {
		return err
	}
	s.setBoolFromString("show-identity", os.Getenv(EnvShowIdentity), &cfg.ShowIdentity)
	s.setBoolFromString("watch", os.Getenv(EnvWatch), &cfg.Watch)
	s.setString("log-level", os.Getenv(EnvLogLevel), &cfg.LogLevel)

	return nil
}
