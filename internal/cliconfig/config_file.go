package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config with TOML-friendly types.
// The interval is a string so both "10s" and "10" are accepted.
type FileConfig struct {
	Interval     string `toml:"interval"`
	ShowIdentity *bool  `toml:"show_identity"`
	Watch        *bool  `toml:"watch"`
	LogLevel     string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.hostbeat/config.toml, or "" when the home
// directory cannot be determined.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".hostbeat", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies fc to cfg, skipping flags present in changed.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	if err := s.setInterval("interval", fc.Interval, &cfg.Interval); err != nil {
		return err
	}
	s.setBool("show-identity", fc.ShowIdentity, &cfg.ShowIdentity)
	s.setBool("watch", fc.Watch, &cfg.Watch)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
