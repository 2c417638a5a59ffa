package cliconfig

import "fmt"

// Resolve layers the config file at path (if it exists) and the environment
// on top of base, then validates. base carries defaults plus any flag values;
// changed names the flags set explicitly, which always win.
func Resolve(base Config, path string, changed map[string]bool) (Config, error) {
	cfg := base

	if path != "" && FileExists(path) {
		fc, err := LoadFileConfig(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
			return cfg, err
		}
	}

	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
