package cliconfig

import (
	"io"

	"github.com/spf13/pflag"
)

const helpFlag = "help"

// FlagResult holds what ParseFlags read from the command line.
type FlagResult struct {
	// ConfigPath is the --config value, empty when not given.
	ConfigPath string
	// Changed names the flags that were set successfully.
	Changed map[string]bool
}

// ParseFlags reads the known flags from args (without the program name) into
// cfg. Parsing never prints or exits: unknown flags and positional arguments
// are skipped, and -h/--help carry no meaning. The returned error reports the
// first malformed value; flags after it are not read, and cfg keeps whatever
// was applied before it.
func ParseFlags(args []string, cfg *Config) (FlagResult, error) {
	res := FlagResult{Changed: map[string]bool{}}

	fs := newFlagSet(cfg, &res.ConfigPath)
	err := fs.Parse(args)
	fs.Visit(func(f *pflag.Flag) {
		if f.Name != helpFlag {
			res.Changed[f.Name] = true
		}
	})
	return res, err
}

func newFlagSet(cfg *Config, cfgPath *string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("hostbeat", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.ParseErrorsWhitelist.UnknownFlags = true

	fs.StringVar(cfgPath, "config", "", "path to config file (default: $HOME/.hostbeat/config.toml)")
	fs.Var(NewIntervalValue(&cfg.Interval), "interval", "time between heartbeat lines, as a duration (1500ms) or seconds (1.5)")
	fs.BoolVar(&cfg.ShowIdentity, "show-identity", cfg.ShowIdentity, "repeat the OS name in every heartbeat line")
	fs.BoolVar(&cfg.Watch, "watch", cfg.Watch, "reload heartbeat settings when the config file changes")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "diagnostics log level on stderr (debug, info, warn, error)")

	// Swallow -h/--help so pflag does not treat them as a help request.
	fs.BoolP(helpFlag, "h", false, "")
	_ = fs.MarkHidden(helpFlag)

	return fs
}
