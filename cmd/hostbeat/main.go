package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bft-labs/hostbeat/internal/cliconfig"
	"github.com/bft-labs/hostbeat/internal/report"
	"github.com/bft-labs/hostbeat/pkg/log"
)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	logger := cliconfig.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:           "hostbeat [args...]",
		Short:         "Print host identity, arguments and environment, then heartbeat forever",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), os.Args, os.Environ(), os.Stdout, logger)
		},
	}
	// argv is part of the report and is never interpreted by cobra; run
	// reads the known flags itself and ignores anything it cannot parse.
	root.SetArgs([]string{})

	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error().Err(err).Msg("hostbeat")
		stop()
		os.Exit(1)
	}
}

// run resolves settings from argv, the config file and HOSTBEAT_* variables,
// then prints the report to stdout. Bad settings are logged and replaced by
// defaults; only a failed identity query is returned as an error.
func run(ctx context.Context, argv, env []string, stdout io.Writer, logger zerolog.Logger) error {
	cfg := cliconfig.DefaultConfig()
	var args []string
	if len(argv) > 1 {
		args = argv[1:]
	}
	flags, err := cliconfig.ParseFlags(args, &cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("ignoring command-line flag")
	}

	cfgFile := flags.ConfigPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	// Flag values plus defaults; file and env are layered on top on every
	// (re)load.
	base := cfg
	resolved, err := cliconfig.Resolve(base, cfgFile, flags.Changed)
	if err != nil {
		logger.Warn().Err(err).Msg("invalid configuration, using defaults")
		resolved = cliconfig.DefaultConfig()
	}
	cliconfig.SetLogLevel(resolved.LogLevel)

	logger.Debug().
		Str("version", getVersion()).
		Str("platform", runtime.GOOS+"/"+runtime.GOARCH).
		Interface("config", resolved).
		Str("path", cfgFile).
		Msg("configuration")
	adapter := log.NewZerologAdapterWithLogger(logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rep := report.New(stdout, report.WithLogger(adapter))

	if resolved.Watch && cfgFile != "" {
		w := cliconfig.NewWatcher(cfgFile, func() (cliconfig.Config, error) {
			return cliconfig.Resolve(base, cfgFile, flags.Changed)
		}, adapter)
		go func() {
			if err := w.Run(ctx, func(c cliconfig.Config) { applyReload(rep, c) }); err != nil {
				logger.Warn().Err(err).Msg("config watcher stopped")
			}
		}()
	}

	err = rep.Run(ctx, argv, env, heartbeat(resolved))
	if errors.Is(err, context.Canceled) {
		logger.Info().Msg("received signal, stopping...")
		return nil
	}
	return err
}

// applyReload pushes reloaded settings into the running process. Watch is
// only read at startup.
func applyReload(rep *report.Reporter, c cliconfig.Config) {
	cliconfig.SetLogLevel(c.LogLevel)
	rep.Reload(heartbeat(c))
}

func heartbeat(c cliconfig.Config) report.Heartbeat {
	return report.Heartbeat{
		Interval:     c.Interval,
		ShowIdentity: c.ShowIdentity,
	}
}
