package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"mercator-hq/linkgate/pkg/cli"
	"mercator-hq/linkgate/pkg/config"
	"mercator-hq/linkgate/pkg/telemetry/logging"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the linkgate server",
	Long: `Start the linkgate URL shortener with the specified configuration.

The server listens on the configured address, rate limits every client
and serves redirects through the LRU cache in front of the URL store.

Examples:
  # Start with built-in defaults
  linkgate run

  # Start with custom config
  linkgate run --config /etc/linkgate/config.yaml

  # Override listen address
  linkgate run --listen 0.0.0.0:8080

  # Validate config without starting server
  linkgate run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Flag overrides are validated like file values.
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	logger.SetDefault()

	out := cmd.OutOrStdout()
	if runFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

	a, err := buildApp(ctx, cfg, logger.Slog())
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Error("failed to close components", "error", err)
		}
	}()

	printBanner(out, cfg)

	if cfg.ConfigWatch.Enabled && cfgFile != "" {
		startConfigWatch(ctx, cfg, logger)
	}

	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			slog.Warn("failed to start retention scheduler", "error", err)
		} else if next := a.scheduler.NextRun(); next != nil {
			slog.Debug("retention scheduler started", "next_run", next)
		}
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- a.server.Start(ctx)
	}()

	select {
	case <-a.server.Ready():
		printEndpoints(out, cfg, a.server.Addr())
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	}

	if err := <-errChan; err != nil && !errors.Is(err, context.Canceled) {
		return cli.NewCommandError("run", err)
	}
	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}

// startConfigWatch applies log level changes from the config file until
// ctx is cancelled. A --log-level flag pins the level.
func startConfigWatch(ctx context.Context, cfg *config.Config, logger *logging.Logger) {
	watcher, err := config.NewWatcher(cfgFile, cfg.ConfigWatch.Debounce, logger.Slog())
	if err != nil {
		slog.Warn("config watch disabled", "error", err)
		return
	}

	go func() {
		err := watcher.Watch(ctx, func(newCfg *config.Config) {
			if runFlags.logLevel != "" {
				return
			}
			level := newCfg.Telemetry.Logging.Level
			if err := logger.SetLevel(level); err != nil {
				slog.Warn("ignoring log level change", "level", level, "error", err)
				return
			}
			slog.Info("log level updated", "level", level)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("config watcher stopped", "error", err)
		}
	}()
}

func printBanner(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "linkgate v%s\n", Version)
	if cfgFile != "" {
		fmt.Fprintf(w, "Loading configuration from: %s\n", cfgFile)
	} else {
		fmt.Fprintln(w, "Using built-in configuration defaults")
	}
	fmt.Fprintln(w, "✓ Configuration loaded")
	fmt.Fprintf(w, "✓ Store initialized (%s)\n", cfg.Store.Backend)
	fmt.Fprintf(w, "✓ Cache capacity: %d\n", cfg.Cache.Capacity)
	if cfg.RateLimit.Enabled {
		fmt.Fprintf(w, "✓ Rate limit: %d requests / %gs per client\n",
			cfg.RateLimit.RateLimit, cfg.RateLimit.WindowSeconds)
	} else {
		fmt.Fprintln(w, "! Rate limiting disabled")
	}
}

func printEndpoints(w io.Writer, cfg *config.Config, addr string) {
	scheme := "http"
	if cfg.Server.TLS.Enabled() {
		scheme = "https"
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "✓ Server listening on %s\n", addr)
	fmt.Fprintf(w, "✓ Health endpoint: %s://%s/health\n", scheme, addr)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Fprintf(w, "✓ Metrics endpoint: %s://%s%s\n", scheme, addr, cfg.Telemetry.Metrics.Path)
	}
	fmt.Fprintln(w, "\nPress Ctrl+C to stop")
}
