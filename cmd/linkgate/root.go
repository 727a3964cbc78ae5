package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/linkgate/pkg/cli"
	"mercator-hq/linkgate/pkg/config"
)

var (
	// Global flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "linkgate",
	Short: "linkgate - rate-limited URL shortener",
	Long: `linkgate is a URL-shortener HTTP service.

Every request is gated by a per-client token bucket, and redirects are
served through a bounded LRU cache in front of the URL store.

Configuration is read from a YAML file (--config) and LINKGATE_*
environment variables. Without --config the built-in defaults are used.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a code from cli.ExitCode.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults and LINKGATE_* env when empty)")
}

// loadConfig loads the configuration named by --config with environment
// overrides applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			return nil, err
		}
		return nil, cli.NewConfigError("config", err.Error())
	}
	return cfg, nil
}
