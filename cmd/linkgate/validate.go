package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/linkgate/pkg/cli"
	"mercator-hq/linkgate/pkg/config"
)

const redacted = "REDACTED"

var validateFlags struct {
	print  bool
	output string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Load the configuration file with LINKGATE_* environment overrides
applied and report every invalid field.

Examples:
  # Check a configuration file
  linkgate validate --config config.yaml

  # Print the effective configuration as JSON
  linkgate validate --config config.yaml --print --output json`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateFlags.print, "print", false, "print the effective configuration")
	validateCmd.Flags().StringVarP(&validateFlags.output, "output", "o", "yaml", "output format for --print: yaml, json")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(validateFlags.output)
	if err != nil {
		return cli.NewConfigError("output", err.Error())
	}
	if format == cli.FormatText {
		format = cli.FormatYAML
	}

	cfg, err := loadConfig()
	if err != nil {
		errOut := cmd.ErrOrStderr()
		for _, fe := range cli.ConfigErrors(err) {
			fmt.Fprintf(errOut, "✗ %s: %s\n", fe.Field, fe.Message)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if !validateFlags.print {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}
	return cli.NewFormatter(format).FormatTo(out, redactSecrets(cfg))
}

// redactSecrets returns a copy of cfg that is safe to print.
func redactSecrets(cfg *config.Config) *config.Config {
	c := *cfg
	if c.Store.Redis.Password != "" {
		c.Store.Redis.Password = redacted
	}
	return &c
}
