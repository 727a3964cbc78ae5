/*
Package cli provides command-line helpers for the linkgate command.

Output Formatting:

Commands that print results accept --output text|json|yaml:

	format, err := cli.ParseOutputFormat(flagValue)
	if err != nil {
		return err
	}
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, result); err != nil {
		return err
	}

Errors and Exit Codes:

Configuration problems exit with ExitConfigError (2), everything else
with ExitFailure (1):

	if err := rootCmd.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
